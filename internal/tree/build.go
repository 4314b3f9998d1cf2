package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySegment is reported for paths that are empty or contain an
	// empty segment, such as a leading, trailing or doubled slash.
	ErrEmptySegment = errors.New("empty path segment")
	// ErrPathConflict is reported when a name is a file in one entry and a
	// folder in another.
	ErrPathConflict = errors.New("file and folder share a path")
)

// EntryError describes an entry that could not be placed in the tree.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %q: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Report lists the entries Build left out.
type Report struct {
	Excluded []string
	Rejected []*EntryError
}

// Err joins the rejected entries into a single error, or returns nil.
func (r Report) Err() error {
	if len(r.Rejected) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Rejected))
	for _, rejected := range r.Rejected {
		errs = append(errs, rejected)
	}
	return errors.Join(errs...)
}

// Build constructs a tree that mirrors the provided relative paths. The
// returned root is unnamed. Entries below a hard-excluded folder are dropped
// and malformed entries are rejected; both are listed in the report and do
// not stop the build.
func Build(entries []Entry, policy Policy) (*Folder, Report) {
	root := NewFolder("")
	var report Report

	for _, entry := range entries {
		rel := entry.RelativePath
		parts := strings.Split(rel, "/")
		if hasEmptySegment(parts) {
			report.Rejected = append(report.Rejected, &EntryError{Path: rel, Err: ErrEmptySegment})
			continue
		}
		if underHardExcluded(parts, policy) {
			report.Excluded = append(report.Excluded, rel)
			continue
		}
		if err := insert(root, rel, parts, policy); err != nil {
			report.Rejected = append(report.Rejected, &EntryError{Path: rel, Err: err})
		}
	}

	return root, report
}

func insert(root *Folder, rel string, parts []string, policy Policy) error {
	current := root
	for i, part := range parts {
		child := current.ChildByName(part)
		if i == len(parts)-1 {
			if _, isDir := child.(*Folder); isDir {
				return fmt.Errorf("%w at %q", ErrPathConflict, strings.Join(parts[:i+1], "/"))
			}
			current.AddChild(&File{
				Name:     part,
				FullPath: rel,
				IsCode:   policy.IsCodeFile(part),
			})
			return nil
		}

		switch n := child.(type) {
		case nil:
			dir := NewFolder(part)
			current.AddChild(dir)
			current = dir
		case *Folder:
			current = n
		default:
			return fmt.Errorf("%w at %q", ErrPathConflict, strings.Join(parts[:i+1], "/"))
		}
	}
	return nil
}

func hasEmptySegment(parts []string) bool {
	for _, part := range parts {
		if part == "" {
			return true
		}
	}
	return false
}

// underHardExcluded checks ancestor segments only; a file that happens to
// share a name with an excluded folder is kept.
func underHardExcluded(parts []string, policy Policy) bool {
	for _, part := range parts[:len(parts)-1] {
		if policy.HardExcluded(part) {
			return true
		}
	}
	return false
}
