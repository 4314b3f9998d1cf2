// Package checklist renders a file tree as nested checkbox toggles and
// collects the selection from them.
package checklist

// Kind distinguishes folder toggles from file toggles.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Toggle is a single checkbox in the rendered tree.
//
// For files Path is the full relative path, which is the value submitted
// with the selection. For folders it is the folder's path and only serves
// as an identity for collapsing.
type Toggle struct {
	Kind     Kind
	Name     string
	Label    string
	Path     string
	Code     bool
	Checked  bool
	Children []*Toggle
}

// IsFolder reports whether the toggle belongs to a folder.
func (t *Toggle) IsFolder() bool { return t.Kind == KindFolder }

// Flip inverts the checked state of this toggle only. Folder toggles never
// cascade to their children.
func (t *Toggle) Flip() {
	t.Checked = !t.Checked
}

// Checklist is the rendered tree.
type Checklist struct {
	Items   []*Toggle
	Skipped int
}

// Line is one visible row of a flattened checklist.
type Line struct {
	Toggle *Toggle
	Depth  int
}

// Empty reports whether the checklist has nothing to show.
func (c *Checklist) Empty() bool {
	return c == nil || len(c.Items) == 0
}

// Lines flattens the checklist depth-first. Children of toggles for which
// collapsed returns true are omitted; a nil func shows everything.
func (c *Checklist) Lines(collapsed func(*Toggle) bool) []Line {
	if c == nil {
		return nil
	}
	var lines []Line
	var walk func([]*Toggle, int)
	walk = func(items []*Toggle, depth int) {
		for _, item := range items {
			lines = append(lines, Line{Toggle: item, Depth: depth})
			if item.IsFolder() && (collapsed == nil || !collapsed(item)) {
				walk(item.Children, depth+1)
			}
		}
	}
	walk(c.Items, 0)
	return lines
}

// Walk visits every toggle depth-first in display order.
func (c *Checklist) Walk(fn func(*Toggle)) {
	if c == nil {
		return
	}
	var walk func([]*Toggle)
	walk = func(items []*Toggle) {
		for _, item := range items {
			fn(item)
			walk(item.Children)
		}
	}
	walk(c.Items)
}

// Selected returns the paths of all checked file toggles in display order.
// Folder state is ignored.
func (c *Checklist) Selected() []string {
	var out []string
	c.Walk(func(t *Toggle) {
		if t.Kind == KindFile && t.Checked {
			out = append(out, t.Path)
		}
	})
	return out
}

// Counts reports the number of files and how many of them are checked.
func (c *Checklist) Counts() (files, checked int) {
	c.Walk(func(t *Toggle) {
		if t.Kind != KindFile {
			return
		}
		files++
		if t.Checked {
			checked++
		}
	})
	return files, checked
}

// Find returns the toggle with the given kind and path, or nil.
func (c *Checklist) Find(kind Kind, path string) *Toggle {
	var found *Toggle
	c.Walk(func(t *Toggle) {
		if found == nil && t.Kind == kind && t.Path == path {
			found = t
		}
	})
	return found
}
