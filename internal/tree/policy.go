package tree

import (
	"sort"
	"strings"
)

var (
	defaultHardExclude    = []string{"node_modules", ".git", "__pycache__", "venv", "env", "dist", "build"}
	defaultSoftExclude    = []string{"node_modules", ".git", ".idea", "__pycache__", "venv", "env"}
	defaultCodeExtensions = []string{"js", "py", "html", "css", "java", "cpp", "c", "h", "php", "ts", "jsx", "tsx"}
)

// Set is a set of names.
type Set map[string]struct{}

// NewSet builds a set from the given names. Empty names are ignored.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in byte order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Policy holds the folder exclusion sets and the code-file extensions.
//
// HardExclude removes whole subtrees while the tree is assembled.
// SoftExclude only unchecks a folder's toggle when it is rendered. The two
// sets are independent.
type Policy struct {
	HardExclude    Set
	SoftExclude    Set
	CodeExtensions Set
}

// DefaultPolicy returns the built-in exclusion and extension sets.
func DefaultPolicy() Policy {
	return PolicyFromLists(defaultHardExclude, defaultSoftExclude, defaultCodeExtensions)
}

// DefaultHardExclude returns a copy of the built-in hard exclusion list.
func DefaultHardExclude() []string { return append([]string(nil), defaultHardExclude...) }

// DefaultSoftExclude returns a copy of the built-in soft exclusion list.
func DefaultSoftExclude() []string { return append([]string(nil), defaultSoftExclude...) }

// DefaultCodeExtensions returns a copy of the built-in code extension list.
func DefaultCodeExtensions() []string { return append([]string(nil), defaultCodeExtensions...) }

// PolicyFromLists builds a policy from configured lists. Extensions may be
// given with or without a leading dot and are matched case-insensitively.
func PolicyFromLists(hard, soft, code []string) Policy {
	exts := make([]string, 0, len(code))
	for _, ext := range code {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	}
	return Policy{
		HardExclude:    NewSet(hard...),
		SoftExclude:    NewSet(soft...),
		CodeExtensions: NewSet(exts...),
	}
}

// HardExcluded reports whether a folder with this name is dropped entirely.
func (p Policy) HardExcluded(name string) bool {
	return p.HardExclude.Has(name)
}

// SoftExcluded reports whether a folder with this name starts unchecked.
func (p Policy) SoftExcluded(name string) bool {
	return p.SoftExclude.Has(name)
}

// IsCodeFile reports whether the text after the last dot in name is a code
// extension. Names without a dot never match.
func (p Policy) IsCodeFile(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return false
	}
	return p.CodeExtensions.Has(strings.ToLower(name[idx+1:]))
}
