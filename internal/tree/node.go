package tree

import "sort"

// Entry is one file reported by the listing service.
type Entry struct {
	RelativePath string
}

// Node is an entry in the file tree. It is implemented only by *Folder and
// *File.
type Node interface {
	NodeName() string
	node()
}

// Folder represents a directory and its children keyed by segment name.
type Folder struct {
	Name     string
	Children map[string]Node
}

// File represents a single listed file.
type File struct {
	Name     string
	FullPath string
	IsCode   bool
}

// NewFolder creates an empty folder node.
func NewFolder(name string) *Folder {
	return &Folder{
		Name:     name,
		Children: make(map[string]Node),
	}
}

// NodeName returns the folder's segment name.
func (f *Folder) NodeName() string { return f.Name }

// NodeName returns the file's segment name.
func (f *File) NodeName() string { return f.Name }

func (*Folder) node() {}
func (*File) node()   {}

// ChildByName returns the child node with the given name if it exists.
func (f *Folder) ChildByName(name string) Node {
	if f.Children == nil {
		return nil
	}
	return f.Children[name]
}

// AddChild attaches the node under its own name, replacing any previous
// entry with that name.
func (f *Folder) AddChild(n Node) {
	if f.Children == nil {
		f.Children = make(map[string]Node)
	}
	f.Children[n.NodeName()] = n
}

// SortedChildren returns the children ordered folders first, then files,
// with less deciding the order inside each tier.
func (f *Folder) SortedChildren(less func(a, b string) bool) []Node {
	children := make([]Node, 0, len(f.Children))
	for _, child := range f.Children {
		children = append(children, child)
	}
	sort.SliceStable(children, func(i, j int) bool {
		ci, cj := children[i], children[j]
		_, iDir := ci.(*Folder)
		_, jDir := cj.(*Folder)
		switch {
		case iDir == jDir:
			return less(nodeName(ci), nodeName(cj))
		case iDir:
			return true
		default:
			return false
		}
	})
	return children
}

// nodeName tolerates nil and typed-nil nodes.
func nodeName(n Node) string {
	switch v := n.(type) {
	case *Folder:
		if v != nil {
			return v.Name
		}
	case *File:
		if v != nil {
			return v.Name
		}
	}
	return ""
}
