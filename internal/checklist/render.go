package checklist

import (
	"log/slog"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kyaoi/codepick/internal/tree"
)

// Renderer turns an assembled tree into a Checklist.
type Renderer struct {
	policy tree.Policy
	logger *slog.Logger
	tag    language.Tag
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default.
func NewRenderer(policy tree.Policy, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		policy: policy,
		logger: logger,
		tag:    language.Und,
	}
}

// Render emits one toggle per node. Folders start checked unless their name
// is soft-excluded and files start checked when they are code files.
func (r *Renderer) Render(root *tree.Folder) *Checklist {
	list := &Checklist{}
	if root == nil {
		return list
	}
	less := r.lessFunc()
	list.Items = r.renderChildren(root, "", less, list)
	enforceCodeSelection(list)
	return list
}

func (r *Renderer) renderChildren(dir *tree.Folder, parent string, less func(a, b string) bool, list *Checklist) []*Toggle {
	children := dir.SortedChildren(less)
	items := make([]*Toggle, 0, len(children))
	for _, child := range children {
		switch n := child.(type) {
		case *tree.Folder:
			if n == nil {
				r.skip(list, parent, child)
				continue
			}
			path := joinPath(parent, n.Name)
			items = append(items, &Toggle{
				Kind:     KindFolder,
				Name:     n.Name,
				Label:    n.Name + "/",
				Path:     path,
				Checked:  !r.policy.SoftExcluded(n.Name),
				Children: r.renderChildren(n, path, less, list),
			})
		case *tree.File:
			if n == nil {
				r.skip(list, parent, child)
				continue
			}
			items = append(items, &Toggle{
				Kind:    KindFile,
				Name:    n.Name,
				Label:   n.Name,
				Path:    n.FullPath,
				Code:    n.IsCode,
				Checked: n.IsCode,
			})
		default:
			r.skip(list, parent, child)
		}
	}
	return items
}

func (r *Renderer) skip(list *Checklist, parent string, n tree.Node) {
	list.Skipped++
	r.logger.Warn("skipping malformed tree node", "parent", parent, "node", n)
}

func (r *Renderer) lessFunc() func(a, b string) bool {
	col := collate.New(r.tag, collate.IgnoreCase)
	return func(a, b string) bool {
		if c := col.CompareString(a, b); c != 0 {
			return c < 0
		}
		return a < b
	}
}

// enforceCodeSelection re-checks every file toggle marked as code. Given a
// consistent policy it changes nothing; if emission ever disagrees, this
// pass wins.
func enforceCodeSelection(list *Checklist) {
	list.Walk(func(t *Toggle) {
		if t.Kind == KindFile && t.Code {
			t.Checked = true
		}
	})
}

func joinPath(base, part string) string {
	if base == "" {
		return part
	}
	return strings.Join([]string{base, part}, "/")
}
