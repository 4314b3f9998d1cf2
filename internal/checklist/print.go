package checklist

import (
	"fmt"
	"io"

	ltree "github.com/charmbracelet/lipgloss/tree"
)

// Checkbox returns the textual checkbox for a checked state.
func Checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// Print writes a static rendering of the checklist under title.
func Print(w io.Writer, title string, list *Checklist) error {
	if list.Empty() {
		_, err := fmt.Fprintf(w, "%s\n(no files)\n", title)
		return err
	}
	root := ltree.Root(title).Enumerator(ltree.RoundedEnumerator)
	for _, item := range list.Items {
		root.Child(printNode(item))
	}
	_, err := fmt.Fprintln(w, root.String())
	return err
}

func printNode(t *Toggle) any {
	label := Checkbox(t.Checked) + " " + t.Label
	if !t.IsFolder() || len(t.Children) == 0 {
		return label
	}
	sub := ltree.Root(label).Enumerator(ltree.RoundedEnumerator)
	for _, child := range t.Children {
		sub.Child(printNode(child))
	}
	return sub
}
