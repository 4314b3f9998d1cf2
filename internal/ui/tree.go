package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kyaoi/codepick/internal/checklist"
)

func (m *Model) handleTreeKey(key string) (bool, tea.Cmd) {
	switch key {
	case "j", "down":
		m.moveTreeSelection(1)
		return true, nil
	case "k", "up":
		m.moveTreeSelection(-1)
		return true, nil
	case "ctrl+d":
		m.moveTreeSelection(max(1, m.treeVP.Height/2))
		return true, nil
	case "ctrl+u":
		m.moveTreeSelection(-max(1, m.treeVP.Height/2))
		return true, nil
	case " ", "space", "x":
		m.toggleCurrent()
		return true, nil
	case "l", "right":
		m.expandOrDescend()
		return true, nil
	case "h", "left":
		m.collapseOrAscend()
		return true, nil
	case "enter":
		entry := m.currentTreeEntry()
		if entry == nil {
			return true, nil
		}
		if entry.IsFolder() {
			if m.collapsed[entry.Path] {
				m.expandOrDescend()
			} else {
				m.collapseOrAscend()
			}
			return true, nil
		}
		m.toggleCurrent()
		return true, nil
	case "g":
		if m.pendingKey == "g" {
			m.pendingKey = ""
			if len(m.flatTree) > 0 {
				m.treeSelection = 0
				m.updateTreeContent(m.treeContentWidth)
			}
		} else {
			m.pendingKey = "g"
		}
		return true, nil
	case "G":
		m.pendingKey = ""
		if len(m.flatTree) > 0 {
			m.treeSelection = len(m.flatTree) - 1
			m.updateTreeContent(m.treeContentWidth)
		}
		return true, nil
	}
	m.pendingKey = ""
	return false, nil
}

func (m *Model) moveTreeSelection(delta int) {
	if len(m.flatTree) == 0 {
		return
	}
	m.treeSelection = clamp(m.treeSelection+delta, 0, len(m.flatTree)-1)
	m.updateTreeContent(m.treeContentWidth)
}

// toggleCurrent flips only the selected checkbox; folders do not cascade.
func (m *Model) toggleCurrent() {
	entry := m.currentTreeEntry()
	if entry == nil {
		return
	}
	entry.Flip()
	m.updateTreeContent(m.treeContentWidth)
	m.updateSummary()
}

func (m *Model) expandOrDescend() {
	entry := m.currentTreeEntry()
	if entry == nil || !entry.IsFolder() {
		return
	}
	if m.collapsed[entry.Path] {
		delete(m.collapsed, entry.Path)
		m.refreshTreeWithSelection(entry)
		return
	}
	if len(entry.Children) > 0 {
		m.moveTreeSelection(1)
	}
}

func (m *Model) collapseOrAscend() {
	entry := m.currentTreeEntry()
	if entry == nil {
		return
	}
	if entry.IsFolder() && !m.collapsed[entry.Path] && len(entry.Children) > 0 {
		m.collapsed[entry.Path] = true
		m.refreshTreeWithSelection(entry)
		return
	}
	depth := m.flatTree[m.treeSelection].Depth
	for i := m.treeSelection - 1; i >= 0; i-- {
		if m.flatTree[i].Depth < depth {
			m.treeSelection = i
			m.updateTreeContent(m.treeContentWidth)
			return
		}
	}
}

func (m *Model) currentTreeEntry() *checklist.Toggle {
	if len(m.flatTree) == 0 || m.treeSelection < 0 || m.treeSelection >= len(m.flatTree) {
		return nil
	}
	return m.flatTree[m.treeSelection].Toggle
}

func (m *Model) refreshTree() {
	m.refreshTreeWithSelection(m.currentTreeEntry())
}

func (m *Model) refreshTreeWithSelection(keep *checklist.Toggle) {
	maxWidth := m.rebuildFlatTree()
	if len(m.flatTree) == 0 {
		m.treeSelection = 0
	} else if idx := m.indexForToggle(keep); idx >= 0 {
		m.treeSelection = idx
	} else {
		m.treeSelection = clamp(m.treeSelection, 0, len(m.flatTree)-1)
	}
	m.treeContentWidth = maxWidth
	m.updateTreeContent(maxWidth)
}

func (m *Model) rebuildFlatTree() int {
	if m.loading || !m.current.Ready() {
		m.flatTree = nil
		return 0
	}
	m.flatTree = m.current.List.Lines(func(t *checklist.Toggle) bool {
		return m.collapsed[t.Path]
	})
	maxWidth := 0
	for _, line := range m.flatTree {
		if w := lipgloss.Width(m.formatTreeLabel(line)); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

func (m *Model) indexForToggle(t *checklist.Toggle) int {
	if t == nil {
		return -1
	}
	for i, line := range m.flatTree {
		if line.Toggle == t {
			return i
		}
	}
	return -1
}

// treePlaceholder is shown instead of the tree when nothing is rendered.
func (m *Model) treePlaceholder() string {
	switch {
	case m.loading:
		return "Loading file list..."
	case m.current == nil:
		return "No source code path loaded."
	case m.current.Failed():
		return "Error loading file tree: " + m.current.Err.Error()
	case m.current.List.Empty():
		return "No processable code files found in this directory."
	}
	return ""
}

func (m *Model) updateTreeContent(width int) {
	if width <= 0 {
		width = minTreePanelWidth
	}
	m.treePreferredWidth = max(width+4, m.treePreferredWidth)

	if placeholder := m.treePlaceholder(); placeholder != "" {
		m.treeVP.SetContent(treeLineStyle.Render(placeholder))
		return
	}

	var builder strings.Builder
	for i, line := range m.flatTree {
		text := m.formatTreeLabel(line)
		if m.treeVP.Width > 0 {
			text = ansi.Truncate(text, max(m.treeVP.Width-m.treeVP.Style.GetHorizontalFrameSize(), 1), "…")
		}
		switch {
		case i == m.treeSelection && m.treeFocus:
			builder.WriteString(treeSelectedActive.Render(text))
		case i == m.treeSelection:
			builder.WriteString(treeSelectedInactive.Render(text))
		case line.Toggle.Code:
			builder.WriteString(codeFileStyle.Render(text))
		default:
			builder.WriteString(treeLineStyle.Render(text))
		}
		if i < len(m.flatTree)-1 {
			builder.WriteByte('\n')
		}
	}
	m.treeVP.SetContent(builder.String())
	m.ensureSelectionVisible()
}

// treeText returns the unstyled tree rows.
func (m *Model) treeText() []string {
	if placeholder := m.treePlaceholder(); placeholder != "" {
		return []string{placeholder}
	}
	out := make([]string, 0, len(m.flatTree))
	for _, line := range m.flatTree {
		out = append(out, m.formatTreeLabel(line))
	}
	return out
}

func (m *Model) ensureSelectionVisible() {
	if len(m.flatTree) == 0 || m.treeVP.Height == 0 {
		return
	}
	if m.treeSelection < m.treeVP.YOffset {
		m.treeVP.SetYOffset(m.treeSelection)
		return
	}
	bottom := m.treeVP.YOffset + m.treeVP.Height - 1
	if m.treeSelection > bottom {
		m.treeVP.SetYOffset(m.treeSelection - m.treeVP.Height + 1)
	}
}

func (m *Model) focusTree() {
	m.pathInput.Blur()
	m.treeFocus = true
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
}

func (m *Model) blurTree() {
	m.treeFocus = false
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
}

func (m *Model) updateTreePanelStyle() {
	color := treeBlurBorderColor
	if m.treeFocus {
		color = treeFocusBorderColor
	}
	m.treeVP.Style = treePanelStyle(color)
}

func treePanelStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(color)
}

func (m *Model) formatTreeLabel(line checklist.Line) string {
	indent := strings.Repeat("  ", line.Depth)
	indicator := "  "
	if line.Toggle.IsFolder() && len(line.Toggle.Children) > 0 {
		if m.collapsed[line.Toggle.Path] {
			indicator = "+ "
		} else {
			indicator = "- "
		}
	}
	return indent + indicator + checklist.Checkbox(line.Toggle.Checked) + " " + line.Toggle.Label
}
