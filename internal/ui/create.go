package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyaoi/codepick/internal/form"
)

const (
	createFieldName = iota
	createFieldPath
	createFieldCount
)

var formLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))

type createForm struct {
	inputs []textinput.Model
	field  int
}

func newCreateForm(sourcePath string) createForm {
	name := textinput.New()
	name.Prompt = "> "
	name.Placeholder = "my-project"
	name.CharLimit = 256

	path := textinput.New()
	path.Prompt = "> "
	path.Placeholder = "/absolute/path/to/project"
	path.CharLimit = 4096
	path.SetValue(sourcePath)

	return createForm{inputs: []textinput.Model{name, path}}
}

func (f *createForm) focus(field int) tea.Cmd {
	f.field = clamp(field, 0, createFieldCount-1)
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.field {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *createForm) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *createForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(width-4, 10)
	}
}

func (f *createForm) values() (name, path string) {
	return f.inputs[createFieldName].Value(), f.inputs[createFieldPath].Value()
}

func (f *createForm) view() string {
	var b strings.Builder
	b.WriteString(formLabelStyle.Render("Project Name"))
	b.WriteByte('\n')
	b.WriteString(f.inputs[createFieldName].View())
	b.WriteString("\n\n")
	b.WriteString(formLabelStyle.Render("Source Code Path"))
	b.WriteByte('\n')
	b.WriteString(f.inputs[createFieldPath].View())
	b.WriteByte('\n')
	return b.String()
}

func (m *Model) handleCreateKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up":
		return m.create.focus(m.create.field - 1)
	case "down":
		return m.create.focus(m.create.field + 1)
	case "esc":
		return m.switchTab(tabSelect)
	case "enter":
		return m.submitCreate()
	}
	var cmd tea.Cmd
	m.create.inputs[m.create.field], cmd = m.create.inputs[m.create.field].Update(msg)
	return cmd
}

// submitCreate validates the form and, when it passes, records the outcome
// and quits. Invalid input raises an alert and focuses the first bad field.
func (m *Model) submitCreate() tea.Cmd {
	name, path := m.create.values()
	if err := form.ValidateProject(name, path); err != nil {
		lines := []string{"Please fix the following errors:"}
		field := createFieldName
		if v, ok := form.AsValidation(err); ok {
			for _, msg := range v.Messages() {
				lines = append(lines, "- "+msg)
			}
			if v.Field() == form.FieldPath {
				field = createFieldPath
			}
		} else {
			lines = append(lines, "- "+err.Error())
		}
		m.raiseAlert(lines...)
		return m.create.focus(field)
	}
	m.outcome = Outcome{
		Kind:        OutcomeCreate,
		ProjectName: strings.TrimSpace(name),
		SourcePath:  strings.TrimSpace(path),
	}
	return tea.Quit
}
