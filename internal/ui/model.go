package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/kyaoi/codepick/internal/checklist"
	"github.com/kyaoi/codepick/internal/session"
	"github.com/kyaoi/codepick/internal/tree"
)

const (
	chromeHeight      = 4
	minSummaryWidth   = 24
	minTreePanelWidth = 18
	defaultTreeWidth  = 40
	flashDuration     = 5 * time.Second
)

type tabID int

const (
	tabSelect tabID = iota
	tabCreate
)

var tabTitles = []string{"Select Project", "Create Project"}

var (
	treeBlurBorderColor  = lipgloss.Color("#3b4261")
	treeFocusBorderColor = lipgloss.Color("#7aa2f7")
	treeLineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9b1d6"))
	codeFileStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	treeSelectedActive   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1b26")).
				Background(lipgloss.Color("#7aa2f7")).
				Bold(true)
	treeSelectedInactive = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0caf5")).
				Background(lipgloss.Color("#283457"))
	helpBoxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Background(lipgloss.Color("#1f2335"))
	alertBoxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff6b6b")).
			Background(lipgloss.Color("#1f2335"))
	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#7aa2f7"))
	inactiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(lipgloss.Color("#a9b1d6")).
				Background(lipgloss.Color("#283457"))
	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#a9b1d6")).
			Background(lipgloss.Color("#1f2335"))
	flashStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#9ece6a"))
)

// Model implements the Bubble Tea program for selecting project files.
type Model struct {
	treeVP             viewport.Model
	summaryVP          viewport.Model
	renderer           *glamour.TermRenderer
	treePreferredWidth int
	treeContentWidth   int
	treeFocus          bool
	showHelp           bool
	pendingKey         string
	ready              bool
	width              int
	height             int

	activeTab tabID
	pathInput textinput.Model
	create    createForm

	loader      *session.Loader
	tracker     *session.Tracker
	timeout     time.Duration
	loading     bool
	loadingPath string
	current     *session.Session
	collapsed   map[string]bool

	flatTree        []checklist.Line
	treeSelection   int
	summaryMarkdown string

	alert   []string
	flash   string
	flashID int

	outcome Outcome

	watcher      *fsnotify.Watcher
	watchDir     string
	watchedFile  string
	watchChan    chan tea.Msg
	watchDone    chan struct{}
	reloadPolicy func() (tree.Policy, error)
	initialPath  string
}

type sessionLoadedMsg struct {
	session *session.Session
}

type flashExpiredMsg struct {
	id int
}

// NewModel constructs the model with the provided initial state.
func NewModel(state State) *Model {
	treeVP := viewport.New(0, 0)
	treeVP.Style = treePanelStyle(treeBlurBorderColor)
	treeVP.MouseWheelEnabled = false

	summaryVP := viewport.New(0, 0)
	summaryVP.Style = lipgloss.NewStyle().Padding(0, 1)

	m := &Model{
		treeVP:             treeVP,
		summaryVP:          summaryVP,
		treePreferredWidth: state.TreePreferredWidth,
		loader:             state.Loader,
		tracker:            session.NewTracker(),
		timeout:            state.RequestTimeout,
		collapsed:          make(map[string]bool),
		watchedFile:        state.ConfigPath,
		reloadPolicy:       state.ReloadPolicy,
		initialPath:        strings.TrimSpace(state.InitialPath),
	}

	pathInput := textinput.New()
	pathInput.Prompt = "Source code path: "
	pathInput.CharLimit = 4096
	pathInput.Placeholder = "/path/to/project"
	pathInput.SetValue(m.initialPath)
	pathInput.CursorEnd()
	m.pathInput = pathInput
	m.create = newCreateForm(m.initialPath)

	if m.initialPath == "" {
		m.pathInput.Focus()
	} else {
		m.focusTree()
	}
	m.refreshTree()
	m.updateSummary()

	return m
}

// Outcome returns what the user submitted before quitting.
func (m *Model) Outcome() Outcome {
	return m.outcome
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.initialPath != "" {
		path := m.initialPath
		m.initialPath = ""
		cmds = append(cmds, m.beginLoad(path))
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	if m.watchedFile != "" {
		cmds = append(cmds, m.startWatching(m.watchedFile))
	}
	return tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.alert) > 0 {
		return m.overlay(alertBoxStyle.Render(strings.Join(m.alert, "\n") + "\n\n(Enter / Esc)"))
	}

	if m.showHelp {
		helpContent := strings.Join([]string{
			"Help (? / Esc to close)",
			"Tab / Shift+Tab  : switch tab",
			"/ or i           : edit source code path",
			"Enter (path)     : load file list",
			"j / k            : move selection",
			"Ctrl+d / Ctrl+u  : half page down / up",
			"gg / G           : first / last entry",
			"Space / x        : toggle checkbox",
			"h / l            : collapse / expand folder",
			"r                : reload current path",
			"s                : use selected files",
			"q / Ctrl+c       : quit",
		}, "\n")
		return m.overlay(helpBoxStyle.Render(helpContent))
	}

	var body string
	switch m.activeTab {
	case tabCreate:
		body = m.create.view()
	default:
		panes := m.summaryVP.View()
		panes = lipgloss.JoinHorizontal(lipgloss.Top, m.treeVP.View(), panes)
		body = lipgloss.JoinVertical(lipgloss.Left, m.pathInput.View(), panes)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), body, m.statusLine())
}

func (m *Model) overlay(content string) string {
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) tabBar() string {
	tabs := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		if tabID(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) statusLine() string {
	if m.flash != "" {
		return flashStyle.Render(m.flash)
	}
	var hint string
	switch {
	case m.activeTab == tabCreate:
		hint = "↑/↓ field · Enter create · Tab switch · Ctrl+c quit"
	case m.pathInput.Focused():
		hint = "Enter load · Esc tree · Tab switch"
	case m.canSubmitSelection():
		hint = "Space toggle · s use selection · ? help · q quit"
	default:
		hint = "/ edit path · ? help · q quit"
	}
	return statusBarStyle.Render(hint)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		return m, m.handleLoaded(msg.session)
	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil
	case configEventMsg:
		return m, m.handleConfigEvent(msg)
	case configWatchErrMsg:
		return m, tea.Batch(m.setFlash("config watch: "+msg.err.Error()), m.waitForConfigEvent())
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()

		if len(m.alert) > 0 {
			switch key {
			case "enter", "esc", "q", " ", "space":
				m.alert = nil
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.showHelp {
			m.pendingKey = ""
			switch key {
			case "q", "?", "esc":
				m.showHelp = false
			}
			return m, nil
		}

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			return m, m.switchTab(m.activeTab + 1)
		case "shift+tab":
			return m, m.switchTab(m.activeTab + tabID(len(tabTitles)) - 1)
		}

		if m.activeTab == tabCreate {
			return m, m.handleCreateKey(msg)
		}

		if m.pathInput.Focused() {
			switch msg.Type {
			case tea.KeyEnter:
				cmd := m.beginRefresh(m.pathInput.Value())
				if cmd != nil {
					m.focusTree()
				}
				return m, cmd
			case tea.KeyEsc:
				m.focusTree()
				return m, nil
			}
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}

		if key != "g" {
			m.pendingKey = ""
		}

		switch key {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			m.pendingKey = ""
			return m, nil
		case "/", "i":
			m.blurTree()
			return m, m.pathInput.Focus()
		case "r":
			if m.current != nil {
				return m, m.beginRefresh(m.current.SourcePath)
			}
			return m, nil
		case "s":
			return m, m.submitSelection()
		}

		handled, cmd := m.handleTreeKey(key)
		if handled {
			return m, cmd
		}
		return m, nil
	}

	if m.activeTab == tabSelect && m.pathInput.Focused() {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) switchTab(next tabID) tea.Cmd {
	m.activeTab = next % tabID(len(tabTitles))
	m.pendingKey = ""
	if m.activeTab == tabCreate {
		m.pathInput.Blur()
		m.blurTree()
		return m.create.focus(m.create.field)
	}
	m.create.blur()
	if m.current == nil && !m.loading {
		return m.pathInput.Focus()
	}
	m.focusTree()
	return nil
}

// beginLoad issues a new ticket and returns the command that fetches it.
// Any earlier request still in flight is superseded. A cached listing may
// answer it.
func (m *Model) beginLoad(path string) tea.Cmd {
	return m.startLoad(path, false)
}

// beginRefresh is beginLoad for explicit user requests, which always reach
// the listing service.
func (m *Model) beginRefresh(path string) tea.Cmd {
	return m.startLoad(path, true)
}

func (m *Model) startLoad(path string, refresh bool) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		m.raiseAlert("Please enter a source code path.")
		return nil
	}
	if m.loader == nil {
		m.raiseAlert("No file-listing service configured.")
		return nil
	}
	ticket := m.tracker.Begin(path)
	ticket.Refresh = refresh
	m.loading = true
	m.loadingPath = path
	m.pathInput.SetValue(path)
	m.refreshTree()
	m.updateSummary()

	loader := m.loader
	timeout := m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return sessionLoadedMsg{session: loader.Load(ctx, ticket)}
	}
}

func (m *Model) handleLoaded(s *session.Session) tea.Cmd {
	if !m.tracker.Commit(s) {
		return nil
	}
	m.loading = false
	m.loadingPath = ""
	m.current = s
	m.collapsed = make(map[string]bool)
	m.treeSelection = 0
	m.treeVP.GotoTop()
	m.refreshTree()
	if m.ready {
		m.resize(m.width, m.height)
	} else {
		m.updateSummary()
	}

	if s.Failed() {
		m.raiseAlert("Error loading file tree: " + s.Err.Error())
		return nil
	}
	if n := len(s.Report.Rejected); n > 0 {
		return m.setFlash(fmt.Sprintf("%d malformed path(s) skipped", n))
	}
	return nil
}

func (m *Model) canSubmitSelection() bool {
	return !m.loading && m.current.Ready()
}

func (m *Model) submitSelection() tea.Cmd {
	if !m.canSubmitSelection() {
		return m.setFlash("Load a source code path first.")
	}
	m.outcome = Outcome{
		Kind:       OutcomeSelected,
		SourcePath: m.current.SourcePath,
		Files:      m.current.List.Selected(),
	}
	return tea.Quit
}

func (m *Model) raiseAlert(lines ...string) {
	m.alert = lines
	m.pendingKey = ""
}

func (m *Model) setFlash(text string) tea.Cmd {
	m.flashID++
	m.flash = text
	id := m.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= chromeHeight {
		return
	}

	m.width = width
	m.height = height
	m.ready = true

	paneHeight := max(height-chromeHeight, 1)
	treeWidth := m.treeWidth(width)
	summaryWidth := max(width-treeWidth, minSummaryWidth)

	m.treeVP.Width = treeWidth
	m.treeVP.Height = paneHeight
	m.summaryVP.Width = summaryWidth
	m.summaryVP.Height = paneHeight
	m.pathInput.Width = max(width-lipgloss.Width(m.pathInput.Prompt)-1, 10)
	m.create.resize(width)

	wrapWidth := summaryWidth - m.summaryVP.Style.GetHorizontalFrameSize()
	if wrapWidth < 0 {
		wrapWidth = 0
	}
	renderer, err := newRenderer(wrapWidth)
	if err != nil {
		m.renderer = nil
	} else {
		m.renderer = renderer
	}
	m.updateSummary()
	m.ensureSelectionVisible()
}

func (m *Model) treeWidth(totalWidth int) int {
	preferred := m.treePreferredWidth
	if preferred <= 0 {
		preferred = defaultTreeWidth
	}

	frame := m.treeVP.Style.GetHorizontalFrameSize()
	minPanel := max(minTreePanelWidth-frame, 0)
	maxPanel := max(totalWidth*2/3-frame, minPanel)
	panelContentWidth := clamp(preferred, minPanel, maxPanel)

	width := panelContentWidth + frame
	if totalWidth-width < minSummaryWidth {
		width = max(totalWidth-minSummaryWidth, 0)
	}
	return min(width, totalWidth)
}

func (m *Model) updateSummary() {
	m.summaryMarkdown = summaryMarkdown(m.current, m.loading, m.loadingPath)
	content := m.summaryMarkdown
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = rendered
		}
	}
	m.summaryVP.SetContent(content)
}

const maxSummaryFiles = 25

func summaryMarkdown(s *session.Session, loading bool, loadingPath string) string {
	var b strings.Builder
	switch {
	case loading:
		fmt.Fprintf(&b, "# Loading\n\n*Loading file list for `%s`...*\n", loadingPath)
	case s == nil:
		b.WriteString("# No project loaded\n\nEnter a source code path and press **Enter** to preview its files.\n")
	case s.Failed():
		fmt.Fprintf(&b, "# Error\n\nError loading file tree: %s\n", s.Err)
	default:
		files, checked := s.List.Counts()
		fmt.Fprintf(&b, "# %s\n\n", s.SourcePath)
		fmt.Fprintf(&b, "- **Files:** %d\n", files)
		fmt.Fprintf(&b, "- **Selected:** %d\n", checked)
		if n := len(s.Report.Excluded); n > 0 {
			fmt.Fprintf(&b, "- **Excluded folders hid:** %d file(s)\n", n)
		}
		if n := len(s.Report.Rejected); n > 0 {
			fmt.Fprintf(&b, "- **Malformed paths skipped:** %d\n", n)
		}
		selected := s.List.Selected()
		if len(selected) == 0 {
			break
		}
		b.WriteString("\n## Selected files\n\n")
		for i, path := range selected {
			if i == maxSummaryFiles {
				fmt.Fprintf(&b, "- ... and %d more\n", len(selected)-maxSummaryFiles)
				break
			}
			fmt.Fprintf(&b, "- `%s`\n", path)
		}
	}
	return b.String()
}

func newRenderer(width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(styles.TokyoNightStyle)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	} else {
		opts = append(opts, glamour.WithWordWrap(0))
	}
	return glamour.NewTermRenderer(opts...)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
