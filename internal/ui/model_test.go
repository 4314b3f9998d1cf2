package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyaoi/codepick/internal/listing"
	"github.com/kyaoi/codepick/internal/session"
	"github.com/kyaoi/codepick/internal/tree"
)

type stubLister struct {
	results map[string][]tree.Entry
	errs    map[string]error
}

func (s stubLister) List(_ context.Context, path string) ([]tree.Entry, error) {
	if err := s.errs[path]; err != nil {
		return nil, err
	}
	return s.results[path], nil
}

func entries(paths ...string) []tree.Entry {
	out := make([]tree.Entry, 0, len(paths))
	for _, p := range paths {
		out = append(out, tree.Entry{RelativePath: p})
	}
	return out
}

func newTestModel(t *testing.T, lister stubLister, initialPath string) *Model {
	t.Helper()
	return newModelWithLister(t, lister, initialPath)
}

func newModelWithLister(t *testing.T, lister listing.Lister, initialPath string) *Model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m := NewModel(State{
		Loader:      session.NewLoader(lister, tree.DefaultPolicy(), logger),
		InitialPath: initialPath,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// runCmd executes cmd and feeds the resulting messages back into the model.
func runCmd(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(m, c)
		}
		return
	}
	if _, ok := msg.(sessionLoadedMsg); ok {
		m.Update(msg)
	}
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func sampleLister() stubLister {
	return stubLister{results: map[string][]tree.Entry{
		"/proj": entries("src/main.py", "README.md", "node_modules/lib/index.js"),
	}}
}

func TestModel_InitLoadsInitialPath(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())

	require.True(t, m.current.Ready())
	assert.False(t, m.loading)
	assert.Equal(t, []string{
		"- [x] src/",
		"    [x] main.py",
		"  [ ] README.md",
	}, m.treeText())
	assert.Contains(t, m.summaryMarkdown, "`src/main.py`")
}

func TestModel_LateResponseIsDropped(t *testing.T) {
	lister := stubLister{results: map[string][]tree.Entry{
		"/a": entries("a.py"),
		"/b": entries("b.py"),
	}}
	m := newTestModel(t, lister, "")

	loadA := m.beginLoad("/a")
	loadB := m.beginLoad("/b")
	require.NotNil(t, loadA)
	require.NotNil(t, loadB)

	msgA := loadA()
	msgB := loadB()

	m.Update(msgA)
	assert.True(t, m.loading, "older response must not finish the load")
	assert.Nil(t, m.current)

	m.Update(msgB)
	require.NotNil(t, m.current)
	assert.Equal(t, "/b", m.current.SourcePath)

	m.Update(msgA)
	assert.Equal(t, "/b", m.current.SourcePath)
	assert.Equal(t, []string{"  [x] b.py"}, m.treeText())
}

func TestModel_FolderToggleDoesNotCascade(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	require.True(t, m.current.Ready())

	press(m, "space")
	assert.Equal(t, []string{
		"- [ ] src/",
		"    [x] main.py",
		"  [ ] README.md",
	}, m.treeText())
	assert.Equal(t, []string{"src/main.py"}, m.current.List.Selected())

	press(m, "j")
	press(m, "x")
	assert.Empty(t, m.current.List.Selected())
}

func TestModel_CollapseHidesChildren(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())

	press(m, "h")
	assert.Equal(t, []string{
		"+ [x] src/",
		"  [ ] README.md",
	}, m.treeText())

	press(m, "l")
	assert.Len(t, m.treeText(), 3)
}

func TestModel_SubmitSelection(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())

	press(m, "G")
	press(m, "space")
	cmd := press(m, "s")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	out := m.Outcome()
	assert.Equal(t, OutcomeSelected, out.Kind)
	assert.Equal(t, "/proj", out.SourcePath)
	assert.Equal(t, []string{"src/main.py", "README.md"}, out.Files)
}

func TestModel_SubmitWithoutListing(t *testing.T) {
	m := newTestModel(t, sampleLister(), "")
	assert.False(t, m.canSubmitSelection())
	assert.NotNil(t, m.submitSelection())
	assert.Equal(t, OutcomeNone, m.Outcome().Kind)
}

func TestModel_LoadErrorClearsTree(t *testing.T) {
	lister := sampleLister()
	lister.errs = map[string]error{"/broken": errors.New("boom")}
	m := newTestModel(t, lister, "/proj")
	runCmd(m, m.Init())
	require.True(t, m.current.Ready())

	runCmd(m, m.beginLoad("/broken"))

	require.NotNil(t, m.current)
	assert.True(t, m.current.Failed())
	assert.Empty(t, m.flatTree)
	assert.Equal(t, []string{"Error loading file tree: boom"}, m.alert)
	assert.Equal(t, []string{"Error loading file tree: boom"}, m.treeText())

	press(m, "enter")
	assert.Empty(t, m.alert)
}

func TestModel_EmptyListing(t *testing.T) {
	lister := stubLister{results: map[string][]tree.Entry{
		"/empty":    nil,
		"/excluded": entries("node_modules/a.js", "dist/b.js"),
	}}
	m := newTestModel(t, lister, "")

	for _, path := range []string{"/empty", "/excluded"} {
		runCmd(m, m.beginLoad(path))
		require.True(t, m.current.Ready(), path)
		assert.Equal(t, []string{"No processable code files found in this directory."}, m.treeText(), path)
		assert.False(t, m.current.Failed())
	}
}

func TestModel_EmptyPathRaisesAlert(t *testing.T) {
	m := newTestModel(t, sampleLister(), "")
	assert.Nil(t, m.beginLoad("   "))
	assert.Equal(t, []string{"Please enter a source code path."}, m.alert)
	assert.False(t, m.loading)
}

func TestModel_PathInputLoads(t *testing.T) {
	m := newTestModel(t, sampleLister(), "")
	require.True(t, m.pathInput.Focused())

	typeText(m, "/proj")
	runCmd(m, press(m, "enter"))

	require.True(t, m.current.Ready())
	assert.Equal(t, "/proj", m.current.SourcePath)
	assert.True(t, m.treeFocus)
}

func TestModel_FlashExpires(t *testing.T) {
	m := newTestModel(t, sampleLister(), "")

	m.setFlash("first")
	stale := m.flashID
	m.setFlash("second")

	m.Update(flashExpiredMsg{id: stale})
	assert.Equal(t, "second", m.flash)

	m.Update(flashExpiredMsg{id: m.flashID})
	assert.Empty(t, m.flash)
}

func TestModel_CreateProjectValidation(t *testing.T) {
	m := newTestModel(t, sampleLister(), "")
	press(m, "tab")
	require.Equal(t, tabCreate, m.activeTab)

	typeText(m, "bad name")
	press(m, "down")
	typeText(m, "relative/path")
	press(m, "enter")

	require.Len(t, m.alert, 3)
	assert.Equal(t, "Please fix the following errors:", m.alert[0])
	assert.Contains(t, m.alert[1], "Project Name can only contain")
	assert.Contains(t, m.alert[2], "absolute path")
	assert.Equal(t, createFieldName, m.create.field)
	assert.Equal(t, OutcomeNone, m.Outcome().Kind)
}

func TestModel_CreateProjectSubmit(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	press(m, "tab")
	require.Equal(t, tabCreate, m.activeTab)

	typeText(m, "my-project")
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	out := m.Outcome()
	assert.Equal(t, OutcomeCreate, out.Kind)
	assert.Equal(t, "my-project", out.ProjectName)
	assert.Equal(t, "/proj", out.SourcePath)
}

func TestModel_PolicyReloadRebuildsTree(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	require.True(t, m.current.Ready())
	seq := m.current.Seq

	m.reloadPolicy = func() (tree.Policy, error) {
		return tree.PolicyFromLists(nil, []string{"src", "node_modules"}, []string{"md"}), nil
	}
	m.applyPolicyReload()

	assert.Equal(t, seq, m.current.Seq)
	assert.Contains(t, m.treeText(), "- [ ] node_modules/")
	assert.Contains(t, m.treeText(), "  [x] README.md")
	assert.Contains(t, m.treeText(), "- [ ] src/")
	assert.Equal(t, "Configuration reloaded", m.flash)
}

func TestModel_PolicyReloadFailureKeepsTree(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	before := m.current

	m.reloadPolicy = func() (tree.Policy, error) { return tree.Policy{}, errors.New("bad yaml") }
	m.applyPolicyReload()

	assert.Same(t, before, m.current)
	assert.Equal(t, "config reload failed: bad yaml", m.flash)
}

func TestModel_ReloadBypassesListingCache(t *testing.T) {
	lister := stubLister{results: map[string][]tree.Entry{"/proj": entries("a.py")}}
	m := newModelWithLister(t, listing.NewCached(lister, 4, time.Minute), "/proj")
	runCmd(m, m.Init())
	require.Equal(t, []string{"  [x] a.py"}, m.treeText())

	lister.results["/proj"] = entries("a.py", "new.py")
	runCmd(m, m.beginLoad("/proj"))
	assert.Equal(t, []string{"  [x] a.py"}, m.treeText())

	runCmd(m, press(m, "r"))
	assert.Equal(t, []string{"  [x] a.py", "  [x] new.py"}, m.treeText())

	lister.results["/proj"] = entries("a.py", "new.py", "z.js")
	press(m, "/")
	require.True(t, m.pathInput.Focused())
	runCmd(m, press(m, "enter"))
	assert.Equal(t, []string{"  [x] a.py", "  [x] new.py", "  [x] z.js"}, m.treeText())
}

func TestModel_PolicyReloadKeepsCursor(t *testing.T) {
	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	press(m, "G")
	require.Equal(t, "README.md", m.currentTreeEntry().Path)

	m.reloadPolicy = func() (tree.Policy, error) {
		return tree.PolicyFromLists(nil, nil, []string{"py"}), nil
	}
	m.applyPolicyReload()

	require.Len(t, m.treeText(), 6)
	assert.Equal(t, "README.md", m.currentTreeEntry().Path)
}

func receive(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command")
		return nil
	}
}

func TestModel_ConfigFileChangeReloadsPolicy(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "codepick.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("tree: {}\n"), 0o644))

	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	reloads := 0
	m.reloadPolicy = func() (tree.Policy, error) {
		reloads++
		return tree.PolicyFromLists(nil, nil, []string{"md"}), nil
	}
	wait := m.startWatching(cfg)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, os.WriteFile(cfg, []byte("tree:\n  code_extensions: [md]\n"), 0o644))

	event, ok := receive(t, wait).(configEventMsg)
	require.True(t, ok)
	assert.Equal(t, cfg, filepath.Clean(event.path))

	m.Update(event)
	assert.Equal(t, 1, reloads)
	assert.Contains(t, m.treeText(), "  [x] README.md")
	assert.Equal(t, "Configuration reloaded", m.flash)
}

func TestModel_ConfigEventForOtherFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "codepick.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("tree: {}\n"), 0o644))

	m := newTestModel(t, sampleLister(), "/proj")
	runCmd(m, m.Init())
	reloads := 0
	m.reloadPolicy = func() (tree.Policy, error) {
		reloads++
		return tree.DefaultPolicy(), nil
	}
	require.NotNil(t, m.startWatching(cfg))
	t.Cleanup(func() { _ = m.Close() })

	_, cmd := m.Update(configEventMsg{path: filepath.Join(dir, "other.yaml")})

	assert.NotNil(t, cmd, "watching continues")
	assert.Zero(t, reloads)
	assert.Empty(t, m.flash)
}

func TestModel_CloseReleasesPendingWait(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, sampleLister(), "")
	wait := m.startWatching(filepath.Join(dir, "codepick.yaml"))
	require.NotNil(t, wait)

	require.NoError(t, m.Close())
	assert.Nil(t, receive(t, wait))
	assert.NoError(t, m.Close())
}
