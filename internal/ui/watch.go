package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/kyaoi/codepick/internal/checklist"
)

type configEventMsg struct {
	path string
	op   fsnotify.Op
}

type configWatchErrMsg struct {
	err error
}

// startWatching watches the directory holding path so that editors which
// replace the file on save are still observed.
func (m *Model) startWatching(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)
	if err := m.ensureWatcher(); err != nil {
		return m.setFlash("config watch: " + err.Error())
	}

	dir := filepath.Dir(path)
	if dir != m.watchDir {
		if m.watchDir != "" {
			_ = m.watcher.Remove(m.watchDir)
		}
		if err := m.watcher.Add(dir); err != nil {
			return m.setFlash("config watch: " + err.Error())
		}
		m.watchDir = dir
	}

	m.watchedFile = path
	return m.waitForConfigEvent()
}

func (m *Model) ensureWatcher() error {
	if m.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher
	m.watchChan = make(chan tea.Msg, 10)
	m.watchDone = make(chan struct{})

	go watchLoop(watcher, m.watchChan, m.watchDone)
	return nil
}

// watchLoop forwards relevant watcher events until the watcher is closed or
// done is closed.
func watchLoop(watcher *fsnotify.Watcher, out chan<- tea.Msg, done <-chan struct{}) {
	for {
		var msg tea.Msg
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			msg = configEventMsg{path: event.Name, op: event.Op}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			msg = configWatchErrMsg{err: err}
		}

		select {
		case out <- msg:
		case <-done:
			return
		}
	}
}

// waitForConfigEvent returns a command that yields the next watcher message,
// or nil once the watcher has been closed.
func (m *Model) waitForConfigEvent() tea.Cmd {
	if m.watchChan == nil {
		return nil
	}
	ch, done := m.watchChan, m.watchDone
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

func (m *Model) handleConfigEvent(msg configEventMsg) tea.Cmd {
	if m.watchedFile == "" || filepath.Clean(msg.path) != m.watchedFile {
		return m.waitForConfigEvent()
	}
	return tea.Batch(m.applyPolicyReload(), m.waitForConfigEvent())
}

// applyPolicyReload re-reads the exclusion policy and re-renders the current
// listing under it. Checkbox state returns to the defaults; the cursor stays
// on the same entry when it still exists.
func (m *Model) applyPolicyReload() tea.Cmd {
	if m.reloadPolicy == nil || m.loader == nil {
		return nil
	}
	policy, err := m.reloadPolicy()
	if err != nil {
		return m.setFlash("config reload failed: " + err.Error())
	}
	m.loader.SetPolicy(policy)

	if m.current.Ready() {
		keep := m.currentTreeEntry()
		rebuilt := m.loader.Rebuild(m.current, policy)
		if m.tracker.Replace(rebuilt) {
			m.current = rebuilt
			var selected *checklist.Toggle
			if keep != nil {
				selected = rebuilt.List.Find(keep.Kind, keep.Path)
			}
			m.refreshTreeWithSelection(selected)
			m.updateSummary()
		}
	}
	return m.setFlash("Configuration reloaded")
}

// Close stops the configuration watcher, if one was started. Pending
// waitForConfigEvent commands return nil afterwards.
func (m *Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	close(m.watchDone)
	err := m.watcher.Close()
	m.watcher = nil
	return err
}
