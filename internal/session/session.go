// Package session holds the result of one load of a source path and guards
// against slow responses replacing newer ones.
package session

import (
	"sync"
	"time"

	"github.com/kyaoi/codepick/internal/checklist"
	"github.com/kyaoi/codepick/internal/tree"
)

// Ticket identifies one requested load. Refresh asks for a fresh fetch that
// skips any cached listing.
type Ticket struct {
	Seq        uint64
	SourcePath string
	Refresh    bool
}

// Session is the outcome of a single fetch, build and render cycle. A
// session is replaced as a whole and never patched in place, apart from the
// user's toggling of List.
type Session struct {
	Seq        uint64
	SourcePath string
	Entries    []tree.Entry
	Root       *tree.Folder
	Report     tree.Report
	List       *checklist.Checklist
	Err        error
	LoadedAt   time.Time
}

// Failed reports whether the load ended in an error.
func (s *Session) Failed() bool {
	return s != nil && s.Err != nil
}

// Ready reports whether the session holds a rendered tree.
func (s *Session) Ready() bool {
	return s != nil && s.Err == nil && s.List != nil
}

// Tracker hands out tickets and keeps the session of the newest one.
type Tracker struct {
	mu      sync.Mutex
	latest  uint64
	current *Session
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin issues a ticket that supersedes every earlier one.
func (t *Tracker) Begin(sourcePath string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	return Ticket{Seq: t.latest, SourcePath: sourcePath}
}

// Commit installs s if it answers the newest ticket and reports whether it
// did. Responses to superseded tickets are dropped.
func (t *Tracker) Commit(s *Session) bool {
	if s == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Seq != t.latest {
		return false
	}
	t.current = s
	return true
}

// Replace swaps the current session for s when both belong to the same
// ticket. It is used when the same listing is rebuilt under a new policy.
func (t *Tracker) Replace(s *Session) bool {
	if s == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil || t.current.Seq != s.Seq {
		return false
	}
	t.current = s
	return true
}

// Current returns the installed session, or nil.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Pending reports whether a ticket has been issued that has not been
// committed yet.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest != 0 && (t.current == nil || t.current.Seq != t.latest)
}
