package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kyaoi/codepick/internal/checklist"
	"github.com/kyaoi/codepick/internal/listing"
	"github.com/kyaoi/codepick/internal/tree"
)

// Loader runs the fetch, build and render pipeline for a ticket.
type Loader struct {
	lister listing.Lister
	mu     sync.RWMutex
	policy tree.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(lister listing.Lister, policy tree.Policy, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		lister: lister,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Policy returns the policy new loads are built with.
func (l *Loader) Policy() tree.Policy {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.policy
}

// SetPolicy changes the policy used by later loads.
func (l *Loader) SetPolicy(p tree.Policy) {
	l.mu.Lock()
	l.policy = p
	l.mu.Unlock()
	l.logger.Info("tree policy updated",
		"hard_exclude", p.HardExclude.Sorted(),
		"soft_exclude", p.SoftExclude.Sorted(),
		"code_extensions", p.CodeExtensions.Sorted(),
	)
}

// Load fetches the listing for the ticket and renders it. A failed fetch
// yields a session with Err set and no tree.
func (l *Loader) Load(ctx context.Context, ticket Ticket) *Session {
	entries, err := l.fetch(ctx, ticket)
	if err != nil {
		l.logger.Error("loading file list failed", "seq", ticket.Seq, "path", ticket.SourcePath, "error", err)
		return &Session{
			Seq:        ticket.Seq,
			SourcePath: ticket.SourcePath,
			Err:        err,
			LoadedAt:   l.now(),
		}
	}
	return l.assemble(ticket.Seq, ticket.SourcePath, entries, l.Policy())
}

func (l *Loader) fetch(ctx context.Context, ticket Ticket) ([]tree.Entry, error) {
	if ticket.Refresh {
		if r, ok := l.lister.(listing.Refresher); ok {
			return r.Refresh(ctx, ticket.SourcePath)
		}
	}
	return l.lister.List(ctx, ticket.SourcePath)
}

// Rebuild re-assembles the entries of s under policy without fetching. The
// result keeps the sequence number of s.
func (l *Loader) Rebuild(s *Session, policy tree.Policy) *Session {
	if s == nil || s.Err != nil {
		return s
	}
	return l.assemble(s.Seq, s.SourcePath, s.Entries, policy)
}

func (l *Loader) assemble(seq uint64, sourcePath string, entries []tree.Entry, policy tree.Policy) *Session {
	root, report := tree.Build(entries, policy)
	for _, rejected := range report.Rejected {
		l.logger.Warn("rejected file entry", "seq", seq, "path", rejected.Path, "error", rejected.Err)
	}
	if len(report.Excluded) > 0 {
		l.logger.Debug("excluded file entries", "seq", seq, "count", len(report.Excluded))
	}

	list := checklist.NewRenderer(policy, l.logger).Render(root)
	files, checked := list.Counts()
	l.logger.Info("file list loaded",
		"seq", seq,
		"path", sourcePath,
		"entries", len(entries),
		"files", files,
		"checked", checked,
	)

	return &Session{
		Seq:        seq,
		SourcePath: sourcePath,
		Entries:    entries,
		Root:       root,
		Report:     report,
		List:       list,
		LoadedAt:   l.now(),
	}
}
