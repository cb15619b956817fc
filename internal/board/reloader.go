package board

import (
	"context"
	"log/slog"
)

// WatchFunc blocks until ctx is done, calling onChange whenever the stored
// board may have changed outside this process.
type WatchFunc func(ctx context.Context, onChange func()) error

// Reloader pulls external edits of the stored board into the manager.
type Reloader struct {
	repo    Repository
	manager *Manager
	watch   WatchFunc
	syncer  *Syncer
}

type ReloaderOption func(*Reloader)

// WithSyncer makes the reloader skip boards that syncer wrote itself. Without
// it, a save of an older version landing after a newer commit would be
// reloaded over that commit.
func WithSyncer(s *Syncer) ReloaderOption {
	return func(r *Reloader) {
		r.syncer = s
	}
}

func NewReloader(repo Repository, manager *Manager, watch WatchFunc, opts ...ReloaderOption) *Reloader {
	r := &Reloader{repo: repo, manager: manager, watch: watch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reloader) Run(ctx context.Context) error {
	return r.watch(ctx, func() { r.Reload(ctx) })
}

// Reload loads the stored board and replaces the in-memory one when they
// differ. Unlike startup, an unreadable store keeps the current board.
func (r *Reloader) Reload(ctx context.Context) bool {
	b, err := r.repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "ignoring unreadable external board change", "error", err)
		return false
	}
	if r.syncer != nil && r.syncer.Written(b) {
		return false
	}
	if !r.manager.replace(BoardReloaded, b) {
		return false
	}
	slog.InfoContext(ctx, "reloaded board from store", "columns", len(b), "tasks", b.TaskCount())
	return true
}
