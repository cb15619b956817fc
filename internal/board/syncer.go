package board

import (
	"context"
	"log/slog"
	"sync"
)

// Syncer persists the board in reaction to manager changes. Mutators never
// wait for it: Observe only records the newest snapshot and wakes the Run loop.
// Snapshots that arrive out of order are discarded by version. A failed save is
// logged and dropped; memory stays authoritative and the next change writes the
// whole board again.
type Syncer struct {
	repo Repository
	wake chan struct{}

	flushMu sync.Mutex // serializes saves

	mu       sync.Mutex
	pending  *Change
	inFlight Board   // board being saved right now
	written  []Board // newest last, capped at recentWrites
	saved    uint64
	failed   uint64
}

// recentWrites is how many successful saves Written remembers. A watch event
// can be delivered after the next save has already finished.
const recentWrites = 2

func NewSyncer(repo Repository) *Syncer {
	return &Syncer{
		repo: repo,
		wake: make(chan struct{}, 1),
	}
}

// Observe is a manager Observer.
func (s *Syncer) Observe(c Change) {
	s.mu.Lock()
	if c.Version <= s.saved || (s.pending != nil && c.Version <= s.pending.Version) {
		s.mu.Unlock()
		return
	}
	s.pending = &c
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run saves pending snapshots until ctx is cancelled, then flushes once more.
func (s *Syncer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.Flush(context.WithoutCancel(ctx))
			return nil
		case <-s.wake:
			s.Flush(ctx)
		}
	}
}

// Flush saves the newest pending snapshot, if any, before returning.
func (s *Syncer) Flush(ctx context.Context) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	p := s.pending
	s.pending = nil
	if p != nil {
		s.inFlight = p.Board
	}
	s.mu.Unlock()
	if p == nil {
		return
	}

	err := s.repo.Save(ctx, p.Board)

	s.mu.Lock()
	s.inFlight = nil
	if p.Version > s.saved {
		s.saved = p.Version
	}
	if err != nil {
		s.failed++
	} else {
		s.written = append(s.written, p.Board)
		if len(s.written) > recentWrites {
			s.written = s.written[len(s.written)-recentWrites:]
		}
	}
	s.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "failed to save board", "version", p.Version, "change", p.Kind, "error", err)
		return
	}
	slog.DebugContext(ctx, "saved board", "version", p.Version, "change", p.Kind)
}

// Written reports whether b is a board this syncer recently saved or is
// saving now. The Reloader uses it to tell its own writes from external edits.
func (s *Syncer) Written(b Board) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight != nil && s.inFlight.Equal(b) {
		return true
	}
	for _, w := range s.written {
		if w.Equal(b) {
			return true
		}
	}
	return false
}

// Stats reports the last version handed to the store and how many saves failed.
func (s *Syncer) Stats() (saved, failed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, s.failed
}
