package board

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestManager(b Board) *Manager {
	return NewManager(b, WithIDGenerator(&seqIDs{}))
}

// todoBoard is [{1 "To Do" [t1 t2]} {2 "Done" []}].
func todoBoard() Board {
	return Board{
		{ID: "1", Name: "To Do", Tasks: []Task{{ID: "t1", Name: "first"}, {ID: "t2", Name: "second"}}},
		{ID: "2", Name: "Done", Tasks: []Task{}},
	}
}

func taskIDs(c Column) []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	return ids
}

func columnTaskIDs(t *testing.T, m *Manager, columnID string) []string {
	t.Helper()
	c, ok := m.Column(columnID)
	require.True(t, ok, "column %s", columnID)
	return taskIDs(c)
}

type memRepo struct {
	mu    sync.Mutex
	board Board
	saves int
	err   error
}

func (r *memRepo) Load(context.Context) (Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.board.Clone(), nil
}

func (r *memRepo) Save(_ context.Context, b Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.board = b.Clone()
	return nil
}

func (r *memRepo) snapshot() (Board, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Clone(), r.saves
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
