package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncer_FlushSavesNewestSnapshot(t *testing.T) {
	repo := &memRepo{}
	m := newTestManager(nil)
	s := NewSyncer(repo)
	m.Subscribe(s.Observe)

	m.AddColumn(Column{ID: "1", Name: "To Do"})
	m.AddTask("1", TaskData{Name: "X"})
	m.RenameColumn("1", "Backlog")
	s.Flush(context.Background())

	stored, saves := repo.snapshot()
	assert.Equal(t, 1, saves, "intermediate snapshots are coalesced")
	assert.True(t, stored.Equal(m.Columns()))

	saved, failed := s.Stats()
	assert.Equal(t, uint64(3), saved)
	assert.Zero(t, failed)

	s.Flush(context.Background())
	_, saves = repo.snapshot()
	assert.Equal(t, 1, saves, "nothing pending")
}

func TestSyncer_DropsStaleSnapshots(t *testing.T) {
	repo := &memRepo{}
	s := NewSyncer(repo)

	s.Observe(Change{Version: 2, Board: Board{{ID: "new"}}})
	s.Observe(Change{Version: 1, Board: Board{{ID: "old"}}})
	s.Flush(context.Background())

	stored, _ := repo.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "new", stored[0].ID)

	s.Observe(Change{Version: 2, Board: Board{{ID: "again"}}})
	s.Flush(context.Background())
	_, saves := repo.snapshot()
	assert.Equal(t, 1, saves)
}

func TestSyncer_SaveFailureIsNotFatal(t *testing.T) {
	repo := &memRepo{err: errors.New("quota exceeded")}
	m := newTestManager(todoBoard())
	s := NewSyncer(repo)
	m.Subscribe(s.Observe)

	require.True(t, m.DeleteTask("1", "t1"))
	s.Flush(context.Background())

	_, failed := s.Stats()
	assert.Equal(t, uint64(1), failed)
	assert.Equal(t, []string{"t2"}, columnTaskIDs(t, m, "1"), "memory stays authoritative")

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()

	require.True(t, m.DeleteTask("1", "t2"))
	s.Flush(context.Background())
	stored, _ := repo.snapshot()
	assert.True(t, stored.Equal(m.Columns()))
}

func TestSyncer_Run(t *testing.T) {
	repo := &memRepo{}
	m := newTestManager(nil)
	s := NewSyncer(repo)
	m.Subscribe(s.Observe)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	m.AddColumn(Column{ID: "1", Name: "To Do"})
	assert.Eventually(t, func() bool {
		stored, _ := repo.snapshot()
		return len(stored) == 1
	}, time.Second, 5*time.Millisecond)

	m.RenameColumn("1", "Done")
	cancel()
	require.NoError(t, <-done)

	stored, _ := repo.snapshot()
	require.Len(t, stored, 1)
	assert.Equal(t, "Done", stored[0].Name, "pending change is flushed on shutdown")
}
