package board

import (
	"slices"
	"sync"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ColumnAdded   ChangeKind = "column.added"
	ColumnRenamed ChangeKind = "column.renamed"
	ColumnDeleted ChangeKind = "column.deleted"
	TaskAdded     ChangeKind = "task.added"
	TaskEdited    ChangeKind = "task.edited"
	TaskDeleted   ChangeKind = "task.deleted"
	TaskMoved     ChangeKind = "task.moved"
	BoardReplaced ChangeKind = "board.replaced"
	BoardReloaded ChangeKind = "board.reloaded"
)

// Change describes one committed mutation. Version increases by one per commit,
// and Board is the full state right after it.
type Change struct {
	Version    uint64
	Kind       ChangeKind
	ResourceID string
	Board      Board
}

// Observer is notified after every committed mutation, outside the state lock
// and in commit order. Each observer receives its own copy of the board.
// Observers must not block and must not mutate the manager.
type Observer func(Change)

// Manager owns the board state. Every mutator reports whether it changed
// anything; unknown ids are a silent no-op that returns false and notifies no
// observer.
type Manager struct {
	mu      sync.RWMutex
	columns Board
	version uint64
	ids     IDGenerator

	notifyMu  sync.Mutex // held from commit until every observer has returned
	obsMu     sync.RWMutex
	observers []observerEntry
	nextObsID int
}

type observerEntry struct {
	id int
	fn Observer
}

type Option func(*Manager)

// WithIDGenerator overrides the default ULID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) {
		m.ids = g
	}
}

// NewManager creates a manager holding a copy of initial.
func NewManager(initial Board, opts ...Option) *Manager {
	m := &Manager{
		columns: initial.Clone().Normalize(),
		ids:     ULIDGenerator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe registers an observer and returns a function that removes it.
func (m *Manager) Subscribe(fn Observer) (unsubscribe func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := m.nextObsID
	m.nextObsID++
	m.observers = append(m.observers, observerEntry{id: id, fn: fn})
	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		m.observers = slices.DeleteFunc(m.observers, func(e observerEntry) bool { return e.id == id })
	}
}

func (m *Manager) notify(change Change) {
	m.obsMu.RLock()
	observers := slices.Clone(m.observers)
	m.obsMu.RUnlock()
	for _, o := range observers {
		c := change
		c.Board = change.Board.Clone()
		o.fn(c)
	}
}

// mutate applies fn to a private copy of the board and, when fn reports a
// change, swaps it in as one atomic commit.
func (m *Manager) mutate(kind ChangeKind, resourceID string, fn func(b Board) (Board, bool)) bool {
	m.mu.Lock()
	next, ok := fn(m.columns.Clone())
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.columns = next
	m.version++
	change := Change{
		Version:    m.version,
		Kind:       kind,
		ResourceID: resourceID,
		Board:      next.Clone(),
	}
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.notify(change)
	return true
}

// Columns returns a copy of the current board.
func (m *Manager) Columns() Board {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.columns.Clone()
}

// Snapshot returns a copy of the current board together with its version.
func (m *Manager) Snapshot() (Board, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.columns.Clone(), m.version
}

// Version returns the number of commits so far.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Column returns a copy of the column with the given id.
func (m *Manager) Column(columnID string) (Column, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.columns.columnIndex(columnID)
	if i < 0 {
		return Column{}, false
	}
	return m.columns[i].clone(), true
}

// FindTask returns a copy of the task and the id of the column holding it.
func (m *Manager) FindTask(taskID string) (Task, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.columns.FindTask(taskID)
}

// AddColumn appends a caller-built column. Names are not deduplicated. A column
// whose id, or any of whose task ids, already exists on the board is rejected.
func (m *Manager) AddColumn(column Column) bool {
	column = column.clone()
	return m.mutate(ColumnAdded, column.ID, func(b Board) (Board, bool) {
		if b.columnIndex(column.ID) >= 0 {
			return b, false
		}
		for _, t := range column.Tasks {
			if b.columnIndexOfTask(t.ID) >= 0 {
				return b, false
			}
		}
		return append(b, column), true
	})
}

// NewColumn appends an empty column with a generated id. It reports false
// when the generator returned an id that is already taken.
func (m *Manager) NewColumn(name string) (Column, bool) {
	column := Column{ID: m.ids.NewID(), Name: name, Tasks: []Task{}}
	if !m.AddColumn(column) {
		return Column{}, false
	}
	return column, true
}

// RenameColumn replaces the column name and keeps its tasks.
func (m *Manager) RenameColumn(columnID, newName string) bool {
	return m.mutate(ColumnRenamed, columnID, func(b Board) (Board, bool) {
		i := b.columnIndex(columnID)
		if i < 0 {
			return b, false
		}
		b[i].Name = newName
		return b, true
	})
}

// DeleteColumn removes the column together with all of its tasks.
func (m *Manager) DeleteColumn(columnID string) bool {
	return m.mutate(ColumnDeleted, columnID, func(b Board) (Board, bool) {
		i := b.columnIndex(columnID)
		if i < 0 {
			return b, false
		}
		return slices.Delete(b, i, i+1), true
	})
}

// AddTask appends a task with a freshly generated id to the end of the column.
func (m *Manager) AddTask(columnID string, data TaskData) (Task, bool) {
	task := Task{
		ID:          m.ids.NewID(),
		Name:        data.Name,
		AssignedTo:  data.AssignedTo,
		Description: data.Description,
		Deadline:    data.Deadline,
	}.clone()
	ok := m.mutate(TaskAdded, task.ID, func(b Board) (Board, bool) {
		i := b.columnIndex(columnID)
		if i < 0 {
			return b, false
		}
		b[i].Tasks = append(b[i].Tasks, task)
		return b, true
	})
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// EditTask merges patch into the task in place; the id never changes. It
// returns true when the task was found, and commits only if a field changed.
func (m *Manager) EditTask(columnID, taskID string, patch TaskPatch) bool {
	found := false
	m.mutate(TaskEdited, taskID, func(b Board) (Board, bool) {
		ci := b.columnIndex(columnID)
		if ci < 0 {
			return b, false
		}
		ti := b[ci].indexOf(taskID)
		if ti < 0 {
			return b, false
		}
		found = true
		before := b[ci].Tasks[ti].clone()
		patch.apply(&b[ci].Tasks[ti])
		return b, !before.Equal(b[ci].Tasks[ti])
	})
	return found
}

// DeleteTask removes the task from the column.
func (m *Manager) DeleteTask(columnID, taskID string) bool {
	return m.mutate(TaskDeleted, taskID, func(b Board) (Board, bool) {
		ci := b.columnIndex(columnID)
		if ci < 0 {
			return b, false
		}
		ti := b[ci].indexOf(taskID)
		if ti < 0 {
			return b, false
		}
		b[ci].Tasks = slices.Delete(b[ci].Tasks, ti, ti+1)
		return b, true
	})
}

// MoveTask relocates activeID relative to overID, see moveTask.
func (m *Manager) MoveTask(activeID, overID string) bool {
	return m.mutate(TaskMoved, activeID, func(b Board) (Board, bool) {
		return moveTask(b, activeID, overID)
	})
}

// Replace swaps in a whole new board. It is a no-op when next equals the
// current board.
func (m *Manager) Replace(next Board) bool {
	return m.replace(BoardReplaced, next)
}

func (m *Manager) replace(kind ChangeKind, next Board) bool {
	next = next.Clone().Normalize()
	return m.mutate(kind, "", func(b Board) (Board, bool) {
		if b.Equal(next) {
			return b, false
		}
		return next, true
	})
}
