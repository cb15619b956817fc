package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/board"
)

// BoardChangedMsg carries a committed change into the message loop.
type BoardChangedMsg struct {
	Change board.Change
}

// Bridge hands board changes to a running program. Observe never blocks, so
// it is safe to call while the program is inside Update; only the newest
// undelivered change is kept.
type Bridge struct {
	changes chan board.Change
	done    chan struct{}
	once    sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		changes: make(chan board.Change, 1),
		done:    make(chan struct{}),
	}
}

// Observe is a board.Observer.
func (b *Bridge) Observe(c board.Change) {
	for {
		select {
		case b.changes <- c:
			return
		default:
		}
		select {
		case old := <-b.changes:
			if old.Version > c.Version {
				c = old
			}
		default:
		}
	}
}

// Wait returns a command that delivers the next change as a BoardChangedMsg.
// It returns nil once the bridge is closed.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case c := <-b.changes:
			return BoardChangedMsg{Change: c}
		case <-b.done:
			return nil
		}
	}
}

// Close releases a pending Wait.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
