package board

import "sync"

// Dragger tracks one UI session's drag-and-drop gesture and turns its end into
// a MoveTask call.
type Dragger struct {
	manager *Manager

	mu     sync.Mutex
	active string
}

func NewDragger(manager *Manager) *Dragger {
	return &Dragger{manager: manager}
}

// Start marks activeID as being dragged and returns the task for the drag
// overlay. Unknown ids start nothing.
func (d *Dragger) Start(activeID string) (Task, bool) {
	task, _, ok := d.manager.FindTask(activeID)
	d.mu.Lock()
	defer d.mu.Unlock()
	if !ok {
		d.active = ""
		return Task{}, false
	}
	d.active = activeID
	return task, true
}

// Active returns the current state of the task being dragged, if any.
func (d *Dragger) Active() (Task, bool) {
	d.mu.Lock()
	id := d.active
	d.mu.Unlock()
	if id == "" {
		return Task{}, false
	}
	task, _, ok := d.manager.FindTask(id)
	return task, ok
}

// Cancel abandons the gesture without moving anything.
func (d *Dragger) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = ""
}

// End finishes the gesture. overID is empty when the drop landed outside any
// target.
func (d *Dragger) End(activeID, overID string) bool {
	d.Cancel()
	return d.manager.MoveTask(activeID, overID)
}

// EndAt finishes the gesture by resolving the drop target from geometry.
func (d *Dragger) EndAt(activeID string, activeRect Rect, targets []DropTarget) bool {
	overID, _ := ClosestCorners(activeRect, targets)
	return d.End(activeID, overID)
}
