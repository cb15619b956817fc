package board

import (
	"slices"
	"strings"
	"time"
)

// Task is a unit of work. It lives in exactly one Column.
type Task struct {
	ID          string     `json:"id" yaml:"id" toml:"id"`
	Name        string     `json:"name" yaml:"name" toml:"name"`
	AssignedTo  string     `json:"assignedTo" yaml:"assigned_to" toml:"assigned_to"`
	Description string     `json:"description" yaml:"description" toml:"description"`
	Deadline    *time.Time `json:"deadline" yaml:"deadline,omitempty" toml:"deadline,omitempty"`
}

// Column is a named, ordered list of tasks. The UI calls it a "board".
type Column struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Tasks []Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Board is the ordered sequence of columns and the unit of persistence.
type Board []Column

// TaskData carries the caller-supplied fields of a new task.
type TaskData struct {
	Name        string
	AssignedTo  string
	Description string
	Deadline    *time.Time
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Name        *string    `json:"name,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (p TaskPatch) apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
}

func (t Task) clone() Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}

// Equal reports whether both tasks hold the same data. Deadlines compare by instant.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Name != o.Name || t.AssignedTo != o.AssignedTo || t.Description != o.Description {
		return false
	}
	if t.Deadline == nil || o.Deadline == nil {
		return t.Deadline == nil && o.Deadline == nil
	}
	return t.Deadline.Equal(*o.Deadline)
}

func (c Column) clone() Column {
	tasks := make([]Task, len(c.Tasks))
	for i, t := range c.Tasks {
		tasks[i] = t.clone()
	}
	c.Tasks = tasks
	return c
}

func (c Column) indexOf(taskID string) int {
	return slices.IndexFunc(c.Tasks, func(t Task) bool { return t.ID == taskID })
}

// HasTask reports whether the column holds a task with the given id.
func (c Column) HasTask(taskID string) bool {
	return c.indexOf(taskID) >= 0
}

// Equal reports whether both columns hold the same data in the same order.
func (c Column) Equal(o Column) bool {
	return c.ID == o.ID && c.Name == o.Name && slices.EqualFunc(c.Tasks, o.Tasks, Task.Equal)
}

// TaskOrder selects how a column's tasks are presented.
type TaskOrder string

const (
	OrderManual     TaskOrder = ""
	OrderAscending  TaskOrder = "asc"
	OrderDescending TaskOrder = "desc"
)

// ParseTaskOrder accepts "", "manual", "asc" and "desc".
func ParseTaskOrder(s string) (TaskOrder, bool) {
	switch strings.ToLower(s) {
	case "", "manual":
		return OrderManual, true
	case "asc":
		return OrderAscending, true
	case "desc":
		return OrderDescending, true
	}
	return OrderManual, false
}

// SortedTasks returns a copy of the tasks ordered by name, case-insensitively.
// Stored order is not affected; equal names keep their stored order.
func (c Column) SortedTasks(order TaskOrder) []Task {
	tasks := c.clone().Tasks
	if order == OrderManual {
		return tasks
	}
	slices.SortStableFunc(tasks, func(a, b Task) int {
		n := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if order == OrderDescending {
			return -n
		}
		return n
	})
	return tasks
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, c := range b {
		out[i] = c.clone()
	}
	return out
}

// Equal reports whether both boards hold the same columns and tasks in the same order.
func (b Board) Equal(o Board) bool {
	return slices.EqualFunc(b, o, Column.Equal)
}

// Normalize replaces nil task slices with empty ones so that every codec
// produces the same in-memory shape.
func (b Board) Normalize() Board {
	for i := range b {
		if b[i].Tasks == nil {
			b[i].Tasks = []Task{}
		}
	}
	if b == nil {
		return Board{}
	}
	return b
}

func (b Board) columnIndex(columnID string) int {
	return slices.IndexFunc(b, func(c Column) bool { return c.ID == columnID })
}

func (b Board) columnIndexOfTask(taskID string) int {
	return slices.IndexFunc(b, func(c Column) bool { return c.HasTask(taskID) })
}

// FindTask returns the task with the given id and the id of its column.
func (b Board) FindTask(taskID string) (Task, string, bool) {
	ci := b.columnIndexOfTask(taskID)
	if ci < 0 {
		return Task{}, "", false
	}
	return b[ci].Tasks[b[ci].indexOf(taskID)].clone(), b[ci].ID, true
}

// TaskCount returns the number of tasks on the board.
func (b Board) TaskCount() int {
	n := 0
	for _, c := range b {
		n += len(c.Tasks)
	}
	return n
}
