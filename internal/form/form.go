// Package form validates user input before it reaches the board manager.
package form

import (
	"strings"
	"time"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// TaskInput is the task form as submitted.
type TaskInput struct {
	Name        string     `json:"name"`
	AssignedTo  string     `json:"assignedTo"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
}

// TaskPatch is a submitted task edit. Nil fields are left untouched.
type TaskPatch struct {
	Name        *string    `json:"name,omitempty"`
	AssignedTo  *string    `json:"assignedTo,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ColumnInput is the column form as submitted.
type ColumnInput struct {
	Name string `json:"name"`
}

// Validator checks forms against a clock so deadline rules are testable.
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

type violations struct {
	err *cerr.Error
}

func (v *violations) add(rule, msg string) {
	if v.err == nil {
		v.err = cerr.NewError(cerr.InvalidArgument, "invalid input", nil)
	}
	v.err.AddDetailMessageWithCode(msg, rule)
}

func (v *violations) result() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

func (f *Validator) checkDeadline(vs *violations, deadline *time.Time) {
	if deadline == nil {
		vs.add("deadline.required", "Deadline is required.")
		return
	}
	if !deadline.After(f.now()) {
		vs.add("deadline.future", "Deadline must be in the future.")
	}
}

// Task validates a new task. Name and assignee are trimmed.
func (f *Validator) Task(in TaskInput) (TaskInput, error) {
	data := TaskInput{
		Name:        strings.TrimSpace(in.Name),
		AssignedTo:  strings.TrimSpace(in.AssignedTo),
		Description: in.Description,
		Deadline:    in.Deadline,
	}
	var vs violations
	if data.Name == "" {
		vs.add("name.required", "Task name is required.")
	}
	if data.AssignedTo == "" {
		vs.add("assigned_to.required", "Username is required.")
	}
	f.checkDeadline(&vs, data.Deadline)
	if err := vs.result(); err != nil {
		return TaskInput{}, err
	}
	return data, nil
}

// TaskPatch validates the fields present in an edit with the same rules as
// Task. Absent fields are not checked.
func (f *Validator) TaskPatch(p TaskPatch) (TaskPatch, error) {
	var vs violations
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			vs.add("name.required", "Task name is required.")
		}
		p.Name = &name
	}
	if p.AssignedTo != nil {
		assignee := strings.TrimSpace(*p.AssignedTo)
		if assignee == "" {
			vs.add("assigned_to.required", "Username is required.")
		}
		p.AssignedTo = &assignee
	}
	if p.Deadline != nil {
		f.checkDeadline(&vs, p.Deadline)
	}
	if err := vs.result(); err != nil {
		return TaskPatch{}, err
	}
	return p, nil
}

// Column returns the trimmed column name.
func (f *Validator) Column(in ColumnInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		var vs violations
		vs.add("name.required", "Column name is required.")
		return "", vs.result()
	}
	return name, nil
}

// ParseDeadline accepts an RFC 3339 timestamp or a bare date (2006-01-02).
// A bare date means the end of that day in loc. An empty string is no deadline.
func ParseDeadline(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid input", err).
			AddDetailMessageWithCode("Deadline must be a date (YYYY-MM-DD) or an RFC 3339 time.", "deadline.format")
	}
	end := d.Add(24*time.Hour - time.Second)
	return &end, nil
}
