package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type formKind int

const (
	formNone formKind = iota
	formAddTask
	formEditTask
	formAddColumn
	formRenameColumn
)

// formModel is a stack of labelled text inputs with one focused at a time.
type formModel struct {
	kind   formKind
	target string // task being edited
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	errs   []string
}

func newFormModel(kind formKind, title string, fields ...string) formModel {
	f := formModel{kind: kind, title: title, labels: fields}
	for _, label := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = label
		ti.CharLimit = 200
		f.inputs = append(f.inputs, ti)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func newTaskForm() formModel {
	return newFormModel(formAddTask, "New task", "Name", "Assignee", "Deadline", "Description")
}

func newEditTaskForm(t board.Task) formModel {
	f := newFormModel(formEditTask, "Edit task", "Name", "Assignee", "Deadline", "Description")
	f.target = t.ID
	f.inputs[0].SetValue(t.Name)
	f.inputs[1].SetValue(t.AssignedTo)
	f.inputs[2].SetValue(deadlineValue(t.Deadline))
	f.inputs[3].SetValue(t.Description)
	return f
}

func deadlineValue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Local().Format(time.RFC3339)
}

func newColumnForm(kind formKind, title, value string) formModel {
	f := newFormModel(kind, title, "Name")
	f.inputs[0].SetValue(value)
	return f
}

func (f formModel) active() bool {
	return f.kind != formNone
}

func (f formModel) value(i int) string {
	return f.inputs[i].Value()
}

func (f formModel) cycle(delta int) formModel {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

// setError replaces the shown errors with the violations carried by err.
func (f formModel) setError(err error) formModel {
	f.errs = nil
	for _, v := range cerr.Violations(err) {
		f.errs = append(f.errs, v.GetMessage())
	}
	if len(f.errs) == 0 {
		f.errs = []string{err.Error()}
	}
	return f
}

func (f formModel) Update(msg tea.Msg) formModel {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	_ = cmd // cursor blink is not needed
	return f
}

func (f formModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		b.WriteString(LabelStyle.Render(f.labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	for _, e := range f.errs {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(e))
	}
	b.WriteString("\n\n")
	b.WriteString(MetaStyle.Render("tab: next field  enter: save  esc: cancel"))
	return FormStyle.Render(b.String())
}
