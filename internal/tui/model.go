package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/form"
)

// Model is the terminal board. Tasks are dragged with the keyboard: space
// picks up the selected task, the cursor chooses the target and space or
// enter drops it. Row -1 is the column header, which drops onto the column.
type Model struct {
	manager *board.Manager
	dragger *board.Dragger
	forms   *form.Validator
	now     func() time.Time
	bridge  *Bridge

	columns  board.Board
	version  uint64
	orders   map[string]board.TaskOrder
	col, row int
	dragging string
	form     formModel
	status   string
	width    int
}

func NewModel(manager *board.Manager, forms *form.Validator, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		manager: manager,
		dragger: board.NewDragger(manager),
		forms:   forms,
		now:     now,
		orders:  make(map[string]board.TaskOrder),
	}
	m.refresh()
	return m
}

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, manager *board.Manager, forms *form.Validator) error {
	p, stop := newProgram(manager, forms, tea.WithAltScreen(), tea.WithContext(ctx))
	defer stop()
	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}

// newProgram builds a program whose model follows manager changes made
// elsewhere. stop detaches it from the manager.
func newProgram(manager *board.Manager, forms *form.Validator, opts ...tea.ProgramOption) (*tea.Program, func()) {
	bridge := NewBridge()
	unsubscribe := manager.Subscribe(bridge.Observe)
	m := NewModel(manager, forms, nil)
	m.bridge = bridge
	return tea.NewProgram(m, opts...), func() {
		unsubscribe()
		bridge.Close()
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.bridge == nil {
		return nil
	}
	return m.bridge.Wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case BoardChangedMsg:
		// Changes made by this model are already shown.
		if msg.Change.Version > m.version {
			m.columns, m.version = msg.Change.Board, msg.Change.Version
			m.clamp()
		}
		return m, m.waitForChange()
	case tea.KeyMsg:
		if m.form.active() {
			return m.handleFormKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) visibleTasks(ci int) []board.Task {
	if ci < 0 || ci >= len(m.columns) {
		return nil
	}
	c := m.columns[ci]
	return c.SortedTasks(m.orders[c.ID])
}

func (m Model) selectedTask() (board.Task, bool) {
	tasks := m.visibleTasks(m.col)
	if m.row < 0 || m.row >= len(tasks) {
		return board.Task{}, false
	}
	return tasks[m.row], true
}

func (m Model) selectedColumn() (board.Column, bool) {
	if m.col < 0 || m.col >= len(m.columns) {
		return board.Column{}, false
	}
	return m.columns[m.col], true
}

func (m *Model) clamp() {
	if len(m.columns) == 0 {
		m.col, m.row = 0, -1
		return
	}
	m.col = max(0, min(m.col, len(m.columns)-1))
	n := len(m.visibleTasks(m.col))
	m.row = max(-1, min(m.row, n-1))
}

func (m *Model) refresh() {
	m.columns, m.version = m.manager.Snapshot()
	m.clamp()
}

// selectTask moves the cursor onto taskID if it is still on the board.
func (m *Model) selectTask(taskID string) {
	for ci := range m.columns {
		for ri, t := range m.visibleTasks(ci) {
			if t.ID == taskID {
				m.col, m.row = ci, ri
				return
			}
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.col--
		m.clamp()
	case "right", "l":
		m.col++
		m.clamp()
	case "up", "k":
		m.row--
		m.clamp()
	case "down", "j":
		m.row++
		m.clamp()
	case " ", "enter":
		if m.dragging != "" {
			m.drop()
		} else if msg.String() == " " {
			m.pickUp()
		}
	case "esc":
		if m.dragging != "" {
			m.dragger.Cancel()
			m.dragging = ""
			m.status = "drag cancelled"
		}
	}
	if m.dragging != "" {
		return m, nil
	}

	switch msg.String() {
	case "n":
		if _, ok := m.selectedColumn(); ok {
			m.form = newTaskForm()
		}
	case "e":
		if t, ok := m.selectedTask(); ok {
			m.form = newEditTaskForm(t)
		}
	case "c":
		m.form = newColumnForm(formAddColumn, "New column", "")
	case "r":
		if c, ok := m.selectedColumn(); ok {
			m.form = newColumnForm(formRenameColumn, "Rename column", c.Name)
		}
	case "d":
		c, _ := m.selectedColumn()
		if t, ok := m.selectedTask(); ok && m.manager.DeleteTask(c.ID, t.ID) {
			m.status = fmt.Sprintf("deleted %q", t.Name)
			m.refresh()
		}
	case "D":
		if c, ok := m.selectedColumn(); ok && m.manager.DeleteColumn(c.ID) {
			m.status = fmt.Sprintf("deleted column %q", c.Name)
			m.refresh()
		}
	case "s":
		if c, ok := m.selectedColumn(); ok {
			m.orders[c.ID] = nextOrder(m.orders[c.ID])
			m.clamp()
		}
	}
	return m, nil
}

func nextOrder(o board.TaskOrder) board.TaskOrder {
	switch o {
	case board.OrderManual:
		return board.OrderAscending
	case board.OrderAscending:
		return board.OrderDescending
	}
	return board.OrderManual
}

func (m *Model) pickUp() {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	if _, ok := m.dragger.Start(t.ID); ok {
		m.dragging = t.ID
		m.status = fmt.Sprintf("dragging %q", t.Name)
	}
}

func (m *Model) drop() {
	active := m.dragging
	m.dragging = ""
	var overID string
	if t, ok := m.selectedTask(); ok {
		overID = t.ID
	} else if c, ok := m.selectedColumn(); ok {
		overID = c.ID
	}
	if m.dragger.End(active, overID) {
		m.status = "moved"
	} else {
		m.status = "nothing moved"
	}
	m.refresh()
	m.selectTask(active)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.form = formModel{}
	case "tab", "down":
		m.form = m.form.cycle(1)
	case "shift+tab", "up":
		m.form = m.form.cycle(-1)
	case "enter":
		m.submitForm()
	default:
		m.form = m.form.Update(msg)
	}
	return m, nil
}

func (m *Model) submitForm() {
	c, hasColumn := m.selectedColumn()
	switch m.form.kind {
	case formAddTask:
		deadline, err := form.ParseDeadline(m.form.value(2), time.Local)
		if err != nil {
			m.form = m.form.setError(err)
			return
		}
		data, err := m.forms.Task(form.TaskInput{
			Name:        m.form.value(0),
			AssignedTo:  m.form.value(1),
			Deadline:    deadline,
			Description: m.form.value(3),
		})
		if err != nil {
			m.form = m.form.setError(err)
			return
		}
		m.form = formModel{}
		task, ok := m.manager.AddTask(c.ID, board.TaskData(data))
		if !hasColumn || !ok {
			m.status = "column no longer exists"
			return
		}
		m.refresh()
		m.selectTask(task.ID)
		m.status = fmt.Sprintf("added %q", task.Name)
	case formEditTask:
		m.submitEdit()
	case formAddColumn, formRenameColumn:
		name, err := m.forms.Column(form.ColumnInput{Name: m.form.value(0)})
		if err != nil {
			m.form = m.form.setError(err)
			return
		}
		kind := m.form.kind
		m.form = formModel{}
		if kind == formAddColumn {
			if _, ok := m.manager.NewColumn(name); !ok {
				m.status = "could not add column"
				return
			}
			m.refresh()
			m.col, m.row = len(m.columns)-1, -1
			m.status = fmt.Sprintf("added column %q", name)
			return
		}
		if !hasColumn || !m.manager.RenameColumn(c.ID, name) {
			m.status = "column no longer exists"
			return
		}
		m.refresh()
		m.status = fmt.Sprintf("renamed column to %q", name)
	}
}

// submitEdit sends only the fields that differ from the task, so an
// untouched past deadline does not block renaming an overdue task.
func (m *Model) submitEdit() {
	t, columnID, ok := m.manager.FindTask(m.form.target)
	if !ok {
		m.form = formModel{}
		m.status = "task no longer exists"
		return
	}
	name, assignee, deadlineText, description := m.form.value(0), m.form.value(1), m.form.value(2), m.form.value(3)

	var patch form.TaskPatch
	if name != t.Name {
		patch.Name = &name
	}
	if assignee != t.AssignedTo {
		patch.AssignedTo = &assignee
	}
	if description != t.Description {
		patch.Description = &description
	}
	if deadlineText != deadlineValue(t.Deadline) {
		deadline, err := form.ParseDeadline(deadlineText, time.Local)
		if err == nil && deadline == nil {
			// A cleared deadline fails the same way it does on a new task.
			_, err = m.forms.Task(form.TaskInput{Name: name, AssignedTo: assignee, Description: description})
		}
		if err != nil {
			m.form = m.form.setError(err)
			return
		}
		patch.Deadline = deadline
	}
	patch, err := m.forms.TaskPatch(patch)
	if err != nil {
		m.form = m.form.setError(err)
		return
	}
	m.form = formModel{}
	if !m.manager.EditTask(columnID, t.ID, board.TaskPatch(patch)) {
		m.status = "task no longer exists"
		return
	}
	m.refresh()
	m.selectTask(t.ID)
	m.status = "task updated"
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("taskboard"))
	b.WriteString("\n\n")

	if len(m.columns) == 0 {
		b.WriteString(MetaStyle.Render("No columns yet. Press c to add one."))
	} else {
		views := make([]string, len(m.columns))
		for ci := range m.columns {
			views[ci] = m.columnView(ci)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...))
	}
	b.WriteString("\n")

	if m.form.active() {
		b.WriteString(m.form.View())
		b.WriteString("\n")
	}

	help := "←/→ column  ↑/↓ task  space drag  n task  e edit  c column  r rename  d/D delete  s sort  q quit"
	if m.dragging != "" {
		help = "move the cursor to a target  space/enter drop  esc cancel"
	}
	if m.status != "" {
		help = m.status + "  |  " + help
	}
	b.WriteString(StatusBarStyle.Render(help))
	return b.String()
}

func (m Model) columnView(ci int) string {
	c := m.columns[ci]
	focused := ci == m.col

	title := fmt.Sprintf("%s (%d)", c.Name, len(c.Tasks))
	switch m.orders[c.ID] {
	case board.OrderAscending:
		title += " ↑"
	case board.OrderDescending:
		title += " ↓"
	}
	if focused && m.row == -1 {
		title = SelectedTaskStyle.Render(title)
	} else {
		title = TitleStyle.Render(title)
	}

	lines := []string{title, ""}
	for ri, t := range m.visibleTasks(ci) {
		name := t.Name
		style := TaskStyle
		switch {
		case t.ID == m.dragging:
			name = "⠿ " + name
			style = DraggedTaskStyle
		case focused && ri == m.row:
			style = SelectedTaskStyle
		}
		lines = append(lines, style.Render(name))
		if meta := m.taskMeta(t); meta != "" {
			lines = append(lines, meta)
		}
	}

	style := ColumnStyle
	if focused {
		style = FocusedColumnStyle
		if m.dragging != "" {
			style = DropTargetColumnStyle
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) taskMeta(t board.Task) string {
	var parts []string
	if t.AssignedTo != "" {
		parts = append(parts, "@"+t.AssignedTo)
	}
	if t.Deadline != nil {
		due := "due " + t.Deadline.Local().Format(time.DateOnly)
		if t.Deadline.Before(m.now()) {
			return MetaStyle.Render(strings.Join(parts, " ")+" ") + OverdueStyle.Render(due)
		}
		parts = append(parts, due)
	}
	if len(parts) == 0 {
		return ""
	}
	return MetaStyle.Render(strings.Join(parts, " "))
}
