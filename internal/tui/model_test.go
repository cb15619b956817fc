package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/form"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testModel(t *testing.T) (Model, *board.Manager) {
	t.Helper()
	m := board.NewManager(board.Board{
		{ID: "1", Name: "To Do", Tasks: []board.Task{{ID: "t1", Name: "first"}, {ID: "t2", Name: "second"}}},
		{ID: "2", Name: "Done", Tasks: []board.Task{}},
	})
	clock := func() time.Time { return testNow }
	return NewModel(m, form.NewValidator(clock), clock), m
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func ids(tasks []board.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func column(t *testing.T, m *board.Manager, id string) []string {
	t.Helper()
	c, ok := m.Column(id)
	require.True(t, ok)
	return ids(c.Tasks)
}

func TestModel_DragToOtherColumn(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, " ")
	assert.Equal(t, "t1", model.dragging)
	assert.Contains(t, model.View(), "⠿ first")

	model = press(t, model, "right", " ")
	assert.Empty(t, model.dragging)
	assert.Equal(t, []string{"t2"}, column(t, m, "1"))
	assert.Equal(t, []string{"t1"}, column(t, m, "2"))
	assert.Equal(t, 1, model.col, "cursor follows the moved task")
	assert.Equal(t, 0, model.row)
}

func TestModel_ReorderWithinColumn(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, " ", "down", "enter")
	assert.Equal(t, []string{"t2", "t1"}, column(t, m, "1"))
	assert.Equal(t, 1, model.row)
}

func TestModel_CancelDrag(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, " ", "right", "esc")
	assert.Empty(t, model.dragging)
	assert.Equal(t, []string{"t1", "t2"}, column(t, m, "1"))
	assert.Zero(t, m.Version())
}

func TestModel_MutationsBlockedWhileDragging(t *testing.T) {
	model, m := testModel(t)
	model = press(t, model, " ", "d", "n")
	assert.False(t, model.form.active())
	assert.Zero(t, m.Version())
}

func TestModel_AddTask(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, "right", "n")
	require.True(t, model.form.active())
	model = press(t, model, "Ship it", "tab", "ann", "tab", "2026-04-01", "tab", "notes", "enter")

	assert.False(t, model.form.active())
	tasks, _ := m.Column("2")
	require.Len(t, tasks.Tasks, 1)
	task := tasks.Tasks[0]
	assert.Equal(t, "Ship it", task.Name)
	assert.Equal(t, "ann", task.AssignedTo)
	assert.Equal(t, "notes", task.Description)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, 0, model.row)
	assert.Contains(t, model.View(), "@ann")
}

func TestModel_AddTaskValidation(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, "n", "enter")
	require.True(t, model.form.active())
	assert.Contains(t, model.form.errs, "Task name is required.")
	assert.Contains(t, model.form.errs, "Deadline is required.")

	model = press(t, model, "x", "tab", "ann", "tab", "2020-01-01", "enter")
	assert.Equal(t, []string{"Deadline must be in the future."}, model.form.errs)

	model = press(t, model, "esc")
	assert.False(t, model.form.active())
	assert.Zero(t, m.Version())
}

func TestModel_EditTask(t *testing.T) {
	past := testNow.Add(-48 * time.Hour)
	m := board.NewManager(board.Board{
		{ID: "1", Name: "To Do", Tasks: []board.Task{{ID: "t1", Name: "first", AssignedTo: "ann", Deadline: &past}}},
	})
	clock := func() time.Time { return testNow }
	model := NewModel(m, form.NewValidator(clock), clock)

	model = press(t, model, "e")
	require.True(t, model.form.active())
	assert.Equal(t, "first", model.form.value(0))
	assert.Equal(t, "ann", model.form.value(1))

	// An overdue task can be renamed without touching its deadline.
	model.form.inputs[0].SetValue("  renamed ")
	model = press(t, model, "enter")
	require.False(t, model.form.active(), model.form.errs)
	task, _, ok := m.FindTask("t1")
	require.True(t, ok)
	assert.Equal(t, "renamed", task.Name)
	assert.True(t, task.Deadline.Equal(past))

	model = press(t, model, "e")
	model.form.inputs[2].SetValue("2020-01-01")
	model = press(t, model, "enter")
	assert.Equal(t, []string{"Deadline must be in the future."}, model.form.errs)

	model.form.inputs[2].SetValue("")
	model = press(t, model, "enter")
	assert.Equal(t, []string{"Deadline is required."}, model.form.errs)

	model.form.inputs[2].SetValue("2026-05-01")
	model.form.inputs[1].SetValue("bob")
	model = press(t, model, "enter")
	require.False(t, model.form.active(), model.form.errs)
	task, _, _ = m.FindTask("t1")
	assert.Equal(t, "bob", task.AssignedTo)
	assert.True(t, task.Deadline.After(testNow))
	assert.Equal(t, uint64(2), m.Version())
}

func TestModel_Columns(t *testing.T) {
	model, m := testModel(t)

	model = press(t, model, "c", "  Review ", "enter")
	cols := m.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "Review", cols[2].Name)
	assert.Equal(t, 2, model.col)

	model = press(t, model, "r")
	require.True(t, model.form.active())
	model.form.inputs[0].SetValue("Shipped")
	model = press(t, model, "enter")
	c, _ := m.Column(cols[2].ID)
	assert.Equal(t, "Shipped", c.Name)

	model = press(t, model, "D")
	assert.Len(t, m.Columns(), 2)
	assert.Equal(t, 1, model.col)
}

func TestModel_DeleteTask(t *testing.T) {
	model, m := testModel(t)
	model = press(t, model, "down", "d")
	assert.Equal(t, []string{"t1"}, column(t, m, "1"))
	assert.Equal(t, 0, model.row)
}

func TestModel_SortToggle(t *testing.T) {
	model, m := testModel(t)
	model = press(t, model, "s", "s")
	assert.Equal(t, board.OrderDescending, model.orders["1"])
	assert.Equal(t, []string{"t2", "t1"}, ids(model.visibleTasks(0)))
	assert.Equal(t, []string{"t1", "t2"}, column(t, m, "1"), "stored order is untouched")

	// With the descending view, the task under the cursor is t2.
	model = press(t, model, " ")
	assert.Equal(t, "t2", model.dragging)
}

func TestModel_BoardChanged(t *testing.T) {
	model, m := testModel(t)
	model = press(t, model, "down")

	m.DeleteTask("1", "t2")
	b, version := m.Snapshot()
	next, _ := model.Update(BoardChangedMsg{Change: board.Change{Version: version, Board: b}})
	model = next.(Model)
	assert.Equal(t, 0, model.row, "cursor is clamped to the remaining tasks")
	assert.NotContains(t, model.View(), "second")

	stale := board.Change{Version: version - 1, Board: board.Board{}}
	next, _ = model.Update(BoardChangedMsg{Change: stale})
	model = next.(Model)
	assert.Len(t, model.columns, 2, "older versions are ignored")
}

func TestModel_FollowsBridge(t *testing.T) {
	model, m := testModel(t)
	bridge := NewBridge()
	defer bridge.Close()
	m.Subscribe(bridge.Observe)
	model.bridge = bridge

	wait := model.Init()
	require.NotNil(t, wait)
	m.AddColumn(board.Column{ID: "3", Name: "Review"})
	m.RenameColumn("3", "QA")

	msg, ok := wait().(BoardChangedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(2), msg.Change.Version, "only the newest change is delivered")

	next, cmd := model.Update(msg)
	model = next.(Model)
	assert.NotNil(t, cmd, "keeps listening")
	require.Len(t, model.columns, 3)
	assert.Equal(t, "QA", model.columns[2].Name)
}

func TestBridge_KeepsNewest(t *testing.T) {
	bridge := NewBridge()
	bridge.Observe(board.Change{Version: 3})
	bridge.Observe(board.Change{Version: 2})
	bridge.Observe(board.Change{Version: 4})

	msg := bridge.Wait()().(BoardChangedMsg)
	assert.Equal(t, uint64(4), msg.Change.Version)

	bridge.Close()
	assert.Nil(t, bridge.Wait()())
}

func TestProgram_MutationsDoNotBlockTheLoop(t *testing.T) {
	m := board.NewManager(board.Board{
		{ID: "1", Name: "To Do", Tasks: []board.Task{{ID: "t1", Name: "first"}}},
		{ID: "2", Name: "Done", Tasks: []board.Task{}},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, stop := newProgram(m, form.NewValidator(time.Now),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	defer stop()

	go func() {
		p.Send(key("D"))
		m.AddColumn(board.Column{ID: "3", Name: "External"})
		p.Send(key("q"))
	}()

	final, err := p.Run()
	require.NoError(t, err)
	_, ok := m.Column("1")
	assert.False(t, ok)
	assert.Len(t, m.Columns(), 2)
	assert.LessOrEqual(t, final.(Model).version, m.Version())
}

func TestModel_Quit(t *testing.T) {
	model, _ := testModel(t)
	_, cmd := model.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
