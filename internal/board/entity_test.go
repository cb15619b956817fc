package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/pkg/cerr"
)

func TestSortedTasks(t *testing.T) {
	c := Column{ID: "1", Tasks: []Task{
		{ID: "1", Name: "beta"},
		{ID: "2", Name: "Alpha"},
		{ID: "3", Name: "gamma"},
		{ID: "4", Name: "alpha"},
	}}

	names := func(ts []Task) []string {
		out := make([]string, len(ts))
		for i, t := range ts {
			out[i] = t.ID
		}
		return out
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, names(c.SortedTasks(OrderManual)))
	assert.Equal(t, []string{"2", "4", "1", "3"}, names(c.SortedTasks(OrderAscending)))
	assert.Equal(t, []string{"3", "1", "2", "4"}, names(c.SortedTasks(OrderDescending)))
	assert.Equal(t, []string{"1", "2", "3", "4"}, taskIDs(c), "stored order is untouched")
}

func TestParseTaskOrder(t *testing.T) {
	for in, want := range map[string]TaskOrder{"": OrderManual, "manual": OrderManual, "ASC": OrderAscending, "desc": OrderDescending} {
		got, ok := ParseTaskOrder(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseTaskOrder("sideways")
	assert.False(t, ok)
}

func TestBoard_Validate(t *testing.T) {
	require.NoError(t, todoBoard().Validate())
	require.NoError(t, Board{}.Validate())

	bad := []Board{
		{{ID: ""}},
		{{ID: "1"}, {ID: "1"}},
		{{ID: "1", Tasks: []Task{{ID: ""}}}},
		{{ID: "1", Tasks: []Task{{ID: "a"}}}, {ID: "2", Tasks: []Task{{ID: "a"}}}},
	}
	for _, b := range bad {
		err := b.Validate()
		require.Error(t, err)
		assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	}
}

func TestBoard_Normalize(t *testing.T) {
	assert.NotNil(t, Board(nil).Normalize())
	b := Board{{ID: "1"}}.Normalize()
	assert.NotNil(t, b[0].Tasks)
	assert.True(t, b.Equal(Board{{ID: "1", Tasks: []Task{}}}))
}

func TestTask_EqualComparesDeadlineInstant(t *testing.T) {
	utc := date(2030, 5, 1)
	local := utc.In(time.FixedZone("JST", 9*60*60))
	assert.True(t, Task{ID: "a", Deadline: utc}.Equal(Task{ID: "a", Deadline: &local}))
	assert.False(t, Task{ID: "a", Deadline: utc}.Equal(Task{ID: "a"}))
}

func TestLoadOrEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, LoadOrEmpty(ctx, &memRepo{err: cerr.NewError(cerr.NotFound, "missing", nil)}))
	assert.Empty(t, LoadOrEmpty(ctx, &memRepo{err: errors.New("garbage")}))

	b := LoadOrEmpty(ctx, &memRepo{board: Board{{ID: "1"}}})
	require.Len(t, b, 1)
	assert.NotNil(t, b[0].Tasks)
}

func TestNewIDGenerator(t *testing.T) {
	for _, name := range []string{"", "ulid", "uuid"} {
		g, err := NewIDGenerator(name)
		require.NoError(t, err, name)
		assert.NotEqual(t, g.NewID(), g.NewID(), name)
	}
	_, err := NewIDGenerator("serial")
	assert.Error(t, err)
}
