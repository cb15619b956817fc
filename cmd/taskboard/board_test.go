package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/config"
)

func testEnv(t *testing.T) *config.Env {
	t.Helper()
	return &config.Env{
		BaseEnv: config.BaseEnv{IDGenerator: "ulid"},
		StorageEnv: config.StorageEnv{
			Type:    "local",
			BaseDir: t.TempDir(),
			Key:     "columns",
			Format:  "json",
		},
	}
}

func TestBoardCLI(t *testing.T) {
	ctx := context.Background()
	env := testEnv(t)

	b, err := openBoard(ctx, env)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, b.addColumn(ctx, &out, "To Do"))
	todo := strings.TrimSpace(out.String())
	out.Reset()
	require.NoError(t, b.addColumn(ctx, &out, "Done"))
	done := strings.TrimSpace(out.String())

	out.Reset()
	require.NoError(t, b.addTask(ctx, &out, todo, "Write docs", "ann", "", "2999-01-01"))
	taskID := strings.TrimSpace(out.String())

	assert.Error(t, b.addTask(ctx, &out, todo, "", "ann", "", "2999-01-01"))
	assert.Error(t, b.addTask(ctx, &out, "missing", "x", "ann", "", "2999-01-01"))

	require.NoError(t, b.moveTask(ctx, taskID, done))

	// A fresh process sees the saved board.
	reopened, err := openBoard(ctx, env)
	require.NoError(t, err)
	c, ok := reopened.manager.Column(done)
	require.True(t, ok)
	require.Len(t, c.Tasks, 1)
	assert.Equal(t, "Write docs", c.Tasks[0].Name)

	name := "Write more docs"
	require.NoError(t, reopened.editTask(ctx, done, taskID, editFlags{name: &name}))
	assert.Error(t, reopened.editTask(ctx, todo, taskID, editFlags{name: &name}))

	out.Reset()
	require.NoError(t, reopened.listTasks(&out, done, "asc"))
	assert.Contains(t, out.String(), "Write more docs")

	require.NoError(t, reopened.deleteTask(ctx, done, taskID))
	require.NoError(t, reopened.renameColumn(ctx, todo, "Backlog"))
	assert.Error(t, reopened.renameColumn(ctx, todo, "  "))
	require.NoError(t, reopened.deleteColumn(ctx, done))
	assert.Error(t, reopened.deleteColumn(ctx, done))

	out.Reset()
	require.NoError(t, reopened.listColumns(&out))
	assert.Contains(t, out.String(), "Backlog")
	assert.NotContains(t, out.String(), "Done")
}

func TestBoardCLI_ExportImport(t *testing.T) {
	ctx := context.Background()
	env := testEnv(t)
	b, err := openBoard(ctx, env)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, b.addColumn(ctx, &out, "To Do"))
	require.NoError(t, b.addTask(ctx, &out, strings.Fields(out.String())[0], "Ship", "bob", "notes", "2999-06-01"))

	file := filepath.Join(t.TempDir(), "board.toml")
	require.NoError(t, b.export("toml", file))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[columns]]")

	other := testEnv(t)
	target, err := openBoard(ctx, other)
	require.NoError(t, err)
	require.NoError(t, target.importFile(ctx, file, ""))
	assert.True(t, target.manager.Columns().Equal(b.manager.Columns()))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"a board"}`), 0o644))
	assert.Error(t, target.importFile(ctx, bad, ""))
}

func TestBoardCLI_BoardsAndReset(t *testing.T) {
	ctx := context.Background()
	env := testEnv(t)
	b, err := openBoard(ctx, env)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, b.reset(ctx, &out))
	assert.Equal(t, "no stored board\n", out.String())

	out.Reset()
	require.NoError(t, b.addColumn(ctx, &out, "To Do"))

	out.Reset()
	require.NoError(t, b.listBoards(ctx, &out))
	assert.Equal(t, "* columns\n", out.String())

	out.Reset()
	require.NoError(t, b.reset(ctx, &out))
	assert.Equal(t, "deleted columns\n", out.String())

	out.Reset()
	require.NoError(t, b.listBoards(ctx, &out))
	assert.Empty(t, out.String())

	fresh, err := openBoard(ctx, env)
	require.NoError(t, err)
	assert.Empty(t, fresh.manager.Columns())
}
