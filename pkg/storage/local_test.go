package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(ctx, "columns.json")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := s.Exists(ctx, "columns.json")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Write(ctx, "columns.json", []byte(`[]`)))
	data, err := s.Read(ctx, "columns.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	exists, err = s.Exists(ctx, "columns.json")
	require.NoError(t, err)
	assert.True(t, exists)

	entries, err := os.ReadDir(s.root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be renamed away")
	assert.Equal(t, "columns.json", entries[0].Name())
	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, s.Delete(ctx, "columns.json"))
	assert.ErrorIs(t, s.Delete(ctx, "columns.json"), ErrNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "boards/a.json", []byte(`[]`)))
	require.NoError(t, s.Write(ctx, "boards/b.json", []byte(`[]`)))
	require.NoError(t, s.Write(ctx, "boards/nested/c.json", []byte(`[]`)))

	paths, err := s.List(ctx, "boards")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"boards/a.json", "boards/b.json"}, paths)

	require.NoError(t, os.WriteFile(filepath.Join(s.root, "boards", ".a.json.123.tmp"), nil, 0o644))
	paths, err = s.List(ctx, "boards")
	require.NoError(t, err)
	assert.Len(t, paths, 2, "unfinished writes are skipped")

	paths, err = s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalStorage_PathStaysUnderBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	got := s.resolve("../../etc/passwd")
	rel, err := filepath.Rel(s.root, got)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("etc", "passwd"), rel)
}
