package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Quota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(8)

	require.NoError(t, s.Write(ctx, "columns", []byte("12345678")))

	err := s.Write(ctx, "columns", []byte("123456789"))
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	data, err := s.Read(ctx, "columns")
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(data), "failed write must leave previous value")

	// Overwriting in place only counts the delta.
	require.NoError(t, s.Write(ctx, "columns", []byte("1234")))
	require.NoError(t, s.Write(ctx, "other", []byte("1234")))
	assert.ErrorIs(t, s.Write(ctx, "third", []byte("1")), ErrQuotaExceeded)

	require.NoError(t, s.Delete(ctx, "other"))
	require.NoError(t, s.Write(ctx, "third", []byte("1")))
}

func TestMemoryStorage_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	require.NoError(t, s.Write(ctx, "k", []byte("abc")))

	data, err := s.Read(ctx, "k")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := s.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStorage_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage(0)
	require.NoError(t, s.Write(ctx, "columns", []byte("x")))
	require.NoError(t, s.Write(ctx, "boards/a", []byte("x")))
	require.NoError(t, s.Write(ctx, "boards/deep/b", []byte("x")))

	paths, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"columns"}, paths)

	paths, err = s.List(ctx, "boards/")
	require.NoError(t, err)
	assert.Equal(t, []string{"boards/a"}, paths)
}
