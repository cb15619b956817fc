package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Watch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "columns.json", []byte(`[]`)))

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "columns.json", func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(s.resolve("columns.json"), []byte(`[{"id":"1"}]`), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("change was not reported")
	}

	// Rewriting identical content is not a change.
	require.NoError(t, s.Write(ctx, "columns.json", []byte(`[{"id":"1"}]`)))
	select {
	case <-changed:
		t.Fatal("identical content reported as change")
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
