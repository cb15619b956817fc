package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceInterval is the delay after an fsnotify event before the file is
// hashed, letting the write+rename pair of an atomic write settle.
const WatchDebounceInterval = 100 * time.Millisecond

// Watch calls onChange whenever the content of path changes on disk. The parent
// directory is watched rather than the file because atomic writes replace the
// inode. Watch blocks until ctx is cancelled.
func (s *LocalStorage) Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	full := s.resolve(path)
	dir := filepath.Dir(full)
	name := filepath.Base(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	slog.DebugContext(ctx, "watching store file", "path", full)

	lastHash, _ := hashFile(full)
	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceInterval, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			newHash, err := hashFile(full)
			if err != nil && !os.IsNotExist(err) {
				slog.WarnContext(ctx, "failed to hash store file", "path", full, "error", err)
				continue
			}
			if newHash == lastHash {
				continue
			}
			lastHash = newHash
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "fsnotify error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func hashFile(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}
