package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage implements Storage in process memory. A positive quota caps the
// total number of bytes held, the way browser local storage does.
type MemoryStorage struct {
	mu    sync.RWMutex
	quota int
	used  int
	data  map[string][]byte
}

// NewMemoryStorage creates a MemoryStorage. quota <= 0 means unlimited.
func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{
		quota: quota,
		data:  make(map[string][]byte),
	}
}

func (s *MemoryStorage) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStorage) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used - len(s.data[path]) + len(data)
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("failed to write %s (%d of %d bytes): %w", path, used, s.quota, ErrQuotaExceeded)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.data[path] = buf
	s.used = used
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[path]
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	s.used -= len(data)
	delete(s.data, path)
	return nil
}

func (s *MemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := ""
	if p := strings.Trim(prefix, "/"); p != "" {
		dir = p + "/"
	}
	var paths []string
	for p := range s.data {
		rest, ok := strings.CutPrefix(p, dir)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *MemoryStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[path]
	return ok, nil
}
