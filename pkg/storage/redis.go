package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements Storage on top of plain Redis string keys.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a RedisStorage. All keys are namespaced under prefix.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// NewRedisStorageFromURL parses a redis:// URL, falling back to treating the
// value as a bare host:port address.
func NewRedisStorageFromURL(url, prefix string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		if strings.Contains(url, "://") {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		opts = &redis.Options{Addr: url}
	}
	return NewRedisStorage(redis.NewClient(opts), prefix), nil
}

func (s *RedisStorage) key(path string) string {
	return s.prefix + strings.TrimPrefix(path, "/")
}

func (s *RedisStorage) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read redis key %s: %w", s.key(path), err)
	}
	return data, nil
}

func (s *RedisStorage) Write(ctx context.Context, path string, data []byte) error {
	if err := s.client.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		if strings.Contains(err.Error(), "OOM") {
			return fmt.Errorf("failed to write redis key %s: %w: %w", s.key(path), ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write redis key %s: %w", s.key(path), err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, path string) error {
	n, err := s.client.Del(ctx, s.key(path)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete redis key %s: %w", s.key(path), err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}

func (s *RedisStorage) List(ctx context.Context, prefix string) ([]string, error) {
	dir := ""
	if p := strings.Trim(prefix, "/"); p != "" {
		dir = p + "/"
	}
	var paths []string
	iter := s.client.Scan(ctx, 0, s.prefix+dir+"*", 100).Iterator()
	for iter.Next(ctx) {
		rel := strings.TrimPrefix(iter.Val(), s.prefix)
		if strings.Contains(strings.TrimPrefix(rel, dir), "/") {
			continue
		}
		paths = append(paths, rel)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list redis keys %s: %w", s.prefix+dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *RedisStorage) Exists(ctx context.Context, path string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis key %s: %w", s.key(path), err)
	}
	return n > 0, nil
}

// Close releases the underlying client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
