package repositoryimpl

import (
	"context"
	"fmt"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

// DefaultKey is the storage key the board lives under.
const DefaultKey = "columns"

// StorageRepository keeps the whole board in a single storage object.
type StorageRepository struct {
	storage storage.Storage
	codec   Codec
	key     string
}

func NewStorageRepository(s storage.Storage, codec Codec, key string) *StorageRepository {
	if key == "" {
		key = DefaultKey
	}
	return &StorageRepository{storage: s, codec: codec, key: key}
}

// Key returns the storage path of the board.
func (r *StorageRepository) Key() string {
	return r.key
}

func (r *StorageRepository) Load(ctx context.Context) (board.Board, error) {
	data, err := r.storage.Read(ctx, r.key)
	if err != nil {
		return nil, cerr.WrapStorageReadError("board", err)
	}
	b, err := r.codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.Normalize(), nil
}

func (r *StorageRepository) Save(ctx context.Context, b board.Board) error {
	data, err := r.codec.Marshal(b)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal board as %s: %w", r.codec.Format(), err))
	}
	if err := r.storage.Write(ctx, r.key, data); err != nil {
		return cerr.WrapStorageWriteError("board", err)
	}
	return nil
}

// Exists reports whether a board has been stored yet.
func (r *StorageRepository) Exists(ctx context.Context) (bool, error) {
	ok, err := r.storage.Exists(ctx, r.key)
	if err != nil {
		return false, cerr.WrapStorageReadError("board", err)
	}
	return ok, nil
}

// Delete removes the stored board.
func (r *StorageRepository) Delete(ctx context.Context) error {
	if err := r.storage.Delete(ctx, r.key); err != nil {
		return cerr.WrapStorageDeleteError("board", err)
	}
	return nil
}
