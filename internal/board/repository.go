package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// Repository persists the whole board under a single key.
type Repository interface {
	Load(ctx context.Context) (Board, error)
	Save(ctx context.Context, b Board) error
}

// LoadOrEmpty loads the stored board. A missing, unreadable or malformed board
// yields an empty one; the error is logged and never returned.
func LoadOrEmpty(ctx context.Context, repo Repository) Board {
	b, err := repo.Load(ctx)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			slog.DebugContext(ctx, "no stored board, starting empty")
		} else {
			slog.ErrorContext(ctx, "failed to load board, starting empty", "error", err)
		}
		return Board{}
	}
	return b.Normalize()
}

// Validate checks the invariants a stored board must satisfy: every column and
// task has an id, and no id appears twice.
func (b Board) Validate() error {
	columns := make(map[string]struct{}, len(b))
	tasks := make(map[string]struct{})
	for i, c := range b {
		if c.ID == "" {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("column %d has no id", i), nil)
		}
		if _, dup := columns[c.ID]; dup {
			return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("duplicate column id %q", c.ID), nil)
		}
		columns[c.ID] = struct{}{}
		for j, t := range c.Tasks {
			if t.ID == "" {
				return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("task %d of column %q has no id", j, c.ID), nil)
			}
			if _, dup := tasks[t.ID]; dup {
				return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("duplicate task id %q", t.ID), nil)
			}
			tasks[t.ID] = struct{}{}
		}
	}
	return nil
}
