package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/board/repositoryimpl"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/form"
	"github.com/kazz187/taskboard/pkg/storage"
)

// boardCLI runs one command against the stored board: load, mutate through
// the manager, then flush the syncer once.
type boardCLI struct {
	store   storage.Storage
	repo    *repositoryimpl.StorageRepository
	manager *board.Manager
	syncer  *board.Syncer
	forms   *form.Validator
}

func openRepository(ctx context.Context, env *config.Env) (storage.Storage, *repositoryimpl.StorageRepository, error) {
	store, err := env.OpenStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", env.Type, err)
	}
	codec, err := repositoryimpl.NewCodec(env.Format)
	if err != nil {
		return nil, nil, err
	}
	return store, repositoryimpl.NewStorageRepository(store, codec, env.Key), nil
}

func newManager(ctx context.Context, env *config.Env, repo board.Repository) (*board.Manager, *board.Syncer, error) {
	ids, err := board.NewIDGenerator(env.IDGenerator)
	if err != nil {
		return nil, nil, err
	}
	manager := board.NewManager(board.LoadOrEmpty(ctx, repo), board.WithIDGenerator(ids))
	syncer := board.NewSyncer(repo)
	manager.Subscribe(syncer.Observe)
	return manager, syncer, nil
}

func openBoard(ctx context.Context, env *config.Env) (*boardCLI, error) {
	store, repo, err := openRepository(ctx, env)
	if err != nil {
		return nil, err
	}
	manager, syncer, err := newManager(ctx, env, repo)
	if err != nil {
		return nil, err
	}
	return &boardCLI{
		store:   store,
		repo:    repo,
		manager: manager,
		syncer:  syncer,
		forms:   form.NewValidator(time.Now),
	}, nil
}

// commit saves pending changes and reports a failed save as an error.
func (b *boardCLI) commit(ctx context.Context) error {
	_, failedBefore := b.syncer.Stats()
	b.syncer.Flush(ctx)
	if _, failed := b.syncer.Stats(); failed > failedBefore {
		return fmt.Errorf("the change was applied but could not be saved")
	}
	return nil
}

func (b *boardCLI) listColumns(w io.Writer) error {
	printBoard(w, b.manager.Columns())
	return nil
}

func (b *boardCLI) addColumn(ctx context.Context, w io.Writer, name string) error {
	name, err := b.forms.Column(form.ColumnInput{Name: name})
	if err != nil {
		return describe(err)
	}
	column, ok := b.manager.NewColumn(name)
	if !ok {
		return fmt.Errorf("generated column id is already in use")
	}
	fmt.Fprintln(w, column.ID)
	return b.commit(ctx)
}

func (b *boardCLI) renameColumn(ctx context.Context, columnID, name string) error {
	name, err := b.forms.Column(form.ColumnInput{Name: name})
	if err != nil {
		return describe(err)
	}
	if !b.manager.RenameColumn(columnID, name) {
		return fmt.Errorf("column %q not found", columnID)
	}
	return b.commit(ctx)
}

func (b *boardCLI) deleteColumn(ctx context.Context, columnID string) error {
	if !b.manager.DeleteColumn(columnID) {
		return fmt.Errorf("column %q not found", columnID)
	}
	return b.commit(ctx)
}

func (b *boardCLI) listTasks(w io.Writer, columnID, order string) error {
	o, ok := board.ParseTaskOrder(order)
	if !ok {
		return fmt.Errorf("unknown order %q", order)
	}
	c, ok := b.manager.Column(columnID)
	if !ok {
		return fmt.Errorf("column %q not found", columnID)
	}
	printTasks(w, c.SortedTasks(o))
	return nil
}

func (b *boardCLI) addTask(ctx context.Context, w io.Writer, columnID, name, assignee, description, deadline string) error {
	d, err := form.ParseDeadline(deadline, time.Local)
	if err != nil {
		return describe(err)
	}
	data, err := b.forms.Task(form.TaskInput{Name: name, AssignedTo: assignee, Description: description, Deadline: d})
	if err != nil {
		return describe(err)
	}
	task, ok := b.manager.AddTask(columnID, board.TaskData(data))
	if !ok {
		return fmt.Errorf("column %q not found", columnID)
	}
	fmt.Fprintln(w, task.ID)
	return b.commit(ctx)
}

type editFlags struct {
	name, assignee, description *string
	deadline                    string
}

func (b *boardCLI) editTask(ctx context.Context, columnID, taskID string, f editFlags) error {
	patch := form.TaskPatch{Name: f.name, AssignedTo: f.assignee, Description: f.description}
	if f.deadline != "" {
		d, err := form.ParseDeadline(f.deadline, time.Local)
		if err != nil {
			return describe(err)
		}
		patch.Deadline = d
	}
	patch, err := b.forms.TaskPatch(patch)
	if err != nil {
		return describe(err)
	}
	if !b.manager.EditTask(columnID, taskID, board.TaskPatch(patch)) {
		return fmt.Errorf("task %q not found in column %q", taskID, columnID)
	}
	return b.commit(ctx)
}

func (b *boardCLI) deleteTask(ctx context.Context, columnID, taskID string) error {
	if !b.manager.DeleteTask(columnID, taskID) {
		return fmt.Errorf("task %q not found in column %q", taskID, columnID)
	}
	return b.commit(ctx)
}

func (b *boardCLI) moveTask(ctx context.Context, taskID, overID string) error {
	if !b.manager.MoveTask(taskID, overID) {
		fmt.Fprintln(os.Stderr, "nothing moved")
		return nil
	}
	return b.commit(ctx)
}

func (b *boardCLI) export(format, output string) error {
	codec, err := repositoryimpl.NewCodec(format)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(b.manager.Columns())
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

func (b *boardCLI) importFile(ctx context.Context, path, format string) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	codec, err := repositoryimpl.NewCodec(format)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next, err := codec.Unmarshal(data)
	if err != nil {
		return describe(err)
	}
	if err := next.Validate(); err != nil {
		return describe(err)
	}
	if !b.manager.Replace(next) {
		fmt.Fprintln(os.Stderr, "board unchanged")
		return nil
	}
	return b.commit(ctx)
}

// reset removes the stored board. The next run starts empty.
func (b *boardCLI) reset(ctx context.Context, w io.Writer) error {
	ok, err := b.repo.Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "no stored board")
		return nil
	}
	if err := b.repo.Delete(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted %s\n", b.repo.Key())
	return nil
}

// listBoards prints the keys in the store; the configured board is starred.
func (b *boardCLI) listBoards(ctx context.Context, w io.Writer) error {
	keys, err := b.store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list stored boards: %w", err)
	}
	for _, key := range keys {
		marker := "  "
		if key == b.repo.Key() {
			marker = "* "
		}
		fmt.Fprintln(w, marker+key)
	}
	return nil
}
