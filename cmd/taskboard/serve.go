package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/board/repositoryimpl"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/form"
	"github.com/kazz187/taskboard/internal/tui"
	"github.com/kazz187/taskboard/pkg/panicerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

// startPersistence wires the syncer and, for a watched local store, the
// reloader onto r.
func startPersistence(r *panicerr.Group, env *config.Env, store storage.Storage, repo *repositoryimpl.StorageRepository, manager *board.Manager, syncer *board.Syncer) {
	r.Go("syncer", syncer.Run)

	local, ok := store.(*storage.LocalStorage)
	if !ok || !env.Watch {
		return
	}
	watch := func(ctx context.Context, onChange func()) error {
		return local.Watch(ctx, repo.Key(), onChange)
	}
	reloader := board.NewReloader(repo, manager, watch, board.WithSyncer(syncer))
	r.Go("reloader", reloader.Run)
}

func runServe(ctx context.Context, env *config.Env) error {
	store, repo, err := openRepository(ctx, env)
	if err != nil {
		return err
	}
	manager, syncer, err := newManager(ctx, env, repo)
	if err != nil {
		return err
	}
	bus := eventbus.New()
	manager.Subscribe(board.PublishChanges(bus))

	boardServer := board.NewServer(manager, form.NewValidator(time.Now), bus)
	srv := server.NewServer(env, boardServer)

	r := panicerr.NewGroup(ctx)
	startPersistence(r, env, store, repo, manager, syncer)
	r.Go("server", func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	r.Go("shutdown", func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return r.Wait()
}

func runTUI(ctx context.Context, env *config.Env) error {
	store, repo, err := openRepository(ctx, env)
	if err != nil {
		return err
	}
	manager, syncer, err := newManager(ctx, env, repo)
	if err != nil {
		return err
	}

	r := panicerr.NewGroup(ctx)
	startPersistence(r, env, store, repo, manager, syncer)
	r.Go("tui", func(ctx context.Context) error {
		defer r.Stop()
		return tui.Run(ctx, manager, form.NewValidator(time.Now))
	})
	return r.Wait()
}
