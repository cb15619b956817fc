// Package panicerr runs long-lived components and turns their panics into
// errors.
package panicerr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// ComponentError records which component stopped and why.
type ComponentError struct {
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }

// Call runs fn and returns a recovered panic as an error.
func Call(ctx context.Context, fn func(context.Context) error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = fn(ctx)
	})
	if err != nil {
		return err
	}
	return catcher.Recovered().AsError()
}

// Group runs named components on a shared context. The first component that
// fails (or panics) cancels the others.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     *conc.WaitGroup

	mu       sync.Mutex
	firstErr error
}

func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel, wg: conc.NewWaitGroup()}
}

// Go starts fn under the name component.
func (g *Group) Go(component string, fn func(context.Context) error) {
	g.wg.Go(func() {
		err := Call(g.ctx, fn)
		if err == nil {
			return
		}
		slog.Error("component stopped", "component", component, "error", err)
		g.mu.Lock()
		if g.firstErr == nil {
			g.firstErr = &ComponentError{Component: component, Err: err}
		}
		g.mu.Unlock()
		g.cancel()
	})
}

// Stop cancels the shared context without recording an error.
func (g *Group) Stop() { g.cancel() }

// Wait blocks until every component has returned and reports the first
// failure.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}
