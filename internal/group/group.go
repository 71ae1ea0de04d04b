// package group manages the lifecycle of the goroutines that make up the
// serve command: the HTTP listener and the background workers.
package group

import (
	"context"
	"sync"
)

// A G manages the lifetime of a set of goroutines from a common context.
// The first goroutine in the group to return will cause the context to be canceled,
// terminating the remaining goroutines.
type G struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup

	errOnce sync.Once
	err     error
}

// New returns a new group derived from ctx.
func New(ctx context.Context) *G {
	ctx, cancel := context.WithCancel(ctx)
	return &G{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Go adds a new goroutine to the group.
// fn should return when the context passed to it is canceled.
func (g *G) Go(fn func(context.Context) error) {
	g.done.Add(1)
	go func() {
		defer g.done.Done()
		defer g.cancel()
		if err := fn(g.ctx); err != nil {
			g.errOnce.Do(func() { g.err = err })
		}
	}()
}

// Wait waits for all goroutines in the group to exit.
// If any of the goroutines fail with an error, Wait will return the first error.
func (g *G) Wait() error {
	g.done.Wait()
	g.errOnce.Do(func() {
		// noop, required to synchronise on the errOnce mutex.
	})
	return g.err
}
