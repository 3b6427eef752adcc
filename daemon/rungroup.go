// Package daemon supervises the long-running goroutines an aqasend
// process hosts at once: the HTTP server, the eviction engine, and the
// periodic snapshot saver. Grounded on the teacher's rungroup
// (ais/daemon.go), adapted from its Stop(err)-driven shutdown to
// context.Context cancellation, since every runner here already takes a
// ctx the teacher's target/proxy runners did not.
package daemon

import (
	"context"

	"go.uber.org/zap"
)

// Runner is one supervised goroutine. Run blocks until ctx is cancelled
// or it fails on its own; it must return promptly once ctx.Done() fires.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// RunGroup runs every registered Runner concurrently and waits for all of
// them to return. The first non-context.Canceled error cancels the
// shared context so the rest shut down too.
type RunGroup struct {
	runners []Runner
	log     *zap.Logger
}

// New returns an empty RunGroup that logs through log.
func New(log *zap.Logger) *RunGroup {
	return &RunGroup{log: log}
}

// Add registers r to run when Run is called.
func (g *RunGroup) Add(r Runner) {
	g.runners = append(g.runners, r)
}

// Run starts every registered runner and blocks until all of them have
// returned, either because ctx was cancelled or one of them failed on
// its own (which cancels the rest). Returns the first non-nil,
// non-context.Canceled error observed, if any.
func (g *RunGroup) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(g.runners))
	for _, r := range g.runners {
		go func(r Runner) {
			err := r.Run(ctx)
			if err != nil && ctx.Err() == nil {
				g.log.Warn("runner exited with error", zap.String("runner", r.Name()), zap.Error(err))
			}
			errCh <- err
		}(r)
	}

	var firstErr error
	for range g.runners {
		if err := <-errCh; err != nil && firstErr == nil && err != context.Canceled {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}
