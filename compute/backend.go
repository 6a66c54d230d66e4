// Package compute abstracts the distributed execution backend the pipeline
// delegates parallel work to: frame materialization fans out over row
// partitions with Map, and the single fit call of a run executes inside a
// scoped Run. The pipeline never manages cluster lifecycle; a Backend is
// handed in by the caller and is private to one pipeline invocation.
package compute

import (
	"context"
	"runtime"

	"github.com/tabfit/tabfit/core/parallel"
	"github.com/tabfit/tabfit/pkg/errors"
)

// Backend is an opaque parallel-execution target.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Map runs fn once per part, possibly concurrently, and blocks until
	// all parts finish. The first error (or a context cancellation
	// observed before a part starts) is returned.
	Map(ctx context.Context, parts int, fn func(part int) error) error

	// Run executes fn inside the backend's scope and blocks until it
	// returns. The scope is entered and exited around this call only; a
	// panicking worker is surfaced as an error, not a crash.
	Run(ctx context.Context, fn func(context.Context) error) error

	// Close releases backend resources. A closed backend rejects work.
	Close() error
}

// Local is the in-process Backend: a bounded goroutine pool sized by
// workers. It is the default target for tests and single-machine runs.
type Local struct {
	workers int
	closed  bool
}

// NewLocal creates a local backend with the given worker count. A count of
// zero or less means runtime.NumCPU().
func NewLocal(workers int) *Local {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Local{workers: workers}
}

// Name implements Backend.Name.
func (l *Local) Name() string { return "local" }

// Workers returns the pool size.
func (l *Local) Workers() int { return l.workers }

// Map implements Backend.Map using chunked goroutine fan-out.
func (l *Local) Map(ctx context.Context, parts int, fn func(part int) error) error {
	if l.closed {
		return errors.New("compute: backend is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return parallel.ParallelizeErr(parts, l.workers, func(start, end int) error {
		for part := start; part < end; part++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(part); err != nil {
				return err
			}
		}
		return nil
	})
}

// Run implements Backend.Run. Panics inside fn are recovered and returned
// as errors so a crashing fit does not take down the caller.
func (l *Local) Run(ctx context.Context, fn func(context.Context) error) (err error) {
	if l.closed {
		return errors.New("compute: backend is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	defer errors.Recover(&err, "compute.Local.Run")
	return fn(ctx)
}

// Close implements Backend.Close.
func (l *Local) Close() error {
	l.closed = true
	return nil
}
