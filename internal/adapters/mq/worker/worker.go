// Package worker runs a session's mailbox on a single goroutine so that every
// task for that session executes to completion before the next one starts.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/ladder/internal/adapters/mq/queue"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

// Source is where the actor reads tasks from.
type Source interface {
	Dequeue() <-chan queue.Task
}

// Worker is a long-running task loop.
type Worker interface {
	// Run processes tasks until the source closes or ctx is cancelled.
	Run(ctx context.Context)
	// Shutdown stops the loop and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// Actor is a Worker that processes one task at a time.
type Actor struct {
	source Source
	name   string
	logger logger.Logger

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// New creates an Actor reading from source.
func New(source Source, opts ...Option) *Actor {
	a := &Actor{
		source:   source,
		name:     "actor",
		logger:   logger.Discard(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named(a.name)
	return a
}

// Run drains the source. Tasks still queued when the source closes are run
// before Run returns.
func (a *Actor) Run(ctx context.Context) {
	defer close(a.done)

	tasks := a.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.shutdown:
			return
		case task, ok := <-tasks:
			if !ok {
				return
			}
			a.process(ctx, task)
		}
	}
}

// Done is closed when Run has returned.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Shutdown signals the loop to stop after the current task.
func (a *Actor) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.shutdown) })

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		a.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (a *Actor) process(ctx context.Context, task queue.Task) {
	if !task.EnqueuedAt.IsZero() {
		metrics.RecordMailboxLatency(float64(time.Since(task.EnqueuedAt).Milliseconds()))
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error(ctx, "task panicked",
				logger.String("task", task.Name),
				logger.Any("panic", r),
			)
		}
	}()
	if task.Run != nil {
		task.Run(ctx)
	}
}
