// Package queue is the bounded mailbox in front of a session actor.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/ladder/pkg/metrics"
)

const defaultCapacity = 64

// Task is one unit of work run to completion on the actor goroutine.
type Task struct {
	Name       string
	Run        func(ctx context.Context)
	EnqueuedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a task. It never blocks; a full mailbox returns ErrFull.
	Enqueue(ctx context.Context, t Task) error
	// Dequeue returns the channel tasks arrive on. It is closed by Close.
	Dequeue() <-chan Task
	Len() int
	Close() error
	IsClosed() bool
}

// Mailbox implements Queue with a buffered channel.
type Mailbox struct {
	tasks    chan Task
	capacity int
	name     string

	mu     sync.RWMutex
	closed bool
}

// New creates a Mailbox.
func New(opts ...Option) *Mailbox {
	q := &Mailbox{capacity: defaultCapacity, name: "mailbox"}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)
	return q
}

// Name returns the mailbox label.
func (q *Mailbox) Name() string { return q.name }

func (q *Mailbox) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordMailboxRejection()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}

	select {
	case q.tasks <- t:
		return nil
	default:
		metrics.RecordMailboxRejection()
		return ErrFull
	}
}

// Post enqueues fn under a background context. It matches timer.PostFunc.
func (q *Mailbox) Post(fn func()) error {
	return q.Enqueue(context.Background(), Task{Name: "timer", Run: func(context.Context) { fn() }})
}

func (q *Mailbox) Dequeue() <-chan Task { return q.tasks }

func (q *Mailbox) Len() int { return len(q.tasks) }

// Close stops accepting tasks. Tasks already queued stay readable.
func (q *Mailbox) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

func (q *Mailbox) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
