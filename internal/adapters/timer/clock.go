package timer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/ladder/internal/domain/match"
	"github.com/okian/ladder/pkg/logger"
)

// PostFunc hands a fired callback to the goroutine that owns the machine.
type PostFunc func(fn func()) error

// Clock schedules on a clockwork clock and delivers fired callbacks through
// a PostFunc, normally a session mailbox.
type Clock struct {
	clock  clockwork.Clock
	post   PostFunc
	logger logger.Logger
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithClock sets the underlying clock.
func WithClock(c clockwork.Clock) ClockOption {
	return func(cl *Clock) {
		if c != nil {
			cl.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClockOption {
	return func(cl *Clock) {
		if l != nil {
			cl.logger = l
		}
	}
}

var _ match.Scheduler = (*Clock)(nil)

// NewClock creates a Clock that posts callbacks with post.
func NewClock(post PostFunc, opts ...ClockOption) *Clock {
	c := &Clock{
		clock:  clockwork.NewRealClock(),
		post:   post,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) Now() time.Time { return c.clock.Now() }

func (c *Clock) AfterFunc(d time.Duration, fn func()) match.Token {
	tok := &clockToken{}
	tok.timer = c.clock.AfterFunc(d, func() {
		if tok.revoked.Load() {
			return
		}
		err := c.post(func() {
			// Revocation may have happened between firing and delivery.
			if tok.revoked.Load() {
				return
			}
			tok.ran.Store(true)
			fn()
		})
		if err != nil {
			c.logger.Warn(context.Background(), "scheduled callback dropped", logger.Duration("after", d), logger.Error(err))
		}
	})
	return tok
}

type clockToken struct {
	timer   clockwork.Timer
	revoked atomic.Bool
	ran     atomic.Bool
}

func (t *clockToken) Cancel() bool {
	if !t.revoked.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return !t.ran.Load()
}
