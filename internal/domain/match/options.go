package match

import (
	"math/rand"
	"time"

	"github.com/okian/ladder/pkg/logger"
)

// Option configures a Machine.
type Option func(*Machine)

// WithBridge sets the host bridge.
func WithBridge(b Bridge) Option {
	return func(m *Machine) {
		if b != nil {
			m.bridge = b
		}
	}
}

// WithRand sets the random source used for deadlines and opponents.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithGenerator overrides opponent generation.
func WithGenerator(g Generator) Option {
	return func(m *Machine) {
		if g != nil {
			m.generate = g
		}
	}
}

// WithSearchWindow sets the range the search deadline is drawn from, [min, max).
func WithSearchWindow(minWait, maxWait time.Duration) Option {
	return func(m *Machine) {
		if minWait > 0 && maxWait > minWait {
			m.searchMin, m.searchMax = minWait, maxWait
		}
	}
}

// WithResetDelay sets how long Verifying lasts before the automatic reset.
func WithResetDelay(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.resetDelay = d
		}
	}
}

// WithListener registers a transition listener.
func WithListener(fn func(Transition)) Option {
	return func(m *Machine) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}
