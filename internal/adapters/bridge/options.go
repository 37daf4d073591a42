package bridge

import (
	"time"

	"github.com/okian/ladder/pkg/logger"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithOutboxSize bounds how many frames may wait for a host connection.
func WithOutboxSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.size = n
		}
	}
}

// WithWriteTimeout sets the per-frame write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.writeTimeout = d
		}
	}
}

// WithInbound sets the handler for messages the host sends back.
func WithInbound(fn InboundFunc) Option {
	return func(b *Bridge) {
		b.inbound = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}
