package worker

import (
	"github.com/okian/ladder/pkg/logger"
)

// Option applies a configuration option to the Actor.
type Option func(*Actor)

// WithName sets the actor name for identification and logging.
func WithName(name string) Option {
	return func(a *Actor) {
		if name != "" {
			a.name = name
		}
	}
}

// WithLogger sets a custom logger for the actor.
func WithLogger(l logger.Logger) Option {
	return func(a *Actor) {
		if l != nil {
			a.logger = l
		}
	}
}
