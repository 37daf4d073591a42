package api

import (
	"net/http"

	"github.com/okian/ladder/pkg/logger"
)

type options struct {
	checkOrigin func(r *http.Request) bool
	logger      logger.Logger
}

// Option configures the Server.
type Option func(*options)

// WithCheckOrigin sets the websocket origin check for host bridges. The
// default rejects cross-origin upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(o *options) {
		o.checkOrigin = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
