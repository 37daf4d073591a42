package profile

import "github.com/okian/ladder/pkg/logger"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithDecoder sets the cross-session payload decoder.
func WithDecoder(d PayloadDecoder) Option {
	return func(r *Resolver) {
		r.decoder = d
	}
}

// WithHandshakeParser sets the host handshake parser.
func WithHandshakeParser(h HandshakeParser) Option {
	return func(r *Resolver) {
		r.handshake = h
	}
}

// WithCache sets the persisted cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithSlot sets the base cache slot name.
func WithSlot(slot string) Option {
	return func(r *Resolver) {
		if slot != "" {
			r.slot = slot
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
