package profile

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotRegistered = errors.New("profile is not registered")
	ErrInvalidGame   = errors.New("invalid verified game")
	ErrNoCache       = errors.New("no profile cache configured")
)
