package bridge

import "errors"

var (
	ErrOutboxFull  = errors.New("bridge outbox full")
	ErrClosed      = errors.New("bridge closed")
	ErrNotAttached = errors.New("no host attached")
)
