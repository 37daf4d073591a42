package repository

import "errors"

var (
	// ErrCorrupt marks a slot whose bytes are not a profile record.
	ErrCorrupt = errors.New("corrupt profile record")
	// ErrUnknownDriver is returned by Open for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown store driver")
)
