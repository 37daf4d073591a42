package launch

import "errors"

var (
	// ErrDecode marks a cross-session payload that could not be decoded.
	ErrDecode = errors.New("decode cross-session payload")
	// ErrHandshake marks host init data that could not be parsed or verified.
	ErrHandshake = errors.New("parse host handshake")
)
