package match

import "errors"

var (
	ErrNotRegistered   = errors.New("player is not registered")
	ErrInvalidState    = errors.New("invalid match state")
	ErrOpponentMissing = errors.New("no opponent in found state")
)
