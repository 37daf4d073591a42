package scoring

import "errors"

var (
	ErrUnknownResult = errors.New("unknown game result")
	ErrCrowns        = errors.New("crowns out of range")
)
