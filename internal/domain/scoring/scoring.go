// Package scoring computes ladder points for a verified game.
package scoring

import (
	"fmt"
	"math"
)

// Base points per result and crown bonuses.
const (
	winPoints         = 10
	drawPoints        = 5
	lossPoints        = 2
	crownPoints       = 2
	threeCrownBonus   = 10
	threeCrowns       = 3
	defaultMultiplier = 1.0
)

// DefaultMultipliers are the per-mode point multipliers.
func DefaultMultipliers() map[string]float64 {
	return map[string]float64{
		"challenge":      1.5,
		"tournament":     2.0,
		"grandChallenge": 3.0,
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithModeMultipliers replaces the mode multipliers. Non-positive entries are ignored.
func WithModeMultipliers(multipliers map[string]float64, defaultMultiplier float64) Option {
	return func(c *Calculator) {
		c.multipliers = make(map[string]float64, len(multipliers))
		for mode, m := range multipliers {
			if m > 0 {
				c.multipliers[mode] = m
			}
		}
		if defaultMultiplier > 0 {
			c.defaultMultiplier = defaultMultiplier
		}
	}
}

// Input is the part of a verified game that scoring looks at.
type Input struct {
	Result string
	Crowns int
	Mode   string
}

// Scorer computes points for a verified game.
type Scorer interface {
	Points(in Input) (int, error)
}

// Calculator is the ladder's points table.
type Calculator struct {
	multipliers       map[string]float64
	defaultMultiplier float64
}

// NewCalculator creates a Calculator with the default multipliers.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		multipliers:       DefaultMultipliers(),
		defaultMultiplier: defaultMultiplier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Points returns the truncated points for in.
func (c *Calculator) Points(in Input) (int, error) {
	var base int
	switch in.Result {
	case "win":
		base = winPoints
	case "draw":
		base = drawPoints
	case "loss":
		base = lossPoints
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownResult, in.Result)
	}
	if in.Crowns < 0 || in.Crowns > threeCrowns {
		return 0, fmt.Errorf("%w: %d", ErrCrowns, in.Crowns)
	}

	base += in.Crowns * crownPoints
	if in.Crowns == threeCrowns {
		base += threeCrownBonus
	}
	return int(math.Trunc(float64(base) * c.Multiplier(in.Mode))), nil
}

// Multiplier returns the multiplier applied to mode.
func (c *Calculator) Multiplier(mode string) float64 {
	if m, ok := c.multipliers[mode]; ok {
		return m
	}
	return c.defaultMultiplier
}
