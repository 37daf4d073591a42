package profile

import (
	"fmt"
	"math"
)

// Game results reported by the host.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"

	maxCrowns = 3
)

// MaxCounter bounds every stored point and game counter so that it survives
// a save and load.
const MaxCounter = math.MaxInt32

// VerifiedGame is a game the host confirmed for this player.
type VerifiedGame struct {
	Result         string
	Crowns         int
	OpponentCrowns int
	Mode           string
	Points         int
}

// Validate checks the game before it may touch a profile.
func (g VerifiedGame) Validate() error {
	switch g.Result {
	case ResultWin, ResultLoss, ResultDraw:
	default:
		return fmt.Errorf("%w: result %q", ErrInvalidGame, g.Result)
	}
	if g.Crowns < 0 || g.Crowns > maxCrowns || g.OpponentCrowns < 0 || g.OpponentCrowns > maxCrowns {
		return fmt.Errorf("%w: crowns %d-%d", ErrInvalidGame, g.Crowns, g.OpponentCrowns)
	}
	if g.Points < 0 || g.Points > MaxCounter {
		return fmt.Errorf("%w: points %d", ErrInvalidGame, g.Points)
	}
	return nil
}

// ApplyGame adds a verified game to the profile's stats. Draws count as a
// game but neither a win nor a loss. The profile is untouched on error,
// including when a counter would pass MaxCounter.
func (p *UserProfile) ApplyGame(g VerifiedGame) error {
	if !p.Registered {
		return ErrNotRegistered
	}
	if err := g.Validate(); err != nil {
		return err
	}
	wins, losses := 0, 0
	switch g.Result {
	case ResultWin:
		wins = 1
	case ResultLoss:
		losses = 1
	}
	if overflows(p.CurrentMonthPoints, g.Points) || overflows(p.TotalPoints, g.Points) ||
		overflows(p.GamesPlayed, 1) || overflows(p.Wins, wins) || overflows(p.Losses, losses) {
		return fmt.Errorf("%w: counters would exceed %d", ErrInvalidGame, MaxCounter)
	}
	p.CurrentMonthPoints += g.Points
	p.TotalPoints += g.Points
	p.GamesPlayed++
	p.Wins += wins
	p.Losses += losses
	return nil
}

func overflows(counter, delta int) bool {
	return counter > MaxCounter-delta
}
