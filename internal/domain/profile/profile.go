// Package profile reconciles the player's profile from the independently
// updatable launch sources and owns the stat updates that follow a verified game.
package profile

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults used when no source yields a field.
const (
	DefaultFirstName = "Player"
	DefaultUsername  = "player"
	DefaultPosition  = "-"
)

// UserProfile is the canonical profile of a session.
// Empty UserID and PlayerTag mean "not known"; an empty PlayerTag means unregistered.
type UserProfile struct {
	UserID             string `json:"user_id,omitempty"`
	FirstName          string `json:"first_name"`
	Username           string `json:"username"`
	PlayerTag          string `json:"player_tag,omitempty"`
	CurrentMonthPoints int    `json:"points"`
	TotalPoints        int    `json:"total_points"`
	GamesPlayed        int    `json:"games"`
	Wins               int    `json:"wins"`
	Losses             int    `json:"losses"`
	Position           string `json:"position"`
	Registered         bool   `json:"registered"`
}

// Default returns the profile used when every source is absent.
func Default() UserProfile {
	return UserProfile{
		FirstName: DefaultFirstName,
		Username:  DefaultUsername,
		Position:  DefaultPosition,
	}
}

// Valid reports whether p honors the registration invariant and non-negative counters.
func (p UserProfile) Valid() bool {
	if p.Registered && p.PlayerTag == "" {
		return false
	}
	return p.CurrentMonthPoints >= 0 && p.TotalPoints >= 0 &&
		p.GamesPlayed >= 0 && p.Wins >= 0 && p.Losses >= 0
}

// StatsConsistent reports whether wins and losses fit inside games played.
// Sources never guarantee this, so nothing relies on it.
func (p UserProfile) StatsConsistent() bool {
	return p.Wins+p.Losses <= p.GamesPlayed
}

// WinRate returns the win percentage in [0, 100].
func (p UserProfile) WinRate() float64 {
	if p.GamesPlayed <= 0 {
		return 0
	}
	rate := float64(p.Wins) / float64(p.GamesPlayed) * 100
	if rate > 100 {
		return 100
	}
	return rate
}

// AvatarInitial is the upper-cased first letter of the first name.
func (p UserProfile) AvatarInitial() string {
	name := p.FirstName
	if name == "" {
		name = DefaultFirstName
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	// Casers carry state, so one per call.
	return cases.Upper(language.Und).String(name[:size])
}
