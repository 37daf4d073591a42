// Package types contains the view shapes returned by the API.
package types

import (
	"time"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/profile"
)

// ProfileView is the resolved profile plus values derived for display.
type ProfileView struct {
	profile.UserProfile
	AvatarInitial string  `json:"avatar_initial"`
	WinRate       float64 `json:"win_rate"`
}

// NewProfileView derives the display fields of p.
func NewProfileView(p profile.UserProfile) ProfileView {
	return ProfileView{
		UserProfile:   p,
		AvatarInitial: p.AvatarInitial(),
		WinRate:       p.WinRate(),
	}
}

// MatchView is the match-search state of a session.
type MatchView struct {
	State           string              `json:"state"`
	Opponent        *model.OpponentInfo `json:"opponent,omitempty"`
	SearchStartedAt *time.Time          `json:"search_started_at,omitempty"`
	SearchDeadline  *time.Time          `json:"search_deadline,omitempty"`
}

// BridgeView describes the host connection.
type BridgeView struct {
	Connected bool `json:"connected"`
	Pending   int  `json:"pending"`
}

// SessionView is a point-in-time snapshot of a session.
type SessionView struct {
	ID           string               `json:"id"`
	Authority    string               `json:"authority"`
	Profile      ProfileView          `json:"profile"`
	SelectedMode string               `json:"selected_mode,omitempty"`
	Match        MatchView            `json:"match"`
	History      []model.HistoryEntry `json:"history"`
	Bridge       BridgeView           `json:"bridge"`
}
