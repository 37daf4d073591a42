// Package model contains the messages exchanged with the host bridge and the
// records passed between layers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Outbound actions understood by the host.
const (
	ActionVerify         = "verify"
	ActionVerifyMatch    = "verify_match"
	ActionGetLeaderboard = "get_leaderboard"
)

// ActionGameVerified is the only inbound action.
const ActionGameVerified = "game_verified"

// Haptic impact styles and notification types relayed to the host.
const (
	ImpactLight  = "light"
	ImpactMedium = "medium"
	ImpactSoft   = "soft"

	NotificationSuccess = "success"
	NotificationError   = "error"
)

// ErrMalformed marks a message that must not be sent or applied.
var ErrMalformed = errors.New("malformed bridge message")

// Message is a structured payload sent to the host.
type Message interface {
	Action() string
	Validate() error
}

// OpponentInfo is the opponent snapshot carried by verify_match.
type OpponentInfo struct {
	Name     string `json:"name"`
	Trophies int    `json:"trophies"`
	Tag      string `json:"tag"`
	Avatar   string `json:"avatar"`
}

// VerifyRequest asks the host to verify the last game in a mode.
type VerifyRequest struct {
	Kind   string  `json:"action"`
	Mode   string  `json:"mode"`
	UserID *string `json:"userId"`
}

// NewVerifyRequest builds a verify message. An empty userID is sent as null.
func NewVerifyRequest(mode, userID string) VerifyRequest {
	return VerifyRequest{Kind: ActionVerify, Mode: mode, UserID: nullable(userID)}
}

func (m VerifyRequest) Action() string { return m.Kind }

func (m VerifyRequest) Validate() error {
	if m.Kind != ActionVerify || m.Mode == "" {
		return fmt.Errorf("%w: %+v", ErrMalformed, m)
	}
	return nil
}

// VerifyMatchRequest asks the host to verify a game against a found opponent.
type VerifyMatchRequest struct {
	Kind     string       `json:"action"`
	Opponent OpponentInfo `json:"opponent"`
	UserID   *string      `json:"userId"`
}

// NewVerifyMatchRequest builds a verify_match message.
func NewVerifyMatchRequest(opponent OpponentInfo, userID string) VerifyMatchRequest {
	return VerifyMatchRequest{Kind: ActionVerifyMatch, Opponent: opponent, UserID: nullable(userID)}
}

func (m VerifyMatchRequest) Action() string { return m.Kind }

func (m VerifyMatchRequest) Validate() error {
	if m.Kind != ActionVerifyMatch || m.Opponent.Name == "" || m.Opponent.Tag == "" {
		return fmt.Errorf("%w: %+v", ErrMalformed, m)
	}
	return nil
}

// LeaderboardRequest asks the host for the leaderboard.
type LeaderboardRequest struct {
	Kind   string  `json:"action"`
	UserID *string `json:"userId"`
}

// NewLeaderboardRequest builds a get_leaderboard message.
func NewLeaderboardRequest(userID string) LeaderboardRequest {
	return LeaderboardRequest{Kind: ActionGetLeaderboard, UserID: nullable(userID)}
}

func (m LeaderboardRequest) Action() string { return m.Kind }

func (m LeaderboardRequest) Validate() error {
	if m.Kind != ActionGetLeaderboard {
		return fmt.Errorf("%w: %+v", ErrMalformed, m)
	}
	return nil
}

// UserIDOf returns the user id carried by a message, or "" when it is null.
func UserIDOf(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GameVerifiedData is the body of a game_verified event. Points is nil when
// the host left scoring to us.
type GameVerifiedData struct {
	Result         string `json:"result"`
	Crowns         int    `json:"crowns"`
	OpponentCrowns int    `json:"opponentCrowns"`
	Mode           string `json:"mode"`
	Points         *int   `json:"points,omitempty"`
}

// InboundEvent is an asynchronous notification from the host.
type InboundEvent struct {
	Action  string           `json:"action"`
	EventID string           `json:"event_id,omitempty"`
	Data    GameVerifiedData `json:"data"`
}

// ParseInbound decodes and checks an inbound event.
func ParseInbound(raw []byte) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return InboundEvent{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if ev.Action != ActionGameVerified {
		return InboundEvent{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, ev.Action)
	}
	if ev.Data.Result == "" {
		return InboundEvent{}, fmt.Errorf("%w: missing result", ErrMalformed)
	}
	return ev, nil
}

// HistoryEntry is one verified game in a session's history.
type HistoryEntry struct {
	ID             string    `json:"id"`
	Result         string    `json:"result"`
	Crowns         int       `json:"crowns"`
	OpponentCrowns int       `json:"opponent_crowns"`
	Mode           string    `json:"mode"`
	Points         int       `json:"points"`
	VerifiedAt     time.Time `json:"verified_at"`
}
