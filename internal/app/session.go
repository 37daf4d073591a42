package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ladder/internal/adapters/bridge"
	"github.com/okian/ladder/internal/adapters/mq/queue"
	"github.com/okian/ladder/internal/adapters/mq/worker"
	"github.com/okian/ladder/internal/domain/dedupe"
	"github.com/okian/ladder/internal/domain/match"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/profile"
	"github.com/okian/ladder/internal/domain/scoring"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

// Alerts shown by the host.
const (
	alertRegisterFirst   = "Register first with /register"
	alertChooseMode      = "Choose a game mode!"
	alertVerifyGame      = "Play a game, then use /verify in the bot"
	alertOpponentMissing = "Error: opponent not found"
)

// Session is the context object of one mini-app launch. Apart from ID and
// the activity stamp, it must only be touched from its actor, i.e. inside
// Service.Do.
type Session struct {
	id        string
	slot      string
	authority profile.Kind
	lastSeen  atomic.Int64

	profile   profile.UserProfile
	mode      string
	modeToken match.Token
	history   []model.HistoryEntry

	machine *match.Machine
	sched   match.Scheduler
	bridge  *bridge.Bridge
	mailbox *queue.Mailbox
	actor   *worker.Actor
	seen    dedupe.Deduper

	resolver     *profile.Resolver
	scorer       scoring.Scorer
	modes        []string
	modeReset    time.Duration
	historyLimit int
	logger       logger.Logger
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *Session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Profile returns the current profile.
func (s *Session) Profile() profile.UserProfile { return s.profile }

// SelectMode chooses the game mode for VerifyGame.
func (s *Session) SelectMode(ctx context.Context, mode string) error {
	if !s.profile.Registered {
		s.bridge.Alert(ctx, alertRegisterFirst)
		return profile.ErrNotRegistered
	}
	if !slices.Contains(s.modes, mode) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	s.cancelModeReset()
	s.mode = mode
	s.bridge.Haptic(ctx, model.ImpactLight)
	return nil
}

// VerifyGame asks the host to verify the last game in the selected mode.
// The selection is cleared shortly after.
func (s *Session) VerifyGame(ctx context.Context) error {
	if s.mode == "" {
		s.bridge.Alert(ctx, alertChooseMode)
		return ErrNoModeSelected
	}
	if !s.profile.Registered {
		s.bridge.Alert(ctx, alertRegisterFirst)
		return profile.ErrNotRegistered
	}
	if err := s.bridge.Send(ctx, model.NewVerifyRequest(s.mode, s.profile.UserID)); err != nil {
		return err
	}
	s.bridge.Haptic(ctx, model.ImpactMedium)
	s.bridge.Alert(ctx, alertVerifyGame)

	s.cancelModeReset()
	s.modeToken = s.sched.AfterFunc(s.modeReset, func() {
		s.mode = ""
		s.modeToken = nil
	})
	return nil
}

func (s *Session) cancelModeReset() {
	if s.modeToken != nil {
		s.modeToken.Cancel()
		s.modeToken = nil
	}
}

// StartSearch starts looking for an opponent.
func (s *Session) StartSearch(ctx context.Context) error {
	err := s.machine.StartSearch(ctx, s.profile.Registered)
	if errors.Is(err, match.ErrNotRegistered) {
		s.bridge.Alert(ctx, alertRegisterFirst)
	}
	return err
}

// CancelSearch abandons the running search.
func (s *Session) CancelSearch(ctx context.Context) error {
	return s.machine.CancelSearch(ctx)
}

// SubmitVerification asks the host to verify a game against the found opponent.
func (s *Session) SubmitVerification(ctx context.Context) error {
	err := s.machine.SubmitVerification(ctx, s.profile.UserID)
	if errors.Is(err, match.ErrOpponentMissing) {
		s.bridge.Alert(ctx, alertOpponentMissing)
	}
	return err
}

// ResetMatch returns the match machine to Idle.
func (s *Session) ResetMatch(ctx context.Context) {
	s.machine.Reset(ctx)
}

// RequestLeaderboard forwards a leaderboard request to the host.
func (s *Session) RequestLeaderboard(ctx context.Context) error {
	return s.bridge.Send(ctx, model.NewLeaderboardRequest(s.profile.UserID))
}

// ApplyVerifiedGame applies a game_verified event. It reports false without
// error for an event id that was already applied.
func (s *Session) ApplyVerifiedGame(ctx context.Context, ev model.InboundEvent) (bool, error) {
	if ev.EventID != "" && s.seen.SeenAndRecord(ev.EventID) {
		metrics.RecordDuplicateEvent()
		s.logger.Debug(ctx, "duplicate host event", logger.String("event_id", ev.EventID))
		return false, nil
	}
	applied, err := s.applyGame(ctx, ev.Data)
	if err != nil && ev.EventID != "" {
		s.seen.Unrecord(ev.EventID)
	}
	return applied, err
}

func (s *Session) applyGame(ctx context.Context, d model.GameVerifiedData) (bool, error) {
	var points int
	if d.Points != nil {
		points = *d.Points
	} else {
		p, err := s.scorer.Points(scoring.Input{Result: d.Result, Crowns: d.Crowns, Mode: d.Mode})
		if err != nil {
			return false, fmt.Errorf("%w: %w", profile.ErrInvalidGame, err)
		}
		points = p
	}

	game := profile.VerifiedGame{
		Result:         d.Result,
		Crowns:         d.Crowns,
		OpponentCrowns: d.OpponentCrowns,
		Mode:           d.Mode,
		Points:         points,
	}
	if err := s.profile.ApplyGame(game); err != nil {
		return false, err
	}

	s.history = append(s.history, model.HistoryEntry{
		ID:             uuid.NewString(),
		Result:         game.Result,
		Crowns:         game.Crowns,
		OpponentCrowns: game.OpponentCrowns,
		Mode:           game.Mode,
		Points:         game.Points,
		VerifiedAt:     s.sched.Now(),
	})
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = slices.Delete(s.history, 0, over)
	}

	metrics.RecordGameApplied(game.Result)
	s.bridge.Notify(ctx, model.NotificationSuccess)
	if err := s.resolver.Persist(ctx, s.slot, s.profile); err != nil && !errors.Is(err, profile.ErrNoCache) {
		s.logger.Error(ctx, "profile not persisted after game", logger.String("slot", s.slot), logger.Error(err))
	}
	s.logger.Info(ctx, "verified game applied",
		logger.String("result", game.Result),
		logger.Int("points", game.Points),
		logger.Int("total_points", s.profile.TotalPoints),
	)
	return true, nil
}

// Snapshot returns the session's current view.
func (s *Session) Snapshot() types.SessionView {
	v := types.SessionView{
		ID:           s.id,
		Authority:    s.authority.String(),
		Profile:      types.NewProfileView(s.profile),
		SelectedMode: s.mode,
		Match:        types.MatchView{State: s.machine.State().String()},
		History:      slices.Clone(s.history),
		Bridge:       types.BridgeView{Connected: s.bridge.Connected(), Pending: s.bridge.Pending()},
	}
	if v.History == nil {
		v.History = []model.HistoryEntry{}
	}
	if ms := s.machine.Snapshot(); ms != nil {
		started, deadline := ms.SearchStartedAt, ms.SearchDeadline
		v.Match.SearchStartedAt, v.Match.SearchDeadline = &started, &deadline
		if ms.Opponent != nil {
			info := ms.Opponent.Info()
			v.Match.Opponent = &info
		}
	}
	return v
}

// close runs on the actor before the mailbox shuts.
func (s *Session) close(ctx context.Context) {
	s.cancelModeReset()
	s.machine.Reset(ctx)
}
