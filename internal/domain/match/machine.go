// Package match implements the match-search state machine:
// Idle -> Searching -> Found -> Verifying -> Idle.
package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

const (
	defaultSearchMin  = 3000 * time.Millisecond
	defaultSearchMax  = 7000 * time.Millisecond
	defaultResetDelay = 2000 * time.Millisecond

	verifyAlert = "Play against your opponent, then use /verify in the bot"
)

// Machine drives one player's search cycle. It is not safe for concurrent
// use; all calls and scheduler callbacks must come from one goroutine.
type Machine struct {
	sched     Scheduler
	bridge    Bridge
	rng       *rand.Rand
	generate  Generator
	logger    logger.Logger
	listeners []func(Transition)

	searchMin  time.Duration
	searchMax  time.Duration
	resetDelay time.Duration

	state   State
	session *Session
	pending Token
	// gen changes whenever pending is replaced or revoked; a callback only
	// acts if the generation it was scheduled under is still current.
	gen uint64
}

// NewMachine creates a Machine in Idle.
func NewMachine(sched Scheduler, opts ...Option) *Machine {
	m := &Machine{
		sched:      sched,
		bridge:     nopBridge{},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // gameplay randomness
		generate:   GenerateOpponent,
		logger:     logger.Discard(),
		searchMin:  defaultSearchMin,
		searchMax:  defaultSearchMax,
		resetDelay: defaultResetDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Snapshot returns a copy of the current session, or nil in Idle.
func (m *Machine) Snapshot() *Session {
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Opponent returns the found opponent, if any.
func (m *Machine) Opponent() *Opponent {
	if m.session == nil {
		return nil
	}
	return m.session.Opponent
}

// StartSearch begins searching for an opponent.
func (m *Machine) StartSearch(ctx context.Context, registered bool) error {
	if m.state != Idle {
		return m.fail(fmt.Errorf("%w: start search from %s", ErrInvalidState, m.state))
	}
	if !registered {
		return m.fail(ErrNotRegistered)
	}

	now := m.sched.Now()
	wait := m.searchMin + time.Duration(m.rng.Int63n(int64(m.searchMax-m.searchMin)))
	m.session = &Session{
		State:           Searching,
		SearchStartedAt: now,
		SearchDeadline:  now.Add(wait),
	}
	m.transition(ctx, Searching)
	m.bridge.Haptic(ctx, model.ImpactMedium)

	bg := context.WithoutCancel(ctx)
	m.schedule(wait, func() { m.complete(bg, wait) })
	m.logger.Debug(ctx, "search started", logger.Duration("wait", wait))
	return nil
}

// CancelSearch abandons a running search.
func (m *Machine) CancelSearch(ctx context.Context) error {
	if m.state != Searching {
		return m.fail(fmt.Errorf("%w: cancel search from %s", ErrInvalidState, m.state))
	}
	m.revoke()
	m.session = nil
	m.transition(ctx, Idle)
	m.bridge.Haptic(ctx, model.ImpactSoft)
	return nil
}

// SubmitVerification asks the host to verify a game against the found
// opponent. If the bridge refuses the message the machine stays in Found.
func (m *Machine) SubmitVerification(ctx context.Context, userID string) error {
	if m.state != Found {
		return m.fail(fmt.Errorf("%w: submit verification from %s", ErrInvalidState, m.state))
	}
	opp := m.Opponent()
	if opp == nil {
		m.logger.Error(ctx, "found state without opponent")
		return m.fail(ErrOpponentMissing)
	}

	msg := model.NewVerifyMatchRequest(opp.Info(), userID)
	if err := msg.Validate(); err != nil {
		return m.fail(err)
	}
	if err := m.bridge.Send(ctx, msg); err != nil {
		return m.fail(fmt.Errorf("send verify_match: %w", err))
	}

	m.transition(ctx, Verifying)
	m.bridge.Haptic(ctx, model.ImpactMedium)
	m.bridge.Alert(ctx, verifyAlert)
	bg := context.WithoutCancel(ctx)
	m.schedule(m.resetDelay, func() { m.autoReset(bg) })
	return nil
}

// Reset returns to Idle from any state, revoking pending callbacks.
func (m *Machine) Reset(ctx context.Context) {
	m.revoke()
	m.session = nil
	if m.state != Idle {
		m.transition(ctx, Idle)
	}
}

func (m *Machine) complete(ctx context.Context, waited time.Duration) {
	if m.state != Searching {
		return
	}
	m.pending = nil
	opp := m.generate(m.rng)
	m.session.Opponent = &opp
	metrics.RecordSearchWait(float64(waited.Milliseconds()))
	m.transition(ctx, Found)
	m.bridge.Notify(ctx, model.NotificationSuccess)
}

func (m *Machine) autoReset(ctx context.Context) {
	if m.state != Verifying {
		return
	}
	m.pending = nil
	m.Reset(ctx)
}

// schedule replaces the pending callback with fn. The callback is dropped if
// the generation moved on before it ran.
func (m *Machine) schedule(d time.Duration, fn func()) {
	m.revoke()
	gen := m.gen
	m.pending = m.sched.AfterFunc(d, func() {
		if m.gen != gen {
			return
		}
		fn()
	})
}

func (m *Machine) revoke() {
	m.gen++
	if m.pending != nil {
		m.pending.Cancel()
		m.pending = nil
	}
}

func (m *Machine) transition(ctx context.Context, to State) {
	from := m.state
	m.state = to
	if m.session != nil {
		m.session.State = to
	}
	t := Transition{From: from, To: to, At: m.sched.Now(), Opponent: m.Opponent()}
	metrics.RecordMatchTransition(from.String(), to.String())
	m.logger.Debug(ctx, "match transition", logger.String("from", from.String()), logger.String("to", to.String()))
	for _, fn := range m.listeners {
		fn(t)
	}
}

func (m *Machine) fail(err error) error {
	metrics.RecordMatchError(errorKind(err))
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, ErrOpponentMissing):
		return "opponent_missing"
	case errors.Is(err, model.ErrMalformed):
		return "malformed"
	default:
		return "bridge"
	}
}
