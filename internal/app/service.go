// Package service hosts mini-app sessions: it resolves each session's
// profile, owns the per-session actors and evicts idle sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/okian/ladder/internal/adapters/bridge"
	"github.com/okian/ladder/internal/adapters/launch"
	"github.com/okian/ladder/internal/adapters/mq/queue"
	"github.com/okian/ladder/internal/adapters/mq/worker"
	"github.com/okian/ladder/internal/adapters/repository"
	"github.com/okian/ladder/internal/adapters/timer"
	"github.com/okian/ladder/internal/domain/dedupe"
	"github.com/okian/ladder/internal/domain/match"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/profile"
	"github.com/okian/ladder/internal/domain/scoring"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

// DefaultModes are the selectable game modes.
var DefaultModes = []string{"ladder", "1v1", "2v2", "challenge", "tournament"}

const systemMetricsInterval = 5 * time.Second

// Launch is the raw input of a mini-app launch.
type Launch struct {
	Fragment string
	InitData string
	Query    map[string][]string
}

// Service implements the API dependencies for sessions.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store     repository.Store
	slot      string
	decoder   *launch.Decoder
	handshake *launch.Handshake
	resolver  *profile.Resolver
	scorer    scoring.Scorer
	clock     clockwork.Clock
	cron      gocron.Scheduler

	modes         []string
	mailboxSize   int
	outboxSize    int
	historyLimit  int
	dedupeSize    int
	searchMin     time.Duration
	searchMax     time.Duration
	verifyReset   time.Duration
	sessionTTL    time.Duration
	sweepInterval time.Duration

	started bool
	ctx     context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Call Start before creating sessions.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:      make(map[string]*Session),
		slot:          profile.DefaultSlot,
		decoder:       launch.NewDecoder(),
		handshake:     launch.NewHandshake(),
		scorer:        scoring.NewCalculator(),
		clock:         clockwork.NewRealClock(),
		modes:         DefaultModes,
		mailboxSize:   64,
		outboxSize:    32,
		historyLimit:  50,
		dedupeSize:    256,
		searchMin:     3000 * time.Millisecond,
		searchMax:     7000 * time.Millisecond,
		verifyReset:   2000 * time.Millisecond,
		sessionTTL:    30 * time.Minute,
		sweepInterval: time.Minute,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.resolver = profile.NewResolver(
		profile.WithDecoder(s.decoder),
		profile.WithHandshakeParser(s.handshake),
		profile.WithCache(s.store),
		profile.WithSlot(s.slot),
		profile.WithLogger(s.logger.Named("resolver")),
	)
	return s
}

// Start starts the idle-session sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	cron, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := cron.NewJob(
		gocron.DurationJob(s.sweepInterval),
		gocron.NewTask(func() { s.Sweep(context.Background()) }),
		gocron.WithName("session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	if _, err := cron.NewJob(
		gocron.DurationJob(systemMetricsInterval),
		gocron.NewTask(updateSystemMetrics),
		gocron.WithName("system-metrics"),
	); err != nil {
		return fmt.Errorf("schedule system metrics: %w", err)
	}
	cron.Start()

	s.cron = cron
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.Duration("session_ttl", s.sessionTTL),
		logger.Duration("sweep_interval", s.sweepInterval),
		logger.Int("mailbox_size", s.mailboxSize),
	)
	return nil
}

// Stop closes every session and the sweeper.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	cron := s.cron
	s.mu.Unlock()

	ctx := context.Background()
	if err := cron.Shutdown(); err != nil {
		s.logger.Warn(ctx, "scheduler shutdown", logger.Error(err))
	}
	for _, sess := range sessions {
		s.closeSession(ctx, sess)
	}
	for _, sess := range sessions {
		<-sess.actor.Done()
	}
	s.cancel()
	metrics.UpdateSessionsActive(0)
	s.logger.Info(ctx, "session service stopped", logger.Int("sessions_closed", len(sessions)))
}

// CreateSession resolves the launch profile and starts a session actor.
func (s *Service) CreateSession(ctx context.Context, in Launch) (types.SessionView, error) {
	s.mu.RLock()
	started, runCtx := s.started, s.ctx
	s.mu.RUnlock()
	if !started {
		return types.SessionView{}, ErrNotStarted
	}

	out := s.resolver.Resolve(ctx, profile.Inputs{
		Fragment: in.Fragment,
		InitData: in.InitData,
		Launch:   launch.ParseLaunchParams(in.Query),
	})

	id := uuid.NewString()
	log := s.logger.Named("session").With(logger.String("session_id", id))
	mailbox := queue.New(queue.WithCapacity(s.mailboxSize), queue.WithName("session-"+id))
	sched := timer.NewClock(mailbox.Post, timer.WithClock(s.clock), timer.WithLogger(log))
	br := bridge.New(
		bridge.WithOutboxSize(s.outboxSize),
		bridge.WithLogger(log),
		bridge.WithInbound(func(ctx context.Context, raw []byte) {
			if _, err := s.HandleHostEvent(ctx, id, raw); err != nil {
				log.Warn(ctx, "host event rejected", logger.Error(err))
			}
		}),
	)
	machine := match.NewMachine(sched,
		match.WithBridge(br),
		match.WithRand(rand.New(rand.NewSource(s.clock.Now().UnixNano()))), //nolint:gosec // gameplay randomness
		match.WithSearchWindow(s.searchMin, s.searchMax),
		match.WithResetDelay(s.verifyReset),
		match.WithLogger(log),
	)

	sess := &Session{
		id:           id,
		slot:         out.Slot,
		authority:    out.Authority,
		profile:      out.Profile,
		machine:      machine,
		sched:        sched,
		bridge:       br,
		mailbox:      mailbox,
		actor:        worker.New(mailbox, worker.WithName("session"), worker.WithLogger(log)),
		seen:         dedupe.New(dedupe.WithMaxSize(s.dedupeSize)),
		resolver:     s.resolver,
		scorer:       s.scorer,
		modes:        s.modes,
		modeReset:    s.verifyReset,
		historyLimit: s.historyLimit,
		logger:       log,
	}
	sess.touch(s.clock.Now())
	view := sess.Snapshot()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return types.SessionView{}, ErrNotStarted
	}
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	go sess.actor.Run(runCtx)
	metrics.UpdateSessionsActive(count)
	log.Info(ctx, "session created",
		logger.String("authority", out.Authority.String()),
		logger.Bool("registered", out.Profile.Registered),
		logger.Bool("persisted", out.Persisted),
	)
	return view, nil
}

// Session returns the session with id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Do runs fn on the session's actor and waits for it. A full mailbox is ErrBusy.
// When ctx ends before the actor reaches the call, fn never runs and ctx.Err()
// is returned; once fn has started its result is returned.
func (s *Service) Do(ctx context.Context, id string, fn func(ctx context.Context, sess *Session) error) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	sess.touch(s.clock.Now())

	var claimed atomic.Bool
	errc := make(chan error, 1)
	err = sess.mailbox.Enqueue(ctx, queue.Task{
		Name: "call",
		Run: func(context.Context) {
			if ctx.Err() != nil || !claimed.CompareAndSwap(false, true) {
				return
			}
			errc <- fn(ctx, sess)
		},
	})
	switch {
	case errors.Is(err, queue.ErrFull):
		return fmt.Errorf("%w: %s", ErrBusy, id)
	case errors.Is(err, queue.ErrClosed):
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	case err != nil:
		return err
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
		return <-errc
	}
}

// Snapshot returns the current view of a session.
func (s *Service) Snapshot(ctx context.Context, id string) (types.SessionView, error) {
	var v types.SessionView
	err := s.Do(ctx, id, func(_ context.Context, sess *Session) error {
		v = sess.Snapshot()
		return nil
	})
	return v, err
}

// HandleHostEvent parses and applies an inbound host event. It reports
// false for a duplicate.
func (s *Service) HandleHostEvent(ctx context.Context, id string, raw []byte) (bool, error) {
	ev, err := model.ParseInbound(raw)
	if err != nil {
		return false, err
	}
	var applied bool
	err = s.Do(ctx, id, func(ctx context.Context, sess *Session) error {
		var err error
		applied, err = sess.ApplyVerifiedGame(ctx, ev)
		return err
	})
	return applied, err
}

// Sweep evicts sessions idle for longer than the session TTL.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.clock.Now().Add(-s.sessionTTL)

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range idle {
		s.closeSession(ctx, sess)
		metrics.RecordSessionEvicted()
		sess.logger.Info(ctx, "session evicted")
	}
	metrics.UpdateSessionsActive(count)
	return len(idle)
}

// closeSession resets the session on its actor, then closes the mailbox so
// the actor drains and exits.
func (s *Service) closeSession(ctx context.Context, sess *Session) {
	if err := sess.mailbox.Enqueue(ctx, queue.Task{Name: "close", Run: sess.close}); err != nil {
		sess.logger.Warn(ctx, "session closed without reset", logger.Error(err))
	}
	_ = sess.mailbox.Close()
	_ = sess.bridge.Close()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"sessions":     len(s.sessions),
		"mailboxSize":  s.mailboxSize,
		"outboxSize":   s.outboxSize,
		"sessionTTL":   s.sessionTTL.String(),
		"modes":        s.modes,
		"storeEnabled": s.store != nil,
	}

	queued, connected := 0, 0
	for _, sess := range s.sessions {
		queued += sess.mailbox.Len()
		if sess.bridge.Connected() {
			connected++
		}
	}
	stats["queuedTasks"] = queued
	stats["connectedHosts"] = connected
	return stats
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// AttachHost binds a host connection to the session's bridge, replacing any
// earlier one. Frames queued while no host was attached are flushed to it.
func (s *Service) AttachHost(ctx context.Context, id string, conn *websocket.Conn) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	sess.touch(s.clock.Now())
	return sess.bridge.Attach(ctx, conn)
}
