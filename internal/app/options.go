package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/ladder/internal/adapters/launch"
	"github.com/okian/ladder/internal/adapters/repository"
	"github.com/okian/ladder/internal/domain/scoring"
	"github.com/okian/ladder/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the profile cache.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithSlot sets the base cache slot.
func WithSlot(slot string) Option {
	return func(s *Service) {
		if slot != "" {
			s.slot = slot
		}
	}
}

// WithDecoder sets the fragment payload decoder.
func WithDecoder(d *launch.Decoder) Option {
	return func(s *Service) {
		if d != nil {
			s.decoder = d
		}
	}
}

// WithHandshake sets the host init data parser.
func WithHandshake(h *launch.Handshake) Option {
	return func(s *Service) {
		if h != nil {
			s.handshake = h
		}
	}
}

// WithScorer sets the fallback points calculator.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithModes sets the selectable game modes.
func WithModes(modes []string) Option {
	return func(s *Service) {
		if len(modes) > 0 {
			s.modes = modes
		}
	}
}

// WithMailboxSize bounds each session's mailbox.
func WithMailboxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.mailboxSize = n
		}
	}
}

// WithOutboxSize bounds each session's bridge outbox.
func WithOutboxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.outboxSize = n
		}
	}
}

// WithHistoryLimit bounds each session's game history.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithDedupeSize sets how many inbound event ids each session remembers.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithSearchWindow sets the range the search deadline is drawn from.
func WithSearchWindow(minWait, maxWait time.Duration) Option {
	return func(s *Service) {
		if minWait > 0 && maxWait > minWait {
			s.searchMin, s.searchMax = minWait, maxWait
		}
	}
}

// WithVerifyReset sets how long Verifying lasts and how long a selected
// mode survives VerifyGame.
func WithVerifyReset(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.verifyReset = d
		}
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithSweepInterval sets how often idle sessions are evicted.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithClock sets the clock used for timers, idle tracking and the sweeper.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
