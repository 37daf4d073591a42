package profile

import (
	"context"
	"fmt"

	"github.com/okian/ladder/pkg/logger"
	"github.com/okian/ladder/pkg/metrics"
)

// DefaultSlot is the cache slot used when no identity is known before loading.
const DefaultSlot = "userData"

// PayloadDecoder turns the launch URL fragment into a payload source.
// A fragment without a payload yields an absent source and no error.
type PayloadDecoder interface {
	Decode(fragment string) (Source, error)
}

// HandshakeParser turns the host's init data into a handshake source.
type HandshakeParser interface {
	Parse(initData string) (Source, error)
}

// Cache reads and overwrites one named profile record.
type Cache interface {
	Load(ctx context.Context, slot string) (Source, error)
	Save(ctx context.Context, slot string, p UserProfile) error
}

// Inputs are the raw launch inputs of one session.
type Inputs struct {
	Fragment string
	InitData string
	// Launch is already typed; query parsing cannot fail.
	Launch Source
}

// Outcome is a resolution plus what the resolver did with the cache.
type Outcome struct {
	Resolution
	Slot      string
	Persisted bool
}

// Resolver runs the startup resolution against real adapters.
type Resolver struct {
	decoder   PayloadDecoder
	handshake HandshakeParser
	cache     Cache
	slot      string
	logger    logger.Logger
}

// NewResolver creates a Resolver. Missing adapters are treated as always-absent sources.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{slot: DefaultSlot}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Discard()
	}
	return r
}

// Resolve produces the session profile. Source failures are logged and the
// source is treated as absent; a failed write-back is logged and reported in
// Outcome.Persisted. It never fails.
func (r *Resolver) Resolve(ctx context.Context, in Inputs) Outcome {
	src := Sources{
		Payload:   Absent(KindPayload),
		Handshake: Absent(KindHandshake),
		Launch:    in.Launch,
		Cache:     Absent(KindCache),
	}
	src.Launch.Kind = KindLaunch

	if r.decoder != nil {
		s, err := r.decoder.Decode(in.Fragment)
		if err != nil {
			r.logger.Warn(ctx, "cross-session payload dropped", logger.Error(err))
			metrics.RecordSourceFailure(KindPayload.String(), "decode")
		} else {
			src.Payload = s
		}
	}
	if r.handshake != nil && in.InitData != "" {
		s, err := r.handshake.Parse(in.InitData)
		if err != nil {
			r.logger.Warn(ctx, "host handshake dropped", logger.Error(err))
			metrics.RecordSourceFailure(KindHandshake.String(), "parse")
		} else {
			src.Handshake = s
		}
	}
	src.Payload.Kind, src.Handshake.Kind = KindPayload, KindHandshake

	slot := SlotFor(r.slot, identityHint(src))
	var cached *UserProfile
	if r.cache != nil {
		s, err := r.cache.Load(ctx, slot)
		switch {
		case err != nil:
			r.logger.Warn(ctx, "cached profile dropped", logger.String("slot", slot), logger.Error(err))
			metrics.RecordSourceFailure(KindCache.String(), "corrupt")
		case s.Present:
			s.Kind = KindCache
			src.Cache = s
			p := Resolve(Sources{Cache: s}).Profile
			cached = &p
		}
	}

	res := Resolve(src)
	metrics.RecordProfileResolved(res.Authority.String())
	r.logger.Info(ctx, "profile resolved",
		logger.String("authority", res.Authority.String()),
		logger.Bool("registered", res.Profile.Registered),
		logger.String("slot", slot),
	)

	out := Outcome{Resolution: res, Slot: slot}
	if r.cache == nil || !res.Profile.Registered || (cached != nil && *cached == res.Profile) {
		return out
	}
	if err := r.cache.Save(ctx, slot, res.Profile); err != nil {
		r.logger.Error(ctx, "profile write-back failed", logger.String("slot", slot), logger.Error(err))
		return out
	}
	metrics.RecordProfileWriteback()
	out.Persisted = true
	return out
}

// SlotFor scopes the base slot to a user when one is known.
func SlotFor(base, userID string) string {
	if base == "" {
		base = DefaultSlot
	}
	if userID == "" {
		return base
	}
	return base + ":" + userID
}

// identityHint picks the user id the cache slot is keyed by, using only the
// sources available before the cache is read.
func identityHint(src Sources) string {
	for _, s := range []Source{src.Payload, src.Handshake, src.Launch} {
		if !s.Present {
			continue
		}
		if v, ok := s.UserID.Get(); ok && v != "" {
			return v
		}
	}
	return ""
}

// Persist overwrites slot with p, e.g. after stats changed.
func (r *Resolver) Persist(ctx context.Context, slot string, p UserProfile) error {
	if r.cache == nil {
		return ErrNoCache
	}
	if err := r.cache.Save(ctx, slot, p); err != nil {
		return fmt.Errorf("persist profile to %q: %w", slot, err)
	}
	metrics.RecordProfileWriteback()
	return nil
}
