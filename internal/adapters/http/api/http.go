// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/ladder/internal/adapters/bridge"
	"github.com/okian/ladder/internal/adapters/launch"
	service "github.com/okian/ladder/internal/app"
	"github.com/okian/ladder/internal/domain/match"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/profile"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session service.
type Dependencies interface {
	CreateSession(ctx context.Context, in service.Launch) (types.SessionView, error)
	Snapshot(ctx context.Context, id string) (types.SessionView, error)

	// Do runs fn on the session's actor.
	Do(ctx context.Context, id string, fn func(ctx context.Context, sess *service.Session) error) error

	// HandleHostEvent applies an inbound host event; false means duplicate.
	HandleHostEvent(ctx context.Context, id string, raw []byte) (bool, error)

	AttachHost(ctx context.Context, id string, conn *websocket.Conn) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	eventsHandler   *EventsHandler
	bridgeHandler   *BridgeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps, o.logger),
		eventsHandler:   NewEventsHandler(deps, o.logger),
		bridgeHandler:   NewBridgeHandler(deps, o.checkOrigin, o.logger),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions.create")).Methods(http.MethodPost)

	r.HandleFunc("/sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleSnapshot, "sessions.get")).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/mode", MetricsMiddleware(s.sessionsHandler.HandleSelectMode, "sessions.mode")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/verify", MetricsMiddleware(s.sessionsHandler.HandleVerifyGame, "sessions.verify")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/search", MetricsMiddleware(s.sessionsHandler.HandleStartSearch, "sessions.search")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/search", MetricsMiddleware(s.sessionsHandler.HandleCancelSearch, "sessions.search_cancel")).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/match/verify", MetricsMiddleware(s.sessionsHandler.HandleSubmitVerification, "sessions.match_verify")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/match/reset", MetricsMiddleware(s.sessionsHandler.HandleResetMatch, "sessions.match_reset")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/leaderboard", MetricsMiddleware(s.sessionsHandler.HandleLeaderboard, "sessions.leaderboard")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "sessions.events")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/bridge", MetricsMiddleware(s.bridgeHandler.HandleUpgrade, "sessions.bridge")).Methods(http.MethodGet)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps a domain error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, match.ErrNotRegistered), errors.Is(err, profile.ErrNotRegistered):
		return http.StatusForbidden, "not_registered"
	case errors.Is(err, match.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, match.ErrOpponentMissing):
		return http.StatusConflict, "opponent_missing"
	case errors.Is(err, service.ErrNoModeSelected):
		return http.StatusConflict, "no_mode"
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, bridge.ErrClosed):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrMalformed),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, profile.ErrInvalidGame),
		errors.Is(err, launch.ErrDecode),
		errors.Is(err, launch.ErrHandshake):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBusy), errors.Is(err, bridge.ErrOutboxFull):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail writes err with the status its kind maps to. Server errors are logged.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}
