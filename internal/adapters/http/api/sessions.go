package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	service "github.com/okian/ladder/internal/app"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
)

// createSessionRequest is the body of POST /sessions. Query is the raw
// launch query string, e.g. "registered=1&points=40".
type createSessionRequest struct {
	Fragment string `json:"fragment"`
	InitData string `json:"init_data"`
	Query    string `json:"query"`
}

type selectModeRequest struct {
	Mode string `json:"mode"`
}

// SessionsHandler serves session lifecycle and the user actions.
type SessionsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies, l logger.Logger) *SessionsHandler {
	return &SessionsHandler{deps: deps, logger: l.Named("sessions")}
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	query, err := url.ParseQuery(req.Query)
	if err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.CreateSession(r.Context(), service.Launch{
		Fragment: req.Fragment,
		InitData: req.InitData,
		Query:    query,
	})
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleSnapshot handles GET /sessions/{id}.
func (h *SessionsHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap("api.get_session", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSelectMode handles POST /sessions/{id}/mode.
func (h *SessionsHandler) HandleSelectMode(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_mode"
	var req selectModeRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	h.act(w, r, op, func(ctx context.Context, sess *service.Session) error {
		return sess.SelectMode(ctx, req.Mode)
	})
}

// HandleVerifyGame handles POST /sessions/{id}/verify.
func (h *SessionsHandler) HandleVerifyGame(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.verify_game", func(ctx context.Context, sess *service.Session) error {
		return sess.VerifyGame(ctx)
	})
}

// HandleStartSearch handles POST /sessions/{id}/search.
func (h *SessionsHandler) HandleStartSearch(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.start_search", func(ctx context.Context, sess *service.Session) error {
		return sess.StartSearch(ctx)
	})
}

// HandleCancelSearch handles DELETE /sessions/{id}/search.
func (h *SessionsHandler) HandleCancelSearch(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.cancel_search", func(ctx context.Context, sess *service.Session) error {
		return sess.CancelSearch(ctx)
	})
}

// HandleSubmitVerification handles POST /sessions/{id}/match/verify.
func (h *SessionsHandler) HandleSubmitVerification(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.submit_verification", func(ctx context.Context, sess *service.Session) error {
		return sess.SubmitVerification(ctx)
	})
}

// HandleResetMatch handles POST /sessions/{id}/match/reset.
func (h *SessionsHandler) HandleResetMatch(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.reset_match", func(ctx context.Context, sess *service.Session) error {
		sess.ResetMatch(ctx)
		return nil
	})
}

// HandleLeaderboard handles POST /sessions/{id}/leaderboard.
func (h *SessionsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "api.request_leaderboard", func(ctx context.Context, sess *service.Session) error {
		return sess.RequestLeaderboard(ctx)
	})
}

// act runs fn on the session's actor and answers with the resulting view.
func (h *SessionsHandler) act(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *service.Session) error) {
	var view types.SessionView
	err := h.deps.Do(r.Context(), mux.Vars(r)["id"], func(ctx context.Context, sess *service.Session) error {
		if err := fn(ctx, sess); err != nil {
			return err
		}
		view = sess.Snapshot()
		return nil
	})
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
