package api

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/ladder/pkg/logger"
)

// EventsHandler accepts host events posted over HTTP. Events arriving on the
// websocket bridge take the same path inside the service.
type EventsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, l logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, logger: l.Named("events")}
}

// HandlePostEvent handles POST /sessions/{id}/events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		fail(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}

	applied, err := h.deps.HandleHostEvent(r.Context(), mux.Vars(r)["id"], raw)
	if err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	if !applied {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "applied"})
}
