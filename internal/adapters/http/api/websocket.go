package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/okian/ladder/pkg/logger"
)

// BridgeHandler upgrades host connections and hands them to the session.
type BridgeHandler struct {
	deps     Dependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewBridgeHandler creates a new bridge handler. A nil checkOrigin keeps
// gorilla's same-origin check.
func NewBridgeHandler(deps Dependencies, checkOrigin func(r *http.Request) bool, l logger.Logger) *BridgeHandler {
	return &BridgeHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger: l.Named("bridge"),
	}
}

// HandleUpgrade handles GET /sessions/{id}/bridge.
func (h *BridgeHandler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.bridge"
	id := mux.Vars(r)["id"]

	// Refuse unknown sessions before switching protocols.
	if _, err := h.deps.Snapshot(r.Context(), id); err != nil {
		fail(r.Context(), w, h.logger, Wrap(op, err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.String("session_id", id), logger.Error(WrapKind(op, ErrUpgrade, err)))
		return
	}
	if err := h.deps.AttachHost(r.Context(), id, conn); err != nil {
		h.logger.Warn(r.Context(), "host attach failed", logger.String("session_id", id), logger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"), time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
