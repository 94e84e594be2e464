package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	hub      *Hub
	upgrader *websocket.Upgrader
}

func NewHandler(hub *Hub, upgrader *websocket.Upgrader) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		hub:         hub,
		upgrader:    upgrader,
	}
}

// ServeWS handles GET /ws. The caller must already be authenticated.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, errors.ErrTokenInvalidOrExpired)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.From(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	client := h.hub.attach(conn, principal.UserID)
	go client.writePump()
	go client.readPump()
}
