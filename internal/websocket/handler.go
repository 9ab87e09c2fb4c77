package websocket

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"trendpulse/internal/infrastructure"
)

// HandlerConfig configures the upgrade endpoint
type HandlerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins lists accepted Origin headers. Requests without an
	// Origin are always accepted; "*" accepts every origin.
	AllowedOrigins []string
}

// NewHandler returns the HTTP handler that upgrades requests and attaches the
// resulting clients to hub.
func NewHandler(hub *Hub, cfg HandlerConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "websocket.handler"))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(cfg.AllowedOrigins, "*") || slices.Contains(cfg.AllowedOrigins, origin) {
				return true
			}
			logger.WarnContext(r.Context(), "origin not allowed",
				slog.String("origin", origin),
				slog.Any("allowed_origins", cfg.AllowedOrigins),
			)
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logger.WarnContext(r.Context(), "upgrade rejected",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
			)
			http.Error(w, http.StatusText(status), status)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader already replied
			return
		}

		client := NewClient(hub, gorillaConn{conn}, infrastructure.GetTraceID(r.Context()), logger)
		if !hub.Register(client) {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	})
}
