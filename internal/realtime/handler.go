package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mindweave/engine/internal/services"
	"github.com/mindweave/engine/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set headers on websocket handshakes; auth is carried
	// in the query string instead, and origins are not restricted here.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades a presence connection. The JWT is passed as a "token"
// query parameter because the handshake happens outside the authenticated
// API middleware chain.
func ServeWS(hub *Hub, auth services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := auth.VerifyToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.L().Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := newClient(hub, conn, userID)
		hub.register <- client
		go client.writePump()
		go client.readPump()
	}
}
