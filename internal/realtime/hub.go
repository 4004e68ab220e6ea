package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindweave/engine/internal/services"
	"github.com/mindweave/engine/pkg/logger"
)

// StatusUpdate is broadcast to connected clients when a user's presence
// changes. The originator does not receive their own update.
type StatusUpdate struct {
	Type     string    `json:"type"`
	UserID   uuid.UUID `json:"user_id"`
	IsOnline bool      `json:"is_online"`
}

// Hub tracks websocket clients and fans presence updates out to them.
// A user may hold several connections (multiple tabs); they count as online
// until the last one closes.
type Hub struct {
	users services.UserService

	register   chan *Client
	unregister chan *Client

	clients     map[*Client]bool
	connsByUser map[uuid.UUID]int
}

func NewHub(users services.UserService) *Hub {
	return &Hub{
		users:       users,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		connsByUser: make(map[uuid.UUID]int),
	}
}

// Run processes registrations until ctx is cancelled. All hub state is
// owned by this goroutine; clients communicate through channels only.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.connsByUser[c.userID]++
			if h.connsByUser[c.userID] == 1 {
				h.setOnline(c.userID, true)
				h.broadcastStatus(c, c.userID, true)
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			c.close()
			h.connsByUser[c.userID]--
			if h.connsByUser[c.userID] <= 0 {
				delete(h.connsByUser, c.userID)
				h.setOnline(c.userID, false)
				h.broadcastStatus(c, c.userID, false)
			}
		}
	}
}

func (h *Hub) setOnline(userID uuid.UUID, online bool) {
	if err := h.users.SetOnline(context.Background(), userID, online); err != nil {
		logger.L().Warn("persist presence failed",
			zap.String("user_id", userID.String()),
			zap.Bool("online", online),
			zap.Error(err),
		)
	}
}

func (h *Hub) broadcastStatus(origin *Client, userID uuid.UUID, online bool) {
	payload, err := json.Marshal(StatusUpdate{Type: "status_update", UserID: userID, IsOnline: online})
	if err != nil {
		return
	}
	for c := range h.clients {
		if c == origin {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer; close the connection rather than block the hub.
			// Its read pump exits and unregisters with full cleanup.
			c.close()
		}
	}
}
