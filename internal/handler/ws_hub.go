package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/auth"
)

// Event types sent over WebSocket.
const (
	EventConnected   = "connected"
	EventTick        = "tick"
	EventGameStarted = "game_started"
	EventGameEnded   = "game_ended"
)

// AllGames subscribes a connection to every game the agent plays, which is
// the usual case since game ids are only known once a game starts.
const AllGames = "*"

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	GameID string `json:"game_id"`
}

// WSConn wraps a WebSocket connection with its viewer and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	claims *auth.Claims
	send   chan []byte
}

func (c *WSConn) viewer() string {
	if c.claims == nil {
		return ""
	}
	return c.claims.Viewer
}

// Hub manages spectator connections and game-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	games       map[string]map[*WSConn]bool // gameID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		games:       make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	for gameID, conns := range h.games {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a game channel. It reports false when the
// connection's token does not cover gameID; scoped tokens cannot use AllGames.
func (h *Hub) Subscribe(c *WSConn, gameID string) bool {
	if c.claims != nil {
		if gameID == AllGames && len(c.claims.Games) > 0 {
			return false
		}
		if gameID != AllGames && !c.claims.CanWatch(gameID) {
			return false
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*WSConn]bool)
	}
	h.games[gameID][c] = true
	return true
}

// Unsubscribe removes a connection from a game channel.
func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.games[gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
}

// BroadcastToGame sends an event to all connections subscribed to the game
// or to AllGames. Each connection receives it at most once.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.games[gameID] {
		h.deliver(c, gameID, data)
	}
	if gameID == AllGames {
		return
	}
	for c := range h.games[AllGames] {
		if h.games[gameID][c] {
			continue
		}
		h.deliver(c, gameID, data)
	}
}

func (h *Hub) deliver(c *WSConn, gameID string, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("viewer", c.viewer()).Str("gameId", gameID).Msg("Dropping WebSocket message, buffer full")
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GameSubscriberCount returns the number of connections subscribed to a game.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
