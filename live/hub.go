// Package live streams match state changes to websocket subscribers.
// Each match is a room; the webhook processor broadcasts into the room
// as events arrive from the game server.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types broadcast to match rooms.
const (
	MessageMatchLive     = "MATCH_LIVE"
	MessageMapStarted    = "MAP_STARTED"
	MessageScoreUpdated  = "SCORE_UPDATED"
	MessageMapFinished   = "MAP_FINISHED"
	MessageMatchFinished = "MATCH_FINISHED"
	MessagePlayerStats   = "PLAYER_STATS"
)

type Message struct {
	Type    string      `json:"type"`
	MatchID string      `json:"match_id"`
	Payload interface{} `json:"payload"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	isClosed bool
	mu       sync.Mutex
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			slog.Debug("live client registered",
				slog.String("room", client.Room),
				slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToMatch sends a typed message to every client watching the
// match. Clients whose send buffer is full are skipped.
func (h *Hub) BroadcastToMatch(matchID string, messageType string, payload interface{}) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[matchID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(Message{
		Type:    messageType,
		MatchID: matchID,
		Payload: payload,
	})
	if err != nil {
		slog.Error("failed to marshal live message", slog.Any("error", err))
		return
	}

	for client := range clients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			slog.Debug("live client send buffer full, skipping",
				slog.String("room", matchID))
		}
		client.mu.Unlock()
	}
}

// ReadPump drains (and ignores) inbound frames so pings and close
// handshakes are processed.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("live client read error", slog.Any("error", err))
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush anything else already queued.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
