package web

import (
	"encoding/json"
	"log/slog"
	"sync"

	"cultivation/internal/game"
)

// Notice is the message pushed to a game's websocket clients.
type Notice struct {
	Type   string       `json:"type"`
	GameID string       `json:"gameId"`
	Events []game.Event `json:"events"`
}

// Hub fans game notifications out to the websocket clients watching each game.
type Hub struct {
	games      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.games {
				for c := range clients {
					c.Close()
				}
			}
			h.games = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				if h.games[c.gameID] == nil {
					h.games[c.gameID] = make(map[*Client]bool)
				}
				h.games[c.gameID][c] = true
			}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.games[c.gameID]; ok && clients[c] {
				delete(clients, c)
				if len(clients) == 0 {
					delete(h.games, c.gameID)
				}
				c.Close()
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has returned.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Watchers returns how many clients follow a game.
func (h *Hub) Watchers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Publish sends events to every client of the game. Slow clients miss
// messages rather than blocking the game.
func (h *Hub) Publish(gameID string, events []game.Event) {
	msg, err := json.Marshal(Notice{Type: "events", GameID: gameID, Events: events})
	if err != nil {
		slog.Error("encode notice", "game", gameID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- msg:
		default:
			slog.Warn("websocket client lagging, notice dropped", "game", gameID)
		}
	}
}
