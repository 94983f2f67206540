// Package live holds the games currently being played. Each game owns its
// session and serializes every mutation behind its lock.
package live

import (
	"sort"
	"sync"

	"cultivation/internal/game"
)

// MaxMessages is how many notifications a game keeps for display.
const MaxMessages = 50

type Game struct {
	ID string

	mu       sync.Mutex
	session  *game.Session
	messages []game.Event
	dirty    bool
	publish  func(id string, events []game.Event)
}

// Do runs fn with exclusive access to the session. Returned events are
// recorded and published, and the game is marked for saving.
func (g *Game) Do(fn func(s *game.Session) []game.Event) []game.Event {
	g.mu.Lock()
	events := fn(g.session)
	g.dirty = true
	g.record(events)
	publish := g.publish
	g.mu.Unlock()

	if publish != nil && len(events) > 0 {
		publish(g.ID, events)
	}
	return events
}

// View runs fn with exclusive access but without marking the game dirty.
func (g *Game) View(fn func(s *game.Session)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.session)
}

func (g *Game) record(events []game.Event) {
	g.messages = append(g.messages, events...)
	if over := len(g.messages) - MaxMessages; over > 0 {
		g.messages = append([]game.Event(nil), g.messages[over:]...)
	}
}

// Messages returns the most recent notifications, oldest first.
func (g *Game) Messages() []game.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]game.Event(nil), g.messages...)
}

// MarkDirty flags the game for the next save.
func (g *Game) MarkDirty() {
	g.mu.Lock()
	g.dirty = true
	g.mu.Unlock()
}

// TakeDirty reports whether the game changed since the last call.
func (g *Game) TakeDirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.dirty
	g.dirty = false
	return d
}

type Table struct {
	mu    sync.RWMutex
	games map[string]*Game

	// Publish receives every batch of events produced by a game.
	Publish func(id string, events []game.Event)
}

func NewTable() *Table {
	return &Table{games: map[string]*Game{}}
}

func (t *Table) Get(id string) (*Game, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.games[id]
	return g, ok
}

// Add registers a session under id, replacing any previous game.
func (t *Table) Add(id string, s *game.Session) *Game {
	g := &Game{ID: id, session: s, publish: t.Publish}
	t.mu.Lock()
	t.games[id] = g
	t.mu.Unlock()
	return g
}

// GetOrAdd returns the game registered under id, calling load to build its
// session only when none is. Concurrent callers for the same id all receive
// the same game.
func (t *Table) GetOrAdd(id string, load func() (*game.Session, error)) (*Game, error) {
	if g, ok := t.Get(id); ok {
		return g, nil
	}
	s, err := load()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.games[id]; ok {
		return g, nil
	}
	g := &Game{ID: id, session: s, publish: t.Publish}
	t.games[id] = g
	return g, nil
}

func (t *Table) Remove(id string) {
	t.mu.Lock()
	delete(t.games, id)
	t.mu.Unlock()
}

// All returns a snapshot of the live games ordered by id.
func (t *Table) All() []*Game {
	t.mu.RLock()
	out := make([]*Game, 0, len(t.games))
	for _, g := range t.games {
		out = append(out, g)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
