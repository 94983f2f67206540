// Package saves manages the character save slots.
package saves

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cultivation/internal/game"
	"cultivation/internal/session"
)

// DefaultMaxSlots is the number of save slots offered.
const DefaultMaxSlots = 5

var (
	ErrSlotsFull   = errors.New("all save slots are in use")
	ErrNotFound    = session.ErrNotFound
	ErrInvalidName = errors.New("invalid save name")
)

// SaveData is one save slot. The character is kept raw so older shapes are
// upgraded by the loader.
type SaveData struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Character    json.RawMessage `json:"character"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastPlayedAt time.Time       `json:"lastPlayedAt"`
	PlayTime     float64         `json:"playTime"`
	Summary      Summary         `json:"summary"`
}

// Summary is shown in the slot list without loading the character.
type Summary struct {
	CharacterName string `json:"characterName"`
	QiRealm       string `json:"qiRealm"`
	BodyRealm     string `json:"bodyRealm"`
	Power         int    `json:"power"`
}

type Manager struct {
	Store    session.Store[SaveData]
	Engine   *game.Engine
	MaxSlots int
	Now      func() time.Time
}

func NewManager(store session.Store[SaveData], engine *game.Engine) *Manager {
	return &Manager{Store: store, Engine: engine, MaxSlots: DefaultMaxSlots, Now: time.Now}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 60 {
		return "", ErrInvalidName
	}
	return name, nil
}

func (m *Manager) summarize(c *game.Character) Summary {
	s := Summary{CharacterName: c.Name, Power: game.TotalPower(c)}
	if pos, ok := m.Engine.Content.Ladder(game.LadderQi).Locate(c.Cultivation.Qi.Level); ok {
		s.QiRealm = pos.Title()
	}
	if pos, ok := m.Engine.Content.Ladder(game.LadderBody).Locate(c.Cultivation.Body.Level); ok {
		s.BodyRealm = pos.Title()
	}
	return s
}

// List returns every slot, most recently played first.
func (m *Manager) List(ctx context.Context) ([]SaveData, error) {
	all, err := m.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastPlayedAt.After(all[j].LastPlayedAt)
	})
	return all, nil
}

func (m *Manager) ensureFreeSlot(ctx context.Context) error {
	all, err := m.Store.List(ctx)
	if err != nil {
		return err
	}
	if len(all) >= m.MaxSlots {
		return ErrSlotsFull
	}
	return nil
}

// Create stores a character in a new slot.
func (m *Manager) Create(ctx context.Context, name string, c *game.Character) (SaveData, error) {
	if name == "" {
		name = c.Name
	}
	name, err := cleanName(name)
	if err != nil {
		return SaveData{}, err
	}
	if err := m.ensureFreeSlot(ctx); err != nil {
		return SaveData{}, err
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return SaveData{}, fmt.Errorf("encode character: %w", err)
	}
	now := m.Now()
	save := SaveData{
		ID:           m.Store.NewID(),
		Name:         name,
		Character:    raw,
		CreatedAt:    now,
		LastPlayedAt: now,
		PlayTime:     c.Stats.PlayTime,
		Summary:      m.summarize(c),
	}
	if err := m.Store.Put(ctx, save.ID, save); err != nil {
		return SaveData{}, err
	}
	return save, nil
}

// Save overwrites the character of an existing slot.
func (m *Manager) Save(ctx context.Context, id string, c *game.Character) error {
	save, ok, err := m.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode character: %w", err)
	}
	save.Character = raw
	save.LastPlayedAt = m.Now()
	save.PlayTime = c.Stats.PlayTime
	save.Summary = m.summarize(c)
	return m.Store.Put(ctx, id, save)
}

// Load returns the slot's character, upgraded to the current shape.
func (m *Manager) Load(ctx context.Context, id string) (*game.Character, SaveData, error) {
	save, ok, err := m.Store.Get(ctx, id)
	if err != nil {
		return nil, SaveData{}, err
	}
	if !ok {
		return nil, SaveData{}, ErrNotFound
	}
	c, err := m.Engine.LoadCharacter(save.Character)
	if err != nil {
		return nil, SaveData{}, fmt.Errorf("load %s: %w", id, err)
	}
	return c, save, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.Store.Delete(ctx, id)
}

func (m *Manager) Rename(ctx context.Context, id, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	save, ok, err := m.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	save.Name = name
	return m.Store.Put(ctx, id, save)
}

// Export packs a slot into a compressed archive.
func (m *Manager) Export(ctx context.Context, id string) ([]byte, error) {
	save, ok, err := m.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return writeArchive(ArchiveHeader{Version: archiveVersion, SaveID: id, ExportedAt: m.Now()}, save)
}

// Import validates an archive and stores it in a new slot. Nothing is written
// unless the archive and its character validate.
func (m *Manager) Import(ctx context.Context, data []byte) (SaveData, error) {
	_, save, err := readArchive(data)
	if err != nil {
		return SaveData{}, err
	}
	name, err := cleanName(save.Name)
	if err != nil {
		return SaveData{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	c, err := m.Engine.LoadCharacter(save.Character)
	if err != nil {
		return SaveData{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if err := m.ensureFreeSlot(ctx); err != nil {
		return SaveData{}, err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return SaveData{}, fmt.Errorf("encode character: %w", err)
	}
	imported := SaveData{
		ID:           m.Store.NewID(),
		Name:         name,
		Character:    raw,
		CreatedAt:    save.CreatedAt,
		LastPlayedAt: m.Now(),
		PlayTime:     c.Stats.PlayTime,
		Summary:      m.summarize(c),
	}
	if imported.CreatedAt.IsZero() {
		imported.CreatedAt = imported.LastPlayedAt
	}
	if err := m.Store.Put(ctx, imported.ID, imported); err != nil {
		return SaveData{}, err
	}
	return imported, nil
}
