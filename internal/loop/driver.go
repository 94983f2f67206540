package loop

import (
	"context"
	"log/slog"
	"time"

	"cultivation/internal/game"
	"cultivation/internal/live"
)

// Saver persists a character into its save slot.
type Saver interface {
	Save(ctx context.Context, id string, c *game.Character) error
}

// Driver advances every live game and saves the ones that changed.
type Driver struct {
	Engine *game.Engine
	Table  *live.Table
	Saves  Saver
}

// Attach wires the driver into a runner.
func (d *Driver) Attach(r *Runner) {
	r.OnTick = func(_ uint64, dt time.Duration) { d.Tick(dt) }
	r.OnAutosave = func(uint64) { d.Autosave(context.Background()) }
}

// Tick advances all visible games and completes finished explorations.
// Hidden games are left untouched until they come back.
func (d *Driver) Tick(dt time.Duration) {
	for _, g := range d.Table.All() {
		hidden := false
		g.View(func(s *game.Session) { hidden = s.Hidden() })
		if hidden {
			continue
		}
		g.Do(func(s *game.Session) []game.Event {
			if s.Hidden() {
				return nil
			}
			events := d.Engine.Tick(s, dt.Seconds())
			if d.Engine.ExplorationReady(s) {
				_, ev := d.Engine.CompleteExploration(s)
				events = append(events, ev...)
			}
			return events
		})
	}
}

// Autosave writes every game that changed since the last autosave.
func (d *Driver) Autosave(ctx context.Context) {
	saved := 0
	for _, g := range d.Table.All() {
		if !g.TakeDirty() {
			continue
		}
		var err error
		g.View(func(s *game.Session) {
			err = d.Saves.Save(ctx, g.ID, s.Character)
		})
		if err != nil {
			g.MarkDirty()
			slog.Error("autosave failed", "game", g.ID, "error", err)
			continue
		}
		saved++
	}
	if saved > 0 {
		slog.Debug("autosave", "games", saved)
	}
}
