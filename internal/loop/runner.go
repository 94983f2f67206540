// Package loop provides the real-time loop that drives live games.
package loop

import (
	"context"
	"log/slog"
	"time"
)

// Runner calls OnTick every Interval with the measured wall time since the
// previous tick, and OnAutosave every AutosaveEvery.
type Runner struct {
	Tick          uint64
	Interval      time.Duration
	AutosaveEvery time.Duration

	OnTick     func(tick uint64, dt time.Duration)
	OnAutosave func(tick uint64)

	last     time.Time
	lastSave time.Time
}

func NewRunner(interval, autosave time.Duration) *Runner {
	return &Runner{Interval: interval, AutosaveEvery: autosave}
}

// Run blocks until ctx is cancelled. A final autosave runs on the way out.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("game loop started", "interval", r.Interval, "autosave", r.AutosaveEvery)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	now := time.Now()
	r.last, r.lastSave = now, now
	for {
		select {
		case <-ctx.Done():
			if r.OnAutosave != nil {
				r.OnAutosave(r.Tick)
			}
			slog.Info("game loop stopped", "tick", r.Tick)
			return
		case now := <-ticker.C:
			r.step(now)
		}
	}
}

func (r *Runner) step(now time.Time) {
	dt := now.Sub(r.last)
	r.last = now
	r.Tick++

	if r.OnTick != nil && dt > 0 {
		r.OnTick(r.Tick, dt)
	}
	if r.AutosaveEvery > 0 && now.Sub(r.lastSave) >= r.AutosaveEvery {
		r.lastSave = now
		if r.OnAutosave != nil {
			r.OnAutosave(r.Tick)
		}
	}
}
