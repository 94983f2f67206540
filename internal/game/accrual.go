package game

import (
	"fmt"
	"math"
	"time"
)

// OfflineFloor is the shortest hidden interval that earns catch-up gains.
const OfflineFloor = 5 * time.Second

// insightCap bounds the per-roll chance of secondary path insight.
const insightCap = 0.5

type OfflineReport struct {
	Elapsed         time.Duration `json:"elapsed"`
	Applied         bool          `json:"applied"`
	SpiritualQi     float64       `json:"spiritualQi"`
	BodyEnergy      float64       `json:"bodyEnergy"`
	InsightsGranted int           `json:"insightsGranted"`
	Events          []Event       `json:"events,omitempty"`
}

// Tick advances a visible session by dt seconds of wall time.
func (e *Engine) Tick(s *Session, dt float64) []Event {
	if s.Hidden() || dt <= 0 {
		return nil
	}
	s.Character.Stats.PlayTime += dt
	act, ok := e.Content.Activity(s.Activity)
	if !ok {
		return nil
	}
	_, events := e.accrue(s, act, dt)
	if act.Type == ActivityCultivation {
		if ev := e.rollInsight(s.Character); ev != nil {
			events = append(events, ev...)
		}
	}
	return events
}

// accrue credits baseRate * dt * speed * treasure * path efficiency to the
// ladder fed by the activity and returns the amount credited.
func (e *Engine) accrue(s *Session, act *Activity, dt float64) (float64, []Event) {
	var kind LadderKind
	switch act.Type {
	case ActivityCultivation:
		kind = LadderQi
	case ActivityBody:
		kind = LadderBody
	default:
		return 0, nil
	}
	c := s.Character
	gain := act.BaseRate * dt * s.Speed * e.treasureMultiplier(c) * e.pathEfficiency(c, act.Type)
	ok, events := e.GainExperience(c, kind, gain)
	if !ok {
		return 0, nil
	}
	return gain, events
}

func (e *Engine) pathEfficiency(c *Character, typ ActivityType) float64 {
	p, ok := e.Content.Path(c.Path)
	if !ok {
		return 1
	}
	if f, ok := p.Efficiency[typ]; ok {
		return f
	}
	return 1
}

// InsightChance is the comprehension-scaled insight probability for one roll.
func (e *Engine) InsightChance(c *Character) float64 {
	p := e.Content.Insight.BaseProbability * (1 + float64(c.Attributes.Comprehension)*0.0001)
	return math.Min(p, insightCap)
}

func (e *Engine) rollInsight(c *Character) []Event {
	if e.Rand.Float64() >= e.InsightChance(c) {
		return nil
	}
	id := SecondaryPaths[e.Rand.Intn(len(SecondaryPaths))]
	amount := rollRange(e.Rand, e.Content.Insight.Amount)
	if amount <= 0 {
		return nil
	}
	name := string(id)
	if def, ok := e.Content.SecondaryPath(id); ok {
		name = def.Name
	}
	events := []Event{{Kind: EventPathInsight, Text: fmt.Sprintf("A flash of insight into the %s path (+%d).", name, amount)}}
	return append(events, e.GainPathExperience(c, id, float64(amount))...)
}

// RecordHidden suspends foreground ticking. Repeated calls keep the first
// timestamp.
func (e *Engine) RecordHidden(s *Session, now time.Time) {
	if s.HiddenAt != nil {
		return
	}
	s.HiddenAt = &now
}

// ProcessOfflineTime resumes a hidden session and credits the time away.
// It acts once per hidden/visible transition.
func (e *Engine) ProcessOfflineTime(s *Session, now time.Time) OfflineReport {
	if s.HiddenAt == nil {
		return OfflineReport{}
	}
	elapsed := now.Sub(*s.HiddenAt)
	s.HiddenAt = nil
	if elapsed < OfflineFloor {
		return OfflineReport{Elapsed: max(elapsed, 0)}
	}
	return e.OfflineCatchUp(s, elapsed)
}

// OfflineCatchUp applies one accrual over the whole interval plus one insight
// roll per elapsed second.
func (e *Engine) OfflineCatchUp(s *Session, elapsed time.Duration) OfflineReport {
	rep := OfflineReport{Elapsed: elapsed, Applied: true}
	act, ok := e.Content.Activity(s.Activity)
	if !ok {
		return rep
	}
	c := s.Character
	gain, events := e.accrue(s, act, elapsed.Seconds())
	switch act.Type {
	case ActivityCultivation:
		rep.SpiritualQi = gain
		for i := 0; i < int(elapsed.Seconds()); i++ {
			if ev := e.rollInsight(c); ev != nil {
				rep.InsightsGranted++
				events = append(events, ev...)
			}
		}
	case ActivityBody:
		rep.BodyEnergy = gain
	}
	summary := Event{Kind: EventOffline, Text: fmt.Sprintf("While away for %s you gathered %.0f qi and %.0f body energy.",
		elapsed.Round(time.Second), rep.SpiritualQi, rep.BodyEnergy)}
	rep.Events = append([]Event{summary}, events...)
	return rep
}

func rollRange(r Rand, rng [2]int) int {
	lo, hi := rng[0], rng[1]
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}
