package game

import (
	"fmt"
	"math"
	"time"
)

// Expedition is an exploration run in progress.
type Expedition struct {
	AreaID    string    `json:"areaId"`
	StartedAt time.Time `json:"startedAt"`
	// Duration is the wall time the run takes at the speed it started with.
	Duration time.Duration `json:"duration"`
}

// Loot is the merged reward of all triggered events.
type Loot struct {
	SpiritualQi     int             `json:"spiritualQi,omitempty"`
	BodyEnergy      int             `json:"bodyEnergy,omitempty"`
	AbilityCurrency int             `json:"abilityCurrency,omitempty"`
	Ability         AbilityID       `json:"ability,omitempty"`
	PathExperience  int             `json:"pathExperience,omitempty"`
	Path            SecondaryPathID `json:"path,omitempty"`
}

func (l Loot) merge(o Loot) Loot {
	l.SpiritualQi += o.SpiritualQi
	l.BodyEnergy += o.BodyEnergy
	l.AbilityCurrency += o.AbilityCurrency
	l.PathExperience += o.PathExperience
	if l.Ability == "" {
		l.Ability = o.Ability
	}
	if o.Path != "" {
		l.Path = o.Path
	}
	return l
}

type TriggeredEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Loot        Loot   `json:"loot"`
}

type ExplorationResult struct {
	AreaID        string           `json:"areaId"`
	AreaName      string           `json:"areaName"`
	Events        []TriggeredEvent `json:"events"`
	Loot          Loot             `json:"loot"`
	NothingGained bool             `json:"nothingGained"`
}

// CanExplore reports whether the character's highest ladder level meets the
// area's gate.
func CanExplore(c *Character, a *Area) bool {
	return max(c.Cultivation.Qi.Level, c.Cultivation.Body.Level) >= a.Level-1
}

// StartExploration begins a run. It returns false when a run is already in
// progress, the area is unknown or the character is too weak.
func (e *Engine) StartExploration(s *Session, areaID string) bool {
	if s.Exploration != nil {
		return false
	}
	a, ok := e.Content.Area(areaID)
	if !ok || !CanExplore(s.Character, a) {
		return false
	}
	speed := s.Speed
	if speed <= 0 {
		speed = 1
	}
	d := time.Duration(a.DurationSeconds / speed * float64(time.Second))
	s.Exploration = &Expedition{AreaID: a.ID, StartedAt: e.Now(), Duration: d}
	return true
}

// ExplorationReady reports whether the current run has run its course.
func (e *Engine) ExplorationReady(s *Session) bool {
	return s.Exploration != nil && e.Now().Sub(s.Exploration.StartedAt) >= s.Exploration.Duration
}

func (e *Engine) CancelExploration(s *Session) {
	s.Exploration = nil
}

// CompleteExploration resolves a finished run and applies its rewards. It
// returns nil when nothing is in progress or the run is not finished yet.
func (e *Engine) CompleteExploration(s *Session) (*ExplorationResult, []Event) {
	if !e.ExplorationReady(s) {
		return nil, nil
	}
	run := s.Exploration
	s.Exploration = nil
	a, ok := e.Content.Area(run.AreaID)
	if !ok {
		return nil, nil
	}
	c := s.Character
	res := e.resolveArea(c, a)
	c.Stats.Explorations++

	var events []Event
	if res.NothingGained {
		events = append(events, Event{Kind: EventExploration, Text: fmt.Sprintf("You explored %s but found nothing of note.", a.Name)})
		return res, events
	}
	for _, te := range res.Events {
		events = append(events, Event{Kind: EventExploration, Text: te.Name + ": " + te.Description})
	}
	events = append(events, e.applyLoot(c, res.Loot)...)
	return res, events
}

func (e *Engine) resolveArea(c *Character, a *Area) *ExplorationResult {
	res := &ExplorationResult{AreaID: a.ID, AreaName: a.Name}
	order := make([]int, len(a.Events))
	for i := range order {
		order[i] = i
	}
	e.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, idx := range order {
		if len(res.Events) >= a.MaxEvents {
			break
		}
		ev := &a.Events[idx]
		if e.Rand.Float64() >= ev.Probability {
			continue
		}
		loot := e.rollRewards(c, ev.Rewards)
		res.Events = append(res.Events, TriggeredEvent{ID: ev.ID, Name: ev.Name, Description: ev.Description, Loot: loot})
		res.Loot = res.Loot.merge(loot)
	}
	res.NothingGained = len(res.Events) == 0
	return res
}

func (e *Engine) rollRewards(c *Character, t RewardTable) Loot {
	var l Loot
	roll := func(rr *RangeReward) int {
		if rr == nil || e.Rand.Float64() >= rr.Probability {
			return 0
		}
		return rollRange(e.Rand, rr.Range)
	}
	l.SpiritualQi = roll(t.SpiritualQi)
	l.BodyEnergy = roll(t.BodyEnergy)
	l.AbilityCurrency = roll(t.AbilityCurrency)

	if ab := t.Ability; ab != nil && len(ab.Abilities) > 0 {
		p := ab.Probability
		if tal, ok := e.Content.Talent(c.Talent); ok && tal.RareFindMultiplier > 0 {
			p *= tal.RareFindMultiplier
		}
		if e.Rand.Float64() < math.Min(p, 1) {
			l.Ability = ab.Abilities[e.Rand.Intn(len(ab.Abilities))]
		}
	}
	if pr := t.PathExperience; pr != nil {
		p := math.Min(pr.Probability*(1+float64(c.Attributes.Comprehension)*0.0001), 1)
		if e.Rand.Float64() < p {
			l.Path = pr.Path
			if l.Path == "" {
				l.Path = SecondaryPaths[e.Rand.Intn(len(SecondaryPaths))]
			}
			l.PathExperience = rollRange(e.Rand, pr.Range)
		}
	}
	return l
}

func (e *Engine) applyLoot(c *Character, l Loot) []Event {
	var events []Event
	if l.SpiritualQi > 0 {
		_, ev := e.GainExperience(c, LadderQi, float64(l.SpiritualQi))
		events = append(events, ev...)
	}
	if l.BodyEnergy > 0 {
		_, ev := e.GainExperience(c, LadderBody, float64(l.BodyEnergy))
		events = append(events, ev...)
	}
	if l.AbilityCurrency > 0 {
		e.gainResources(c, ResourceDelta{AbilityCurrency: float64(l.AbilityCurrency)})
	}
	if l.Ability != "" {
		_, ev := e.GainAbility(c, l.Ability)
		events = append(events, ev...)
	}
	if l.PathExperience > 0 && l.Path != "" {
		events = append(events, e.GainPathExperience(c, l.Path, float64(l.PathExperience))...)
	}
	return events
}
