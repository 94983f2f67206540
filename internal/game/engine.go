package game

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"
)

// Rand is the only source of randomness used by the engine.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a math/rand source seeded from crypto/rand. It is safe for
// use by several games at once.
func NewRand() Rand {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return &lockedRand{r: mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))} //nolint:gosec // game rolls only
}

type lockedRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

type Engine struct {
	Content *Content
	Rand    Rand
	Now     func() time.Time
}

func NewEngine(content *Content) *Engine {
	return &Engine{Content: content, Rand: NewRand(), Now: time.Now}
}

const (
	MinSpeed = 0.5
	MaxSpeed = 5.0
)

// Session is the transient play state around a character.
type Session struct {
	Character   *Character
	Activity    ActivityID
	Speed       float64
	Exploration *Expedition
	HiddenAt    *time.Time
}

func NewSession(c *Character) *Session {
	return &Session{Character: c, Activity: ActivityMeditation, Speed: 1}
}

// Hidden reports whether foreground ticking is suspended.
func (s *Session) Hidden() bool {
	return s.HiddenAt != nil
}

func (e *Engine) SetActivity(s *Session, id ActivityID) bool {
	if id == "" {
		s.Activity = ""
		return true
	}
	if _, ok := e.Content.Activity(id); !ok {
		return false
	}
	s.Activity = id
	return true
}

// SetSpeed clamps the multiplier to [MinSpeed, MaxSpeed] and returns the applied value.
func (e *Engine) SetSpeed(s *Session, speed float64) float64 {
	s.Speed = min(max(speed, MinSpeed), MaxSpeed)
	return s.Speed
}

// EquipTreasure equips an owned time treasure; an empty id unequips.
func (e *Engine) EquipTreasure(c *Character, id TreasureID) bool {
	if id == "" {
		c.Equipment.TimeTreasure = ""
		return true
	}
	for _, owned := range c.Inventory.TimeTreasures {
		if owned == id {
			c.Equipment.TimeTreasure = id
			return true
		}
	}
	return false
}

func (e *Engine) treasureMultiplier(c *Character) float64 {
	if c.Equipment.TimeTreasure == "" {
		return 1
	}
	t, ok := e.Content.Treasure(c.Equipment.TimeTreasure)
	if !ok {
		return 1
	}
	return t.Multiplier
}

// gainResources is the single mutator for resource accumulators.
func (e *Engine) gainResources(c *Character, d ResourceDelta) {
	c.Resources.SpiritualQi = max(c.Resources.SpiritualQi+d.SpiritualQi, 0)
	c.Resources.BodyEnergy = max(c.Resources.BodyEnergy+d.BodyEnergy, 0)
	c.Resources.AbilityCurrency = max(c.Resources.AbilityCurrency+d.AbilityCurrency, 0)
	if d.SpiritualQi > 0 {
		c.Stats.TotalSpiritualQi += d.SpiritualQi
	}
	if d.BodyEnergy > 0 {
		c.Stats.TotalBodyEnergy += d.BodyEnergy
	}
	if d.AbilityCurrency > 0 {
		c.Stats.TotalAbilityCurrency += d.AbilityCurrency
	}
}

func ladderDelta(kind LadderKind, amount float64) ResourceDelta {
	if kind == LadderBody {
		return ResourceDelta{BodyEnergy: amount}
	}
	return ResourceDelta{SpiritualQi: amount}
}

// CanGain reports whether the ladder still accepts experience.
func (e *Engine) CanGain(c *Character, kind LadderKind) bool {
	l := e.Content.Ladder(kind)
	st := c.Ladder(kind)
	if l == nil || st == nil {
		return false
	}
	pos, ok := l.Locate(st.Level)
	if !ok {
		return false
	}
	if *c.Accumulated(kind) < pos.Level.Threshold {
		return true
	}
	_, hasNext := l.Locate(st.Level + 1)
	return hasNext
}

func (e *Engine) GainPrimaryExperience(c *Character, amount float64) (bool, []Event) {
	return e.GainExperience(c, LadderQi, amount)
}

func (e *Engine) GainSecondaryExperience(c *Character, amount float64) (bool, []Event) {
	return e.GainExperience(c, LadderBody, amount)
}

// GainExperience adds experience to a ladder and advances through every
// sub-level the accumulator covers, stopping at realm-final sub-levels.
func (e *Engine) GainExperience(c *Character, kind LadderKind, amount float64) (bool, []Event) {
	if amount <= 0 || !e.CanGain(c, kind) {
		return false, nil
	}
	e.gainResources(c, ladderDelta(kind, amount))
	return true, e.advance(c, kind)
}

func (e *Engine) advance(c *Character, kind LadderKind) []Event {
	l := e.Content.Ladder(kind)
	st := c.Ladder(kind)
	acc := c.Accumulated(kind)

	var events []Event
	for {
		pos, ok := l.Locate(st.Level)
		if !ok || *acc < pos.Level.Threshold || pos.IsRealmFinal() {
			break
		}
		next, ok := l.Locate(st.Level + 1)
		if !ok {
			break
		}
		*acc -= pos.Level.Threshold
		st.Level++
		e.applyRewards(c, next.Level.Rewards)
		events = append(events, Event{
			Kind:   EventLevelUp,
			Text:   fmt.Sprintf("%s cultivation reached %s.", ladderName(kind), next.Title()),
			Ladder: kind,
			Level:  st.Level,
		})
	}
	return events
}

func ladderName(kind LadderKind) string {
	if kind == LadderBody {
		return "Body"
	}
	return "Qi"
}

// applyRewards grants a sub-level's bundle: base deltas, resources, a full
// recompute and then the derived top-ups.
func (e *Engine) applyRewards(c *Character, r RewardBundle) {
	c.Base.Vitality += int(r.Base.Vitality)
	c.Base.SpiritualPower += int(r.Base.SpiritualPower)
	c.Base.Comprehension += int(r.Base.Comprehension)
	e.gainResources(c, r.Resources)
	e.refreshAttributes(c)

	d := r.Derived
	if d.IsZero() {
		return
	}
	c.RewardBonus = c.RewardBonus.add(d)
	c.Derived.Mana += int(d.Mana)
	c.Derived.Offense += int(d.Offense)
	c.Derived.PhysicalDefense = clampTenth(c.Derived.PhysicalDefense + d.PhysicalDefense)
	c.Derived.MagicalDefense = clampTenth(c.Derived.MagicalDefense + d.MagicalDefense)
	hp := int(d.Health + d.MaxHealth)
	c.Derived.Health += hp
	c.Derived.MaxHealth += hp
}

// AddAttributeModifier inserts or replaces a modifier by ID and recomputes.
func (e *Engine) AddAttributeModifier(c *Character, m Modifier) error {
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidModifier)
	}
	if _, ok := sourcePriority[m.Source]; !ok {
		return fmt.Errorf("%w: source %q", ErrInvalidModifier, m.Source)
	}
	upsertModifier(c, m)
	e.refreshAttributes(c)
	return nil
}

// RemoveAttributeModifier removes a modifier and recomputes. Unknown IDs are
// ignored.
func (e *Engine) RemoveAttributeModifier(c *Character, id string) {
	out := c.Modifiers[:0]
	for _, m := range c.Modifiers {
		if m.ID != id {
			out = append(out, m)
		}
	}
	c.Modifiers = out
	e.refreshAttributes(c)
}

func upsertModifier(c *Character, m Modifier) {
	for i := range c.Modifiers {
		if c.Modifiers[i].ID == m.ID {
			c.Modifiers[i] = m
			return
		}
	}
	c.Modifiers = append(c.Modifiers, m)
}

func removeModifier(c *Character, id string) {
	for i := range c.Modifiers {
		if c.Modifiers[i].ID == id {
			c.Modifiers = append(c.Modifiers[:i], c.Modifiers[i+1:]...)
			return
		}
	}
}
