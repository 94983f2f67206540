package game

import (
	"math"
	"sort"
)

type statBlock struct {
	vitality, spiritualPower, comprehension float64
	mana, offense, physDef, magDef          float64
	health, maxHealth                       float64
}

// BaselineDerived computes derived attributes from base stats alone.
func BaselineDerived(b BaseAttributes) DerivedAttributes {
	s := baseline(float64(b.Vitality), float64(b.SpiritualPower))
	return DerivedAttributes{
		Mana:            int(s.mana),
		Offense:         int(s.offense),
		PhysicalDefense: s.physDef,
		MagicalDefense:  s.magDef,
		Health:          int(s.health),
		MaxHealth:       int(s.maxHealth),
	}
}

func baseline(v, sp float64) statBlock {
	maxHealth := math.Floor(50 + 5*v)
	return statBlock{
		mana:      math.Floor(5 + 2*sp),
		offense:   math.Floor(5 + v),
		physDef:   math.Floor((10+0.4*v+0.1*sp)*10) / 10,
		magDef:    math.Floor((10+0.2*v+0.5*sp)*10) / 10,
		health:    maxHealth,
		maxHealth: maxHealth,
	}
}

// SortModifiers orders modifiers by source priority, keeping insertion order
// within a source.
func SortModifiers(mods []Modifier) []Modifier {
	out := make([]Modifier, len(mods))
	copy(out, mods)
	sort.SliceStable(out, func(i, j int) bool {
		return sourcePriority[out[i].Source] < sourcePriority[out[j].Source]
	})
	return out
}

// Recompute folds the modifier list over the base attributes and returns the
// final base and derived attributes. Current health keeps the ratio it had to
// max health in prior; a zero prior counts as full health.
func Recompute(base BaseAttributes, prior DerivedAttributes, mods []Modifier) (BaseAttributes, DerivedAttributes) {
	orig := baseline(float64(base.Vitality), float64(base.SpiritualPower))
	s := orig
	s.vitality = float64(base.Vitality)
	s.spiritualPower = float64(base.SpiritualPower)
	s.comprehension = float64(base.Comprehension)

	sorted := SortModifiers(mods)

	var pct AttributeDeltas
	for _, m := range sorted {
		f := m.Flat
		s.vitality += f.Vitality
		s.spiritualPower += f.SpiritualPower
		s.comprehension += f.Comprehension
		s.mana += f.Mana
		s.offense += f.Offense
		s.physDef += f.PhysicalDefense
		s.magDef += f.MagicalDefense
		s.health += f.Health + f.MaxHealth
		s.maxHealth += f.Health + f.MaxHealth
		pct = pct.add(m.Percent)
	}

	// base stats changed by flats feed back into the derived stats
	adj := baseline(s.vitality, s.spiritualPower)
	s.mana += adj.mana - orig.mana
	s.offense += adj.offense - orig.offense
	s.physDef += adj.physDef - orig.physDef
	s.magDef += adj.magDef - orig.magDef
	s.health += adj.health - orig.health
	s.maxHealth += adj.maxHealth - orig.maxHealth

	// all percentages come from the same snapshot and combine additively
	s.vitality *= 1 + pct.Vitality/100
	s.spiritualPower *= 1 + pct.SpiritualPower/100
	s.comprehension *= 1 + pct.Comprehension/100
	s.mana *= 1 + pct.Mana/100
	s.offense *= 1 + pct.Offense/100
	s.physDef *= 1 + pct.PhysicalDefense/100
	s.magDef *= 1 + pct.MagicalDefense/100
	hp := 1 + (pct.Health+pct.MaxHealth)/100
	s.health *= hp
	s.maxHealth *= hp

	finalBase := BaseAttributes{
		Vitality:       clampInt(s.vitality, 1),
		SpiritualPower: clampInt(s.spiritualPower, 1),
		Comprehension:  clampInt(s.comprehension, 1),
	}
	d := DerivedAttributes{
		Mana:            clampInt(s.mana, 0),
		Offense:         clampInt(s.offense, 0),
		PhysicalDefense: clampTenth(s.physDef),
		MagicalDefense:  clampTenth(s.magDef),
		MaxHealth:       clampInt(s.maxHealth, 1),
	}
	d.Health = scaleHealth(prior, d.MaxHealth)
	return finalBase, d
}

// scaleHealth returns current health for a new max health, keeping the
// current/max ratio of prior.
func scaleHealth(prior DerivedAttributes, newMax int) int {
	ratio := 1.0
	if prior.MaxHealth > 0 {
		ratio = float64(prior.Health) / float64(prior.MaxHealth)
	}
	h := int(math.Floor(float64(newMax) * ratio))
	if h < 1 {
		h = 1
	}
	return h
}

func clampInt(v float64, lo int) int {
	n := int(math.Floor(v + 1e-9))
	if n < lo {
		return lo
	}
	return n
}

func clampTenth(v float64) float64 {
	v = math.Floor(v*10+1e-9) / 10
	if v < 0 {
		return 0
	}
	return v
}

// refreshAttributes rebuilds the generated modifiers, recomputes the final
// attributes and layers the accumulated level-reward bonuses on top.
func (e *Engine) refreshAttributes(c *Character) {
	e.syncGeneratedModifiers(c)
	prior := c.Derived
	base, d := Recompute(c.Base, prior, c.Modifiers)

	b := c.RewardBonus
	d.Mana += int(b.Mana)
	d.Offense += int(b.Offense)
	d.PhysicalDefense = clampTenth(d.PhysicalDefense + b.PhysicalDefense)
	d.MagicalDefense = clampTenth(d.MagicalDefense + b.MagicalDefense)
	d.MaxHealth += int(b.Health + b.MaxHealth)
	d.Health = scaleHealth(prior, d.MaxHealth)

	c.Attributes = base
	c.Derived = d
}

// TotalPower is a single display number summarising a character's strength.
func TotalPower(c *Character) int {
	d := c.Derived
	a := c.Attributes
	return d.Offense*2 + int(d.PhysicalDefense+d.MagicalDefense) + d.MaxHealth/5 + d.Mana/2 +
		(a.Vitality+a.SpiritualPower+a.Comprehension)*3
}
