package game

import (
	"fmt"
	"math"
)

const (
	pathModifierID    = "secondary_paths"
	abilityModifierID = "abilities"
)

func talentModifierID(id TalentID) string {
	return "talent_" + string(id)
}

// syncGeneratedModifiers rebuilds the modifiers owned by the engine from the
// character's talent, secondary paths and abilities.
func (e *Engine) syncGeneratedModifiers(c *Character) {
	if t, ok := e.Content.Talent(c.Talent); ok && !t.Flat.IsZero() {
		upsertModifier(c, Modifier{ID: talentModifierID(t.ID), Name: t.Name, Source: SourceTalent, Flat: t.Flat})
	}

	var flat, pct AttributeDeltas
	for _, id := range SecondaryPaths {
		p := c.SecondaryPaths[id]
		def, ok := e.Content.SecondaryPath(id)
		if p == nil || !ok || p.Level == 0 {
			continue
		}
		flat = flat.add(def.FlatPerLevel.scale(float64(p.Level)))
		pct = pct.add(def.PercentPerLevel.scale(float64(p.Level)))
	}
	if flat.IsZero() && pct.IsZero() {
		removeModifier(c, pathModifierID)
	} else {
		upsertModifier(c, Modifier{ID: pathModifierID, Name: "Secondary Paths", Source: SourceSecondaryPath, Flat: flat, Percent: pct})
	}

	var ab AttributeDeltas
	for _, id := range c.Abilities.Unlocked {
		def, ok := e.Content.Ability(id)
		if !ok {
			continue
		}
		ab = ab.add(def.FlatPerLevel.scale(float64(c.Abilities.Levels[id])))
	}
	if ab.IsZero() {
		removeModifier(c, abilityModifierID)
	} else {
		upsertModifier(c, Modifier{ID: abilityModifierID, Name: "Divine Abilities", Source: SourceCultivation, Flat: ab})
	}
}

// GainPathExperience adds experience to a secondary path, levelling it up to
// its cap.
func (e *Engine) GainPathExperience(c *Character, id SecondaryPathID, amount float64) []Event {
	def, ok := e.Content.SecondaryPath(id)
	if !ok || amount <= 0 {
		return nil
	}
	if c.SecondaryPaths == nil {
		c.SecondaryPaths = map[SecondaryPathID]*PathProgress{}
	}
	p := c.SecondaryPaths[id]
	if p == nil {
		p = &PathProgress{}
		c.SecondaryPaths[id] = p
	}
	if p.Level >= def.MaxLevel {
		return nil
	}

	var events []Event
	p.Experience += amount
	for p.Experience >= def.ExperiencePerLevel && p.Level < def.MaxLevel {
		p.Experience -= def.ExperiencePerLevel
		p.Level++
		events = append(events, Event{
			Kind:  EventPathLevelUp,
			Text:  fmt.Sprintf("Your understanding of the %s path deepens to level %d.", def.Name, p.Level),
			Level: p.Level,
		})
	}
	if p.Level >= def.MaxLevel {
		p.Experience = 0
	}
	if len(events) > 0 {
		e.refreshAttributes(c)
	}
	return events
}

// GainAbility unlocks an ability at level 0; it grants nothing until upgraded.
func (e *Engine) GainAbility(c *Character, id AbilityID) (bool, []Event) {
	def, ok := e.Content.Ability(id)
	if !ok || c.Abilities.Has(id) {
		return false, nil
	}
	c.Abilities.Unlocked = append(c.Abilities.Unlocked, id)
	if c.Abilities.Levels == nil {
		c.Abilities.Levels = map[AbilityID]int{}
	}
	c.Abilities.Levels[id] = 0
	return true, []Event{{Kind: EventAbilityGained, Text: fmt.Sprintf("You comprehended the divine ability %s!", def.Name)}}
}

// AbilityUpgradeCost is floor(base * multiplier^level). The second result is
// false when the ability is not owned or already at its cap.
func (e *Engine) AbilityUpgradeCost(c *Character, id AbilityID) (float64, bool) {
	def, ok := e.Content.Ability(id)
	if !ok || !c.Abilities.Has(id) {
		return 0, false
	}
	lvl := c.Abilities.Levels[id]
	if lvl >= def.MaxLevel {
		return 0, false
	}
	return math.Floor(def.BaseCost * math.Pow(def.CostMultiplier, float64(lvl))), true
}

func (e *Engine) UpgradeAbility(c *Character, id AbilityID) (bool, []Event) {
	cost, ok := e.AbilityUpgradeCost(c, id)
	if !ok || c.Resources.AbilityCurrency < cost {
		return false, nil
	}
	def, _ := e.Content.Ability(id)
	e.gainResources(c, ResourceDelta{AbilityCurrency: -cost})
	c.Abilities.Levels[id]++
	e.refreshAttributes(c)
	lvl := c.Abilities.Levels[id]
	return true, []Event{{Kind: EventAbilityUpgrade, Text: fmt.Sprintf("%s rose to level %d.", def.Name, lvl), Level: lvl}}
}

func pathTotalLevel(c *Character) int {
	n := 0
	for _, p := range c.SecondaryPaths {
		if p != nil {
			n += p.Level
		}
	}
	return n
}

func pathHighestLevel(c *Character) int {
	n := 0
	for _, p := range c.SecondaryPaths {
		if p != nil && p.Level > n {
			n = p.Level
		}
	}
	return n
}

func abilityTotalLevel(c *Character) int {
	n := 0
	for _, id := range c.Abilities.Unlocked {
		n += c.Abilities.Levels[id]
	}
	return n
}
