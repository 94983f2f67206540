package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidContent   = errors.New("invalid content")
	ErrInvalidCharacter = errors.New("invalid character")
	ErrUnknownTalent    = errors.New("unknown talent")
	ErrUnknownPath      = errors.New("unknown path")
	ErrInvalidModifier  = errors.New("invalid modifier")
)

// The registry of every key the engine understands. Content may only refer
// to these.
var (
	knownTalents = map[TalentID]bool{
		TalentSpiritualRoot: true, TalentIronBody: true, TalentWiseMind: true, TalentLuckyStar: true,
	}
	knownPaths = map[PathID]bool{
		PathQi: true, PathBody: true, PathDual: true,
	}
	knownActivities = map[ActivityID]bool{
		ActivityMeditation: true, ActivityBodyTraining: true, ActivityExploration: true,
	}
	knownActivityTypes = map[ActivityType]bool{
		ActivityCultivation: true, ActivityBody: true, ActivityAdventure: true,
	}
	knownLadders = map[LadderKind]bool{
		LadderQi: true, LadderBody: true,
	}
	knownAbilities = map[AbilityID]bool{
		AbilityIronBone: true, AbilityGoldenBody: true, AbilityDivineStrength: true,
		AbilityVajraBody: true, AbilityImmortalFlesh: true, AbilityDragonElephantMight: true,
	}
	knownTreasures = map[TreasureID]bool{
		TreasureBronzeHourglass: true, TreasureSilverChronometer: true,
	}
	knownConditions = map[ConditionKind]bool{
		ConditionPathTotal: true, ConditionPathHighest: true, ConditionAbilityTotal: true,
	}
)

func knownSecondaryPath(id SecondaryPathID) bool {
	for _, p := range SecondaryPaths {
		if p == id {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidContent, fmt.Sprintf(format, args...))
}

// Validate checks every table against the registry and basic sanity rules.
func (c *Content) Validate() error {
	for _, t := range c.Talents {
		if !knownTalents[t.ID] {
			return invalid("talent %q", t.ID)
		}
		if t.RareFindMultiplier < 0 {
			return invalid("talent %s: negative rare find multiplier", t.ID)
		}
	}
	for _, p := range c.Paths {
		if !knownPaths[p.ID] {
			return invalid("path %q", p.ID)
		}
		for typ := range p.Efficiency {
			if !knownActivityTypes[typ] {
				return invalid("path %s: activity type %q", p.ID, typ)
			}
		}
	}
	for _, a := range c.Activities {
		if !knownActivities[a.ID] || !knownActivityTypes[a.Type] {
			return invalid("activity %q", a.ID)
		}
		if a.BaseRate < 0 {
			return invalid("activity %s: negative base rate", a.ID)
		}
	}
	for _, p := range c.SecondaryPaths {
		if !knownSecondaryPath(p.ID) {
			return invalid("secondary path %q", p.ID)
		}
		if p.MaxLevel < 1 || p.ExperiencePerLevel <= 0 {
			return invalid("secondary path %s: bad level config", p.ID)
		}
	}
	for _, a := range c.Abilities {
		if !knownAbilities[a.ID] {
			return invalid("ability %q", a.ID)
		}
		if a.MaxLevel < 1 || a.CostMultiplier < 1 {
			return invalid("ability %s: bad upgrade config", a.ID)
		}
	}
	for _, t := range c.Treasures {
		if !knownTreasures[t.ID] || t.Multiplier <= 0 {
			return invalid("treasure %q", t.ID)
		}
	}
	for _, id := range c.StartingTreasures {
		if _, ok := c.Treasure(id); !ok {
			return invalid("starting treasure %q", id)
		}
	}
	if err := c.validateLadders(); err != nil {
		return err
	}
	if err := c.validateBreakthroughs(); err != nil {
		return err
	}
	return c.validateAreas()
}

func (c *Content) validateLadders() error {
	for kind := range knownLadders {
		if c.Ladder(kind) == nil {
			return invalid("missing %s ladder", kind)
		}
	}
	for _, l := range c.Ladders {
		if !knownLadders[l.Kind] {
			return invalid("ladder %q", l.Kind)
		}
		if len(l.Realms) == 0 {
			return invalid("%s ladder has no realms", l.Kind)
		}
		for _, r := range l.Realms {
			if len(r.Levels) == 0 {
				return invalid("%s realm %s has no levels", l.Kind, r.ID)
			}
			for _, s := range r.Levels {
				if s.Threshold <= 0 {
					return invalid("%s level %s: threshold must be positive", l.Kind, s.ID)
				}
			}
		}
	}
	return nil
}

func (c *Content) validateBreakthroughs() error {
	for _, b := range c.Breakthroughs {
		l := c.Ladder(b.Ladder)
		if l == nil {
			return invalid("breakthrough %s: ladder %q", b.From, b.Ladder)
		}
		if l.realmIndex(b.From) < 0 {
			return invalid("breakthrough: unknown %s realm %q", b.Ladder, b.From)
		}
		if b.BaseRate < 0 || b.BaseRate > 1 {
			return invalid("breakthrough %s: base rate out of range", b.From)
		}
		if b.FailurePenalty < 0 || b.FailurePenalty > 1 {
			return invalid("breakthrough %s: failure penalty out of range", b.From)
		}
		for _, cond := range append(append([]Condition{}, b.Required...), b.Optional...) {
			if !knownConditions[cond.Kind] {
				return invalid("breakthrough %s: condition %q", b.From, cond.Kind)
			}
		}
	}
	return nil
}

func (c *Content) validateAreas() error {
	for _, a := range c.Areas {
		if a.MaxEvents < 1 || a.DurationSeconds <= 0 {
			return invalid("area %s: bad duration or event cap", a.ID)
		}
		for _, ev := range a.Events {
			if ev.Probability < 0 || ev.Probability > 1 {
				return invalid("area %s event %s: probability out of range", a.ID, ev.ID)
			}
			r := ev.Rewards
			for _, rr := range []*RangeReward{r.SpiritualQi, r.BodyEnergy, r.AbilityCurrency} {
				if rr != nil && rr.Range[0] > rr.Range[1] {
					return invalid("area %s event %s: inverted range", a.ID, ev.ID)
				}
			}
			if r.Ability != nil {
				for _, id := range r.Ability.Abilities {
					if _, ok := c.Ability(id); !ok {
						return invalid("area %s event %s: ability %q", a.ID, ev.ID, id)
					}
				}
			}
			if r.PathExperience != nil {
				if r.PathExperience.Path != "" && !knownSecondaryPath(r.PathExperience.Path) {
					return invalid("area %s event %s: path %q", a.ID, ev.ID, r.PathExperience.Path)
				}
				if r.PathExperience.Range[0] > r.PathExperience.Range[1] {
					return invalid("area %s event %s: inverted range", a.ID, ev.ID)
				}
			}
		}
	}
	return nil
}
