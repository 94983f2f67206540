package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// StartingAttribute is every base stat before bonus points are spent.
	StartingAttribute = 5
	// BonusAttributePoints are spread over the base stats at creation.
	BonusAttributePoints = 10
	maxNameLength        = 40
)

type CreationPayload struct {
	Name       string         `json:"name"`
	Gender     string         `json:"gender"`
	Path       PathID         `json:"path"`
	Talent     TalentID       `json:"talent"`
	Attributes BaseAttributes `json:"attributes"`
}

// RollBaseAttributes spreads the bonus points randomly over the base stats.
func RollBaseAttributes(r Rand) BaseAttributes {
	b := BaseAttributes{Vitality: StartingAttribute, SpiritualPower: StartingAttribute, Comprehension: StartingAttribute}
	for i := 0; i < BonusAttributePoints; i++ {
		switch r.Intn(3) {
		case 0:
			b.Vitality++
		case 1:
			b.SpiritualPower++
		default:
			b.Comprehension++
		}
	}
	return b
}

// NewCharacter builds a fresh character from a creation payload.
func (e *Engine) NewCharacter(p CreationPayload) (*Character, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidCharacter, maxNameLength)
	}
	if _, ok := e.Content.Path(p.Path); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPath, p.Path)
	}
	if _, ok := e.Content.Talent(p.Talent); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTalent, p.Talent)
	}
	a := p.Attributes
	if a.Vitality < 1 || a.SpiritualPower < 1 || a.Comprehension < 1 {
		return nil, fmt.Errorf("%w: attributes must be at least 1", ErrInvalidCharacter)
	}

	c := &Character{
		Name:       name,
		Gender:     p.Gender,
		Path:       p.Path,
		Talent:     p.Talent,
		Base:       a,
		Attributes: a,
		Derived:    BaselineDerived(a),
		Resources: Resources{
			SpiritualQi:     e.Content.StartingResources.SpiritualQi,
			BodyEnergy:      e.Content.StartingResources.BodyEnergy,
			AbilityCurrency: e.Content.StartingResources.AbilityCurrency,
		},
		Inventory: Inventory{TimeTreasures: append([]TreasureID{}, e.Content.StartingTreasures...)},
	}
	fillDefaults(c)
	e.refreshAttributes(c)
	return c, nil
}

// fillDefaults adds the subsystems older characters may lack.
func fillDefaults(c *Character) {
	if c.SecondaryPaths == nil {
		c.SecondaryPaths = map[SecondaryPathID]*PathProgress{}
	}
	for _, id := range SecondaryPaths {
		if c.SecondaryPaths[id] == nil {
			c.SecondaryPaths[id] = &PathProgress{}
		}
	}
	if c.Abilities.Unlocked == nil {
		c.Abilities.Unlocked = []AbilityID{}
	}
	if c.Abilities.Levels == nil {
		c.Abilities.Levels = map[AbilityID]int{}
	}
	if c.Modifiers == nil {
		c.Modifiers = []Modifier{}
	}
	if c.Inventory.TimeTreasures == nil {
		c.Inventory.TimeTreasures = []TreasureID{}
	}
}
