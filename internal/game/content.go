package game

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default_content.yaml
var defaultContentYAML []byte

type Talent struct {
	ID          TalentID        `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Flat        AttributeDeltas `yaml:"flat"`
	// RareFindMultiplier scales the chance of rare ability finds while exploring.
	RareFindMultiplier float64 `yaml:"rareFindMultiplier"`
}

type Path struct {
	ID          PathID                   `yaml:"id"`
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description"`
	Efficiency  map[ActivityType]float64 `yaml:"efficiency"`
}

type Activity struct {
	ID       ActivityID   `yaml:"id"`
	Name     string       `yaml:"name"`
	Type     ActivityType `yaml:"type"`
	BaseRate float64      `yaml:"baseRate"`
}

type SecondaryPath struct {
	ID                 SecondaryPathID `yaml:"id"`
	Name               string          `yaml:"name"`
	MaxLevel           int             `yaml:"maxLevel"`
	ExperiencePerLevel float64         `yaml:"experiencePerLevel"`
	FlatPerLevel       AttributeDeltas `yaml:"flatPerLevel"`
	PercentPerLevel    AttributeDeltas `yaml:"percentPerLevel"`
}

type Ability struct {
	ID             AbilityID       `yaml:"id"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	MaxLevel       int             `yaml:"maxLevel"`
	BaseCost       float64         `yaml:"baseCost"`
	CostMultiplier float64         `yaml:"costMultiplier"`
	FlatPerLevel   AttributeDeltas `yaml:"flatPerLevel"`
}

type Treasure struct {
	ID         TreasureID `yaml:"id"`
	Name       string     `yaml:"name"`
	Multiplier float64    `yaml:"multiplier"`
}

// RewardBundle is granted on reaching a sub-level. Derived deltas are
// one-time top-ups, not modifiers.
type RewardBundle struct {
	Base      AttributeDeltas `yaml:"base" json:"base"`
	Derived   AttributeDeltas `yaml:"derived" json:"derived"`
	Resources ResourceDelta   `yaml:"resources" json:"resources"`
}

type SubLevel struct {
	ID        string       `yaml:"id"`
	Name      string       `yaml:"name"`
	Threshold float64      `yaml:"threshold"`
	Rewards   RewardBundle `yaml:"rewards"`
}

type Realm struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Levels []SubLevel `yaml:"levels"`
}

type ConditionKind string

const (
	ConditionPathTotal    ConditionKind = "path_total_level"
	ConditionPathHighest  ConditionKind = "path_highest_level"
	ConditionAbilityTotal ConditionKind = "ability_total_level"
)

type Condition struct {
	Kind  ConditionKind `yaml:"kind" json:"kind"`
	Level int           `yaml:"level" json:"level"`
	// Bonus is the success-rate percentage added when an optional condition holds.
	Bonus float64 `yaml:"bonus,omitempty" json:"bonus,omitempty"`
}

type BreakthroughConfig struct {
	Ladder   LadderKind  `yaml:"ladder"`
	From     string      `yaml:"from"`
	To       string      `yaml:"to"`
	BaseRate float64     `yaml:"baseRate"`
	Required []Condition `yaml:"required"`
	Optional []Condition `yaml:"optional"`
	// FailurePenalty is the fraction of the pending experience lost on a failed roll.
	FailurePenalty float64 `yaml:"failurePenalty"`
}

type RangeReward struct {
	Range       [2]int  `yaml:"range"`
	Probability float64 `yaml:"probability"`
}

type AbilityReward struct {
	Abilities   []AbilityID `yaml:"abilities"`
	Probability float64     `yaml:"probability"`
}

type PathReward struct {
	Path        SecondaryPathID `yaml:"path"`
	Range       [2]int          `yaml:"range"`
	Probability float64         `yaml:"probability"`
}

type RewardTable struct {
	SpiritualQi     *RangeReward   `yaml:"spiritualQi"`
	BodyEnergy      *RangeReward   `yaml:"bodyEnergy"`
	AbilityCurrency *RangeReward   `yaml:"abilityCurrency"`
	Ability         *AbilityReward `yaml:"ability"`
	PathExperience  *PathReward    `yaml:"pathExperience"`
}

type AreaEvent struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Probability float64     `yaml:"probability"`
	Rewards     RewardTable `yaml:"rewards"`
}

type Area struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Description     string      `yaml:"description"`
	Level           int         `yaml:"level"`
	DurationSeconds float64     `yaml:"durationSeconds"`
	MaxEvents       int         `yaml:"maxEvents"`
	Events          []AreaEvent `yaml:"events"`
}

// InsightConfig drives the chance of secondary path experience while cultivating.
type InsightConfig struct {
	BaseProbability float64 `yaml:"baseProbability"`
	Amount          [2]int  `yaml:"amount"`
}

type Ladder struct {
	Kind   LadderKind `yaml:"kind"`
	Realms []Realm    `yaml:"realms"`
}

type Content struct {
	StartingResources ResourceDelta        `yaml:"startingResources"`
	StartingTreasures []TreasureID         `yaml:"startingTreasures"`
	Insight           InsightConfig        `yaml:"insight"`
	Talents           []Talent             `yaml:"talents"`
	Paths             []Path               `yaml:"paths"`
	Activities        []Activity           `yaml:"activities"`
	SecondaryPaths    []SecondaryPath      `yaml:"secondaryPaths"`
	Abilities         []Ability            `yaml:"abilities"`
	Treasures         []Treasure           `yaml:"treasures"`
	Ladders           []Ladder             `yaml:"ladders"`
	Breakthroughs     []BreakthroughConfig `yaml:"breakthroughs"`
	Areas             []Area               `yaml:"areas"`
}

// LoadContent loads game content from a YAML file.
func LoadContent(path string) (*Content, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	return ParseContent(b)
}

// ParseContent decodes and validates YAML content.
func ParseContent(b []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultContent returns the built-in content tables.
func DefaultContent() *Content {
	c, err := ParseContent(defaultContentYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in content: %v", err))
	}
	return c
}

func (c *Content) Talent(id TalentID) (*Talent, bool) {
	for i := range c.Talents {
		if c.Talents[i].ID == id {
			return &c.Talents[i], true
		}
	}
	return nil, false
}

func (c *Content) Path(id PathID) (*Path, bool) {
	for i := range c.Paths {
		if c.Paths[i].ID == id {
			return &c.Paths[i], true
		}
	}
	return nil, false
}

func (c *Content) Activity(id ActivityID) (*Activity, bool) {
	for i := range c.Activities {
		if c.Activities[i].ID == id {
			return &c.Activities[i], true
		}
	}
	return nil, false
}

func (c *Content) SecondaryPath(id SecondaryPathID) (*SecondaryPath, bool) {
	for i := range c.SecondaryPaths {
		if c.SecondaryPaths[i].ID == id {
			return &c.SecondaryPaths[i], true
		}
	}
	return nil, false
}

func (c *Content) Ability(id AbilityID) (*Ability, bool) {
	for i := range c.Abilities {
		if c.Abilities[i].ID == id {
			return &c.Abilities[i], true
		}
	}
	return nil, false
}

func (c *Content) Treasure(id TreasureID) (*Treasure, bool) {
	for i := range c.Treasures {
		if c.Treasures[i].ID == id {
			return &c.Treasures[i], true
		}
	}
	return nil, false
}

func (c *Content) Ladder(kind LadderKind) *Ladder {
	for i := range c.Ladders {
		if c.Ladders[i].Kind == kind {
			return &c.Ladders[i]
		}
	}
	return nil
}

func (c *Content) Area(id string) (*Area, bool) {
	for i := range c.Areas {
		if c.Areas[i].ID == id {
			return &c.Areas[i], true
		}
	}
	return nil, false
}

// Breakthrough returns the breakthrough leaving the given realm of a ladder.
func (c *Content) Breakthrough(kind LadderKind, realmID string) (*BreakthroughConfig, bool) {
	for i := range c.Breakthroughs {
		b := &c.Breakthroughs[i]
		if b.Ladder == kind && b.From == realmID {
			return b, true
		}
	}
	return nil, false
}
