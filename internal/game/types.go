package game

type TalentID string

const (
	TalentSpiritualRoot TalentID = "spiritual_root"
	TalentIronBody      TalentID = "iron_body"
	TalentWiseMind      TalentID = "wise_mind"
	TalentLuckyStar     TalentID = "lucky_star"
)

type PathID string

const (
	PathQi   PathID = "qi_cultivation"
	PathBody PathID = "body_cultivation"
	PathDual PathID = "dual_cultivation"
)

type ActivityID string

const (
	ActivityMeditation   ActivityID = "meditation"
	ActivityBodyTraining ActivityID = "body_training"
	ActivityExploration  ActivityID = "exploration"
)

// ActivityType decides which ladder an activity feeds.
type ActivityType string

const (
	ActivityCultivation ActivityType = "cultivation"
	ActivityBody        ActivityType = "body"
	ActivityAdventure   ActivityType = "adventure"
)

type LadderKind string

const (
	LadderQi   LadderKind = "qi"
	LadderBody LadderKind = "body"
)

type SecondaryPathID string

const (
	SecondaryMetal SecondaryPathID = "metal"
	SecondaryWood  SecondaryPathID = "wood"
	SecondaryWater SecondaryPathID = "water"
	SecondaryFire  SecondaryPathID = "fire"
	SecondaryEarth SecondaryPathID = "earth"
	SecondaryTime  SecondaryPathID = "time"
	SecondarySpace SecondaryPathID = "space"
)

// SecondaryPaths lists every secondary path in display order.
var SecondaryPaths = []SecondaryPathID{
	SecondaryMetal, SecondaryWood, SecondaryWater, SecondaryFire,
	SecondaryEarth, SecondaryTime, SecondarySpace,
}

type AbilityID string

const (
	AbilityIronBone            AbilityID = "iron_bone"
	AbilityGoldenBody          AbilityID = "golden_body"
	AbilityDivineStrength      AbilityID = "divine_strength"
	AbilityVajraBody           AbilityID = "vajra_body"
	AbilityImmortalFlesh       AbilityID = "immortal_flesh"
	AbilityDragonElephantMight AbilityID = "dragon_elephant_might"
)

type TreasureID string

const (
	TreasureBronzeHourglass   TreasureID = "bronze_hourglass"
	TreasureSilverChronometer TreasureID = "silver_chronometer"
)

// ModifierSource orders modifiers during aggregation.
type ModifierSource string

const (
	SourceBase          ModifierSource = "base"
	SourceTalent        ModifierSource = "talent"
	SourceCultivation   ModifierSource = "cultivation"
	SourceSecondaryPath ModifierSource = "secondary_path"
	SourceEquipment     ModifierSource = "equipment"
	SourceTemporary     ModifierSource = "temporary"
)

var sourcePriority = map[ModifierSource]int{
	SourceBase:          0,
	SourceTalent:        1,
	SourceCultivation:   2,
	SourceSecondaryPath: 3,
	SourceEquipment:     4,
	SourceTemporary:     5,
}

type BaseAttributes struct {
	Vitality       int `json:"vitality"`
	SpiritualPower int `json:"spiritualPower"`
	Comprehension  int `json:"comprehension"`
}

type DerivedAttributes struct {
	Mana            int     `json:"mana"`
	Offense         int     `json:"offense"`
	PhysicalDefense float64 `json:"physicalDefense"`
	MagicalDefense  float64 `json:"magicalDefense"`
	Health          int     `json:"health"`
	MaxHealth       int     `json:"maxHealth"`
}

// AttributeDeltas is a sparse set of per-stat adjustments. Health and
// MaxHealth entries both raise (or scale) health and max health together.
type AttributeDeltas struct {
	Vitality        float64 `json:"vitality,omitempty" yaml:"vitality,omitempty"`
	SpiritualPower  float64 `json:"spiritualPower,omitempty" yaml:"spiritualPower,omitempty"`
	Comprehension   float64 `json:"comprehension,omitempty" yaml:"comprehension,omitempty"`
	Mana            float64 `json:"mana,omitempty" yaml:"mana,omitempty"`
	Offense         float64 `json:"offense,omitempty" yaml:"offense,omitempty"`
	PhysicalDefense float64 `json:"physicalDefense,omitempty" yaml:"physicalDefense,omitempty"`
	MagicalDefense  float64 `json:"magicalDefense,omitempty" yaml:"magicalDefense,omitempty"`
	Health          float64 `json:"health,omitempty" yaml:"health,omitempty"`
	MaxHealth       float64 `json:"maxHealth,omitempty" yaml:"maxHealth,omitempty"`
}

func (d AttributeDeltas) add(o AttributeDeltas) AttributeDeltas {
	d.Vitality += o.Vitality
	d.SpiritualPower += o.SpiritualPower
	d.Comprehension += o.Comprehension
	d.Mana += o.Mana
	d.Offense += o.Offense
	d.PhysicalDefense += o.PhysicalDefense
	d.MagicalDefense += o.MagicalDefense
	d.Health += o.Health
	d.MaxHealth += o.MaxHealth
	return d
}

func (d AttributeDeltas) scale(f float64) AttributeDeltas {
	return AttributeDeltas{
		Vitality:        d.Vitality * f,
		SpiritualPower:  d.SpiritualPower * f,
		Comprehension:   d.Comprehension * f,
		Mana:            d.Mana * f,
		Offense:         d.Offense * f,
		PhysicalDefense: d.PhysicalDefense * f,
		MagicalDefense:  d.MagicalDefense * f,
		Health:          d.Health * f,
		MaxHealth:       d.MaxHealth * f,
	}
}

func (d AttributeDeltas) IsZero() bool {
	return d == AttributeDeltas{}
}

type Modifier struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Source  ModifierSource  `json:"source"`
	Flat    AttributeDeltas `json:"flat"`
	Percent AttributeDeltas `json:"percent"`
}

// LadderState is the persisted position on one ladder: the flat index over
// all sub-levels of all realms.
type LadderState struct {
	Level int `json:"level"`
}

type Cultivation struct {
	Qi   LadderState `json:"qi"`
	Body LadderState `json:"body"`
}

type PathProgress struct {
	Level      int     `json:"level"`
	Experience float64 `json:"experience"`
}

type AbilityState struct {
	Unlocked []AbilityID       `json:"unlocked"`
	Levels   map[AbilityID]int `json:"levels"`
}

// Has reports whether id has been unlocked.
func (a *AbilityState) Has(id AbilityID) bool {
	for _, u := range a.Unlocked {
		if u == id {
			return true
		}
	}
	return false
}

type Resources struct {
	SpiritualQi     float64 `json:"spiritualQi"`
	BodyEnergy      float64 `json:"bodyEnergy"`
	AbilityCurrency float64 `json:"abilityCurrency"`
}

// ResourceDelta is routed through the resource-gain mutator so statistics
// stay accurate.
type ResourceDelta struct {
	SpiritualQi     float64 `json:"spiritualQi,omitempty" yaml:"spiritualQi,omitempty"`
	BodyEnergy      float64 `json:"bodyEnergy,omitempty" yaml:"bodyEnergy,omitempty"`
	AbilityCurrency float64 `json:"abilityCurrency,omitempty" yaml:"abilityCurrency,omitempty"`
}

type Equipment struct {
	TimeTreasure TreasureID `json:"timeTreasure,omitempty"`
}

type Inventory struct {
	TimeTreasures []TreasureID `json:"timeTreasures"`
}

type Statistics struct {
	PlayTime                float64 `json:"playTime"`
	Explorations            int     `json:"explorations"`
	BreakthroughAttempts    int     `json:"breakthroughAttempts"`
	SuccessfulBreakthroughs int     `json:"successfulBreakthroughs"`
	TotalSpiritualQi        float64 `json:"totalSpiritualQi"`
	TotalBodyEnergy         float64 `json:"totalBodyEnergy"`
	TotalAbilityCurrency    float64 `json:"totalAbilityCurrency"`
}

type Character struct {
	Name   string   `json:"name"`
	Gender string   `json:"gender,omitempty"`
	Path   PathID   `json:"path"`
	Talent TalentID `json:"talent"`

	// Base holds intrinsic stats; Attributes holds them after modifiers.
	Base        BaseAttributes    `json:"base"`
	Attributes  BaseAttributes    `json:"attributes"`
	Derived     DerivedAttributes `json:"derived"`
	RewardBonus AttributeDeltas   `json:"rewardBonus"`
	Modifiers   []Modifier        `json:"modifiers"`

	Cultivation    Cultivation                       `json:"cultivation"`
	SecondaryPaths map[SecondaryPathID]*PathProgress `json:"secondaryPaths"`
	Abilities      AbilityState                      `json:"abilities"`
	Resources      Resources                         `json:"resources"`
	Equipment      Equipment                         `json:"equipment"`
	Inventory      Inventory                         `json:"inventory"`
	Stats          Statistics                        `json:"stats"`
}

// Ladder returns the state of the given ladder, or nil for an unknown kind.
func (c *Character) Ladder(kind LadderKind) *LadderState {
	switch kind {
	case LadderQi:
		return &c.Cultivation.Qi
	case LadderBody:
		return &c.Cultivation.Body
	default:
		return nil
	}
}

// Accumulated returns a pointer to the experience accumulator of a ladder.
func (c *Character) Accumulated(kind LadderKind) *float64 {
	switch kind {
	case LadderQi:
		return &c.Resources.SpiritualQi
	case LadderBody:
		return &c.Resources.BodyEnergy
	default:
		return nil
	}
}

// EventKind classifies notifications returned by engine operations.
type EventKind string

const (
	EventLevelUp        EventKind = "level_up"
	EventBreakthrough   EventKind = "breakthrough"
	EventPathLevelUp    EventKind = "path_level_up"
	EventPathInsight    EventKind = "path_insight"
	EventAbilityGained  EventKind = "ability_gained"
	EventAbilityUpgrade EventKind = "ability_upgraded"
	EventExploration    EventKind = "exploration"
	EventOffline        EventKind = "offline"
)

type Event struct {
	Kind   EventKind  `json:"kind"`
	Text   string     `json:"text"`
	Ladder LadderKind `json:"ladder,omitempty"`
	Level  int        `json:"level,omitempty"`
}
