package game

import (
	"testing"
	"time"
)

// stubRand replays scripted values, then falls back to fixed ones.
type stubRand struct {
	floats   []float64
	fallback float64
	ints     []int
	calls    int
}

func (r *stubRand) Float64() float64 {
	r.calls++
	if len(r.floats) > 0 {
		v := r.floats[0]
		r.floats = r.floats[1:]
		return v
	}
	return r.fallback
}

func (r *stubRand) Intn(n int) int {
	if len(r.ints) > 0 {
		v := r.ints[0]
		r.ints = r.ints[1:]
		if v < n {
			return v
		}
	}
	return 0
}

func (r *stubRand) Shuffle(int, func(i, j int)) {}

func testContent() *Content {
	c := &Content{
		Insight: InsightConfig{BaseProbability: 0.1, Amount: [2]int{1, 1}},
		Talents: []Talent{
			{ID: TalentIronBody, Name: "Iron Body"},
			{ID: TalentWiseMind, Name: "Wise Mind", Flat: AttributeDeltas{Comprehension: 5}},
			{ID: TalentLuckyStar, Name: "Lucky Star", RareFindMultiplier: 2},
		},
		Paths: []Path{
			{ID: PathQi, Name: "Qi Cultivation", Efficiency: map[ActivityType]float64{ActivityCultivation: 2, ActivityBody: 0.5}},
		},
		Activities: []Activity{
			{ID: ActivityMeditation, Name: "Meditation", Type: ActivityCultivation, BaseRate: 1},
			{ID: ActivityBodyTraining, Name: "Body Training", Type: ActivityBody, BaseRate: 1},
			{ID: ActivityExploration, Name: "Exploration", Type: ActivityAdventure},
		},
		Abilities: []Ability{
			{ID: AbilityIronBone, Name: "Iron Bone", MaxLevel: 3, BaseCost: 10, CostMultiplier: 2, FlatPerLevel: AttributeDeltas{PhysicalDefense: 2}},
			{ID: AbilityGoldenBody, Name: "Golden Body", MaxLevel: 3, BaseCost: 10, CostMultiplier: 2, FlatPerLevel: AttributeDeltas{Health: 20}},
		},
		Treasures: []Treasure{{ID: TreasureBronzeHourglass, Name: "Bronze Hourglass", Multiplier: 1.5}},
		Ladders: []Ladder{
			{Kind: LadderQi, Realms: []Realm{
				{ID: "a", Name: "Realm A", Levels: []SubLevel{
					{ID: "a1", Threshold: 100},
					{ID: "a2", Threshold: 100, Rewards: RewardBundle{Base: AttributeDeltas{SpiritualPower: 1}}},
					{ID: "a3", Threshold: 100, Rewards: RewardBundle{Derived: AttributeDeltas{Mana: 5}}},
				}},
				{ID: "b", Name: "Realm B", Levels: []SubLevel{
					{ID: "b1", Threshold: 200, Rewards: RewardBundle{Base: AttributeDeltas{Comprehension: 1}}},
					{ID: "b2", Threshold: 200},
				}},
			}},
			{Kind: LadderBody, Realms: []Realm{
				{ID: "c", Name: "Realm C", Levels: []SubLevel{
					{ID: "c1", Threshold: 50},
					{ID: "c2", Threshold: 50, Rewards: RewardBundle{Derived: AttributeDeltas{Health: 10}}},
				}},
				{ID: "d", Name: "Realm D", Levels: []SubLevel{{ID: "d1", Threshold: 80}}},
			}},
		},
		Breakthroughs: []BreakthroughConfig{
			{Ladder: LadderQi, From: "a", To: "b", BaseRate: 0.5,
				Optional: []Condition{{Kind: ConditionPathTotal, Level: 1, Bonus: 10}}},
			{Ladder: LadderBody, From: "c", To: "d", BaseRate: 0.5,
				Required: []Condition{{Kind: ConditionAbilityTotal, Level: 1}}},
		},
		Areas: []Area{
			{ID: "grove", Name: "Grove", Level: 1, DurationSeconds: 10, MaxEvents: 1, Events: []AreaEvent{
				{ID: "herbs", Name: "Herbs", Probability: 1, Rewards: RewardTable{SpiritualQi: &RangeReward{Range: [2]int{5, 5}, Probability: 1}}},
				{ID: "boar", Name: "Boar", Probability: 1, Rewards: RewardTable{BodyEnergy: &RangeReward{Range: [2]int{7, 7}, Probability: 1}}},
			}},
			{ID: "cave", Name: "Cave", Level: 3, DurationSeconds: 10, MaxEvents: 2},
		},
	}
	for _, id := range SecondaryPaths {
		c.SecondaryPaths = append(c.SecondaryPaths, SecondaryPath{ID: id, Name: string(id), MaxLevel: 10, ExperiencePerLevel: 10})
	}
	return c
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestEngine(t *testing.T, r *stubRand) (*Engine, *testClock) {
	t.Helper()
	content := testContent()
	if err := content.Validate(); err != nil {
		t.Fatalf("test content invalid: %v", err)
	}
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return &Engine{Content: content, Rand: r, Now: clock.Now}, clock
}

func newTestCharacter(t *testing.T, e *Engine) *Character {
	t.Helper()
	c, err := e.NewCharacter(CreationPayload{
		Name:       "Lin",
		Path:       PathQi,
		Talent:     TalentIronBody,
		Attributes: BaseAttributes{Vitality: 10, SpiritualPower: 10, Comprehension: 10},
	})
	if err != nil {
		t.Fatalf("Unexpected error creating character: %v", err)
	}
	return c
}
