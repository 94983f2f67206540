package game

import (
	"math"
	"testing"
	"time"
)

func TestTick_AccruesByFormula(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{fallback: 0.99})
	c := newTestCharacter(t, e)
	s := NewSession(c)

	e.Tick(s, 10)

	// 1/s * 10s * speed 1 * no treasure * efficiency 2
	if c.Resources.SpiritualQi != 20 {
		t.Errorf("Expected 20 qi, got %v", c.Resources.SpiritualQi)
	}
	if c.Stats.PlayTime != 10 {
		t.Errorf("Expected play time 10, got %v", c.Stats.PlayTime)
	}

	c.Inventory.TimeTreasures = []TreasureID{TreasureBronzeHourglass}
	if !e.EquipTreasure(c, TreasureBronzeHourglass) {
		t.Fatal("Expected owned treasure to equip")
	}
	e.SetSpeed(s, 2)
	e.Tick(s, 10)

	if c.Resources.SpiritualQi != 80 {
		t.Errorf("Expected 80 qi, got %v", c.Resources.SpiritualQi)
	}
}

func TestTick_BodyTrainingFeedsBodyLadder(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{fallback: 0.99})
	c := newTestCharacter(t, e)
	s := NewSession(c)
	e.SetActivity(s, ActivityBodyTraining)

	e.Tick(s, 20)

	if c.Resources.BodyEnergy != 10 {
		t.Errorf("Expected 10 body energy, got %v", c.Resources.BodyEnergy)
	}
	if c.Resources.SpiritualQi != 0 {
		t.Errorf("Expected no qi, got %v", c.Resources.SpiritualQi)
	}
}

func TestTick_NoActivityOrHidden(t *testing.T) {
	e, clock := newTestEngine(t, &stubRand{fallback: 0.99})
	c := newTestCharacter(t, e)
	s := NewSession(c)

	e.SetActivity(s, "")
	e.Tick(s, 10)
	if c.Resources.SpiritualQi != 0 {
		t.Errorf("Expected no gain without activity, got %v", c.Resources.SpiritualQi)
	}

	e.SetActivity(s, ActivityMeditation)
	e.RecordHidden(s, clock.now)
	e.Tick(s, 10)
	if c.Resources.SpiritualQi != 0 {
		t.Errorf("Expected no foreground gain while hidden, got %v", c.Resources.SpiritualQi)
	}
}

func TestTick_InsightGrantsPathExperience(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{floats: []float64{0}, fallback: 0.99})
	c := newTestCharacter(t, e)
	s := NewSession(c)

	events := e.Tick(s, 1)

	if c.SecondaryPaths[SecondaryMetal].Experience != 1 {
		t.Errorf("Expected 1 metal experience, got %v", c.SecondaryPaths[SecondaryMetal].Experience)
	}
	found := false
	for _, ev := range events {
		if ev.Kind == EventPathInsight {
			found = true
		}
	}
	if !found {
		t.Error("Expected an insight event")
	}
}

func TestInsightChance_Capped(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	if got := e.InsightChance(c); math.Abs(got-0.1001) > 1e-12 {
		t.Errorf("Expected comprehension-scaled chance, got %v", got)
	}

	e.Content.Insight.BaseProbability = 0.9
	if got := e.InsightChance(c); got != 0.5 {
		t.Errorf("Expected chance capped at 0.5, got %v", got)
	}
}

func TestProcessOfflineTime_BelowFloor(t *testing.T) {
	e, clock := newTestEngine(t, &stubRand{fallback: 0.99})
	c := newTestCharacter(t, e)
	s := NewSession(c)

	e.RecordHidden(s, clock.now)
	rep := e.ProcessOfflineTime(s, clock.now.Add(4*time.Second))

	if rep.Applied || len(rep.Events) != 0 {
		t.Errorf("Expected no catch-up under the floor, got %+v", rep)
	}
	if c.Resources.SpiritualQi != 0 {
		t.Errorf("Expected no gain, got %v", c.Resources.SpiritualQi)
	}
	if s.Hidden() {
		t.Error("Expected session to be visible again")
	}
}

func TestProcessOfflineTime_MatchesForeground(t *testing.T) {
	r := &stubRand{fallback: 0.99}
	e, clock := newTestEngine(t, r)
	online := NewSession(newTestCharacter(t, e))
	offline := NewSession(newTestCharacter(t, e))

	e.Tick(online, 60)

	e.RecordHidden(offline, clock.now)
	r.calls = 0
	rep := e.ProcessOfflineTime(offline, clock.now.Add(60*time.Second))

	if !rep.Applied {
		t.Fatal("Expected catch-up to apply")
	}
	if rep.SpiritualQi != 120 {
		t.Errorf("Expected 120 qi credited, got %v", rep.SpiritualQi)
	}
	if online.Character.Cultivation.Qi.Level != offline.Character.Cultivation.Qi.Level ||
		online.Character.Resources.SpiritualQi != offline.Character.Resources.SpiritualQi {
		t.Errorf("Expected offline to match foreground, got level %d/%v vs %d/%v",
			offline.Character.Cultivation.Qi.Level, offline.Character.Resources.SpiritualQi,
			online.Character.Cultivation.Qi.Level, online.Character.Resources.SpiritualQi)
	}
	if r.calls != 60 {
		t.Errorf("Expected one insight roll per second (60), got %d", r.calls)
	}

	// once per transition
	again := e.ProcessOfflineTime(offline, clock.now.Add(120*time.Second))
	if again.Applied {
		t.Error("Expected a second call without hiding to do nothing")
	}
}

func TestSetSpeed_Clamped(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	s := NewSession(newTestCharacter(t, e))

	if got := e.SetSpeed(s, 10); got != MaxSpeed {
		t.Errorf("Expected %v, got %v", MaxSpeed, got)
	}
	if got := e.SetSpeed(s, 0.1); got != MinSpeed {
		t.Errorf("Expected %v, got %v", MinSpeed, got)
	}
}

func TestEquipTreasure_MustOwn(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	if e.EquipTreasure(c, TreasureSilverChronometer) {
		t.Error("Expected unowned treasure to be refused")
	}
	if !e.EquipTreasure(c, "") {
		t.Error("Expected unequip to succeed")
	}
}
