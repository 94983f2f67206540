package game

import (
	"math/rand"
	"testing"
)

func TestLadderLocate(t *testing.T) {
	l := testContent().Ladder(LadderQi)

	if l.Len() != 5 {
		t.Errorf("Expected 5 sub-levels, got %d", l.Len())
	}

	pos, ok := l.Locate(3)
	if !ok {
		t.Fatal("Expected index 3 to exist")
	}
	if pos.Realm.ID != "b" || pos.IndexInRealm != 0 {
		t.Errorf("Expected realm b index 0, got %s index %d", pos.Realm.ID, pos.IndexInRealm)
	}

	pos, _ = l.Locate(2)
	if !pos.IsRealmFinal() {
		t.Error("Expected index 2 to be realm-final")
	}

	if _, ok := l.Locate(5); ok {
		t.Error("Expected index 5 to be exhausted")
	}
	if _, ok := l.Locate(-1); ok {
		t.Error("Expected negative index to be exhausted")
	}

	next, ok := l.NextRealmStart(1)
	if !ok || next != 3 {
		t.Errorf("Expected next realm start 3, got %d (%v)", next, ok)
	}
	if _, ok := l.NextRealmStart(4); ok {
		t.Error("Expected no realm after the last one")
	}

	if got := l.TotalExpForLevel(4); got != 500 {
		t.Errorf("Expected 500 total experience for level 4, got %v", got)
	}
}

func TestGainExperience_StopsAtRealmPeak(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	ok, events := e.GainPrimaryExperience(c, 1000)
	if !ok {
		t.Fatal("Expected gain to be accepted")
	}
	if c.Cultivation.Qi.Level != 2 {
		t.Errorf("Expected level 2, got %d", c.Cultivation.Qi.Level)
	}
	if c.Resources.SpiritualQi != 800 {
		t.Errorf("Expected 800 remaining, got %v", c.Resources.SpiritualQi)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 level-up events, got %d", len(events))
	}
	if c.Stats.TotalSpiritualQi != 1000 {
		t.Errorf("Expected total qi 1000, got %v", c.Stats.TotalSpiritualQi)
	}
}

func TestGainExperience_RewardsEveryLevel(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	e.GainPrimaryExperience(c, 250)

	if c.Base.SpiritualPower != 11 {
		t.Errorf("Expected base spiritual power 11, got %d", c.Base.SpiritualPower)
	}
	// 5 + 2*11 plus the one-time +5
	if c.Derived.Mana != 32 {
		t.Errorf("Expected mana 32, got %d", c.Derived.Mana)
	}

	// a later recompute keeps the one-time bonus
	_ = e.AddAttributeModifier(c, Modifier{ID: "noop", Source: SourceTemporary})
	if c.Derived.Mana != 32 {
		t.Errorf("Expected mana 32 after recompute, got %d", c.Derived.Mana)
	}
}

func TestGainExperience_SplitEqualsWhole(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	whole := newTestCharacter(t, e)
	split := newTestCharacter(t, e)

	e.GainPrimaryExperience(whole, 250)
	e.GainPrimaryExperience(split, 100)
	e.GainPrimaryExperience(split, 150)

	if whole.Cultivation.Qi.Level != split.Cultivation.Qi.Level {
		t.Errorf("Expected same level, got %d and %d", whole.Cultivation.Qi.Level, split.Cultivation.Qi.Level)
	}
	if whole.Resources.SpiritualQi != split.Resources.SpiritualQi {
		t.Errorf("Expected same accumulator, got %v and %v", whole.Resources.SpiritualQi, split.Resources.SpiritualQi)
	}
	if whole.Derived != split.Derived {
		t.Errorf("Expected same derived attributes, got %+v and %+v", whole.Derived, split.Derived)
	}
}

func TestGainExperience_CarriesRemainder(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)
	c.Resources.SpiritualQi = 90

	e.GainPrimaryExperience(c, 20)

	if c.Cultivation.Qi.Level != 1 {
		t.Errorf("Expected level 1, got %d", c.Cultivation.Qi.Level)
	}
	if c.Resources.SpiritualQi != 10 {
		t.Errorf("Expected 10 carried over, got %v", c.Resources.SpiritualQi)
	}
}

func TestGainExperience_RandomGrantsNeverCrossRealm(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	r := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		c := newTestCharacter(t, e)
		split := newTestCharacter(t, e)
		total := 0
		for i := 0; i < 20; i++ {
			amount := 1 + r.Intn(60)
			total += amount
			e.GainPrimaryExperience(split, float64(amount))
			if split.Cultivation.Qi.Level > 2 {
				t.Fatalf("Expected to stay in the first realm, got level %d", split.Cultivation.Qi.Level)
			}
		}
		e.GainPrimaryExperience(c, float64(total))
		if c.Cultivation.Qi.Level != split.Cultivation.Qi.Level || c.Resources.SpiritualQi != split.Resources.SpiritualQi {
			t.Errorf("Expected one grant of %d to match the split grants, got %d/%v and %d/%v", total,
				c.Cultivation.Qi.Level, c.Resources.SpiritualQi, split.Cultivation.Qi.Level, split.Resources.SpiritualQi)
		}
	}
}

func TestGainExperience_HealthRewardRaisesBoth(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	e.GainSecondaryExperience(c, 50)

	if c.Cultivation.Body.Level != 1 {
		t.Fatalf("Expected body level 1, got %d", c.Cultivation.Body.Level)
	}
	if c.Derived.MaxHealth != 110 || c.Derived.Health != 110 {
		t.Errorf("Expected health 110/110, got %d/%d", c.Derived.Health, c.Derived.MaxHealth)
	}
}

func TestGainExperience_Refused(t *testing.T) {
	e, _ := newTestEngine(t, &stubRand{})
	c := newTestCharacter(t, e)

	if ok, _ := e.GainPrimaryExperience(c, 0); ok {
		t.Error("Expected zero gain to be refused")
	}
	if ok, _ := e.GainPrimaryExperience(c, -5); ok {
		t.Error("Expected negative gain to be refused")
	}

	// final sub-level of the final realm with a full accumulator
	c.Cultivation.Qi.Level = 4
	c.Resources.SpiritualQi = 200
	if ok, _ := e.GainPrimaryExperience(c, 10); ok {
		t.Error("Expected gain at ladder cap to be refused")
	}
	if c.Resources.SpiritualQi != 200 {
		t.Errorf("Expected accumulator unchanged, got %v", c.Resources.SpiritualQi)
	}

	c.Resources.SpiritualQi = 150
	if ok, _ := e.GainPrimaryExperience(c, 10); !ok {
		t.Error("Expected gain below the final threshold to be accepted")
	}
}
