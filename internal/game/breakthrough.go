package game

import (
	"fmt"
	"math"
)

type BreakthroughOutcome string

const (
	OutcomeSucceeded        BreakthroughOutcome = "succeeded"
	OutcomeFailed           BreakthroughOutcome = "failed"
	OutcomeConditionsNotMet BreakthroughOutcome = "conditions_not_met"
	OutcomeNotEligible      BreakthroughOutcome = "not_eligible"
)

type ConditionCheck struct {
	Condition Condition `json:"condition"`
	Current   int       `json:"current"`
	Met       bool      `json:"met"`
}

// BreakthroughStatus previews an attempt without rolling.
type BreakthroughStatus struct {
	Ladder      LadderKind       `json:"ladder"`
	Eligible    bool             `json:"eligible"`
	Reason      string           `json:"reason,omitempty"`
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	BaseRate    float64          `json:"baseRate"`
	Bonus       float64          `json:"bonus"`
	FinalRate   float64          `json:"finalRate"`
	RequiredMet bool             `json:"requiredMet"`
	Required    []ConditionCheck `json:"required"`
	Optional    []ConditionCheck `json:"optional"`
}

type BreakthroughResult struct {
	Outcome   BreakthroughOutcome `json:"outcome"`
	Success   bool                `json:"success"`
	FinalRate float64             `json:"finalRate"`
	Roll      *float64            `json:"roll,omitempty"`
	Message   string              `json:"message"`
	Status    BreakthroughStatus  `json:"status"`
	Events    []Event             `json:"events,omitempty"`
}

func evaluate(c *Character, cond Condition) ConditionCheck {
	var cur int
	switch cond.Kind {
	case ConditionPathTotal:
		cur = pathTotalLevel(c)
	case ConditionPathHighest:
		cur = pathHighestLevel(c)
	case ConditionAbilityTotal:
		cur = abilityTotalLevel(c)
	}
	return ConditionCheck{Condition: cond, Current: cur, Met: cur >= cond.Level}
}

// BreakthroughStatus reports whether a breakthrough may be attempted and what
// its success rate would be.
func (e *Engine) BreakthroughStatus(c *Character, kind LadderKind) BreakthroughStatus {
	st := BreakthroughStatus{Ladder: kind}
	l := e.Content.Ladder(kind)
	lad := c.Ladder(kind)
	if l == nil || lad == nil {
		st.Reason = "unknown cultivation ladder"
		return st
	}
	pos, ok := l.Locate(lad.Level)
	if !ok {
		st.Reason = "cultivation is beyond the known realms"
		return st
	}
	st.From = pos.Realm.Name
	if !pos.IsRealmFinal() {
		st.Reason = "not yet at the peak of the realm"
		return st
	}
	next, ok := l.NextRealmStart(lad.Level)
	cfg, hasCfg := e.Content.Breakthrough(kind, pos.Realm.ID)
	if !ok || !hasCfg {
		st.Reason = "no further realm to break into"
		return st
	}
	np, _ := l.Locate(next)
	st.To = np.Realm.Name
	if *c.Accumulated(kind) < pos.Level.Threshold {
		st.Reason = "not enough experience"
		return st
	}
	st.Eligible = true

	st.BaseRate = cfg.BaseRate * 100
	st.RequiredMet = true
	for _, cond := range cfg.Required {
		chk := evaluate(c, cond)
		st.Required = append(st.Required, chk)
		if !chk.Met {
			st.RequiredMet = false
		}
	}
	for _, cond := range cfg.Optional {
		chk := evaluate(c, cond)
		st.Optional = append(st.Optional, chk)
		if chk.Met {
			st.Bonus += cond.Bonus
		}
	}
	if st.RequiredMet {
		st.FinalRate = math.Min(st.BaseRate+st.Bonus, 100)
	}
	return st
}

// AttemptBreakthrough rolls a breakthrough into the next realm.
func (e *Engine) AttemptBreakthrough(c *Character, kind LadderKind) BreakthroughResult {
	st := e.BreakthroughStatus(c, kind)
	res := BreakthroughResult{Status: st}
	if !st.Eligible {
		res.Outcome = OutcomeNotEligible
		res.Message = "Breakthrough not possible: " + st.Reason + "."
		return res
	}

	c.Stats.BreakthroughAttempts++
	if !st.RequiredMet {
		res.Outcome = OutcomeConditionsNotMet
		res.Message = "The heavens reject you: the required conditions are not met."
		return res
	}

	res.FinalRate = st.FinalRate
	roll := e.Rand.Float64() * 100
	res.Roll = &roll
	l := e.Content.Ladder(kind)
	lad := c.Ladder(kind)
	pos, _ := l.Locate(lad.Level)
	acc := c.Accumulated(kind)

	if roll >= st.FinalRate {
		res.Outcome = OutcomeFailed
		res.Message = fmt.Sprintf("Breakthrough to %s failed (%.1f%% chance).", st.To, st.FinalRate)
		if cfg, ok := e.Content.Breakthrough(kind, pos.Realm.ID); ok && cfg.FailurePenalty > 0 {
			e.gainResources(c, ladderDelta(kind, -pos.Level.Threshold*cfg.FailurePenalty))
		}
		return res
	}

	next, _ := l.NextRealmStart(lad.Level)
	*acc -= pos.Level.Threshold
	lad.Level = next
	np, _ := l.Locate(next)
	e.applyRewards(c, np.Level.Rewards)
	c.Stats.SuccessfulBreakthroughs++

	res.Outcome = OutcomeSucceeded
	res.Success = true
	res.Message = fmt.Sprintf("You broke through to %s!", np.Realm.Name)
	// leftover experience waits for the next gain
	res.Events = []Event{{
		Kind:   EventBreakthrough,
		Text:   res.Message,
		Ladder: kind,
		Level:  next,
	}}
	return res
}
