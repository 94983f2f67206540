package web

import (
	"encoding/json"
	"time"

	"cultivation/internal/game"
	"cultivation/internal/live"
)

// LadderView summarises the character's place on one ladder.
type LadderView struct {
	Kind         game.LadderKind         `json:"kind"`
	Level        int                     `json:"level"`
	Title        string                  `json:"title"`
	Accumulated  float64                 `json:"accumulated"`
	Threshold    float64                 `json:"threshold"`
	Capped       bool                    `json:"capped"`
	Breakthrough game.BreakthroughStatus `json:"breakthrough"`
}

type ExplorationView struct {
	AreaID  string    `json:"areaId"`
	EndsAt  time.Time `json:"endsAt"`
	Ready   bool      `json:"ready"`
	Seconds float64   `json:"secondsLeft"`
}

// GameView is everything the client renders for a live game.
type GameView struct {
	SaveID      string           `json:"saveId"`
	Character   json.RawMessage  `json:"character"`
	Power       int              `json:"power"`
	Activity    game.ActivityID  `json:"activity"`
	Speed       float64          `json:"speed"`
	Hidden      bool             `json:"hidden"`
	Exploration *ExplorationView `json:"exploration,omitempty"`
	Ladders     []LadderView     `json:"ladders"`
	Messages    []game.Event     `json:"messages"`
}

func (s *Server) makeView(g *live.Game) (GameView, error) {
	vm := GameView{SaveID: g.ID}
	var err error
	g.View(func(ss *game.Session) {
		c := ss.Character
		vm.Character, err = json.Marshal(c)
		vm.Power = game.TotalPower(c)
		vm.Activity = ss.Activity
		vm.Speed = ss.Speed
		vm.Hidden = ss.Hidden()
		if ex := ss.Exploration; ex != nil {
			end := ex.StartedAt.Add(ex.Duration)
			vm.Exploration = &ExplorationView{
				AreaID:  ex.AreaID,
				EndsAt:  end,
				Ready:   s.Engine.ExplorationReady(ss),
				Seconds: max(end.Sub(s.Engine.Now()).Seconds(), 0),
			}
		}
		for _, kind := range []game.LadderKind{game.LadderQi, game.LadderBody} {
			vm.Ladders = append(vm.Ladders, s.ladderView(c, kind))
		}
	})
	if err != nil {
		return GameView{}, err
	}
	vm.Messages = g.Messages()
	return vm, nil
}

func (s *Server) ladderView(c *game.Character, kind game.LadderKind) LadderView {
	st := c.Ladder(kind)
	lv := LadderView{
		Kind:         kind,
		Level:        st.Level,
		Accumulated:  *c.Accumulated(kind),
		Capped:       !s.Engine.CanGain(c, kind),
		Breakthrough: s.Engine.BreakthroughStatus(c, kind),
	}
	if l := s.Engine.Content.Ladder(kind); l != nil {
		if pos, ok := l.Locate(st.Level); ok {
			lv.Title = pos.Title()
			lv.Threshold = pos.Level.Threshold
		}
	}
	return lv
}
