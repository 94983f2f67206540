package web

import (
	"fmt"
	"net/http"

	"cultivation/internal/game"
	"cultivation/internal/report"

	"github.com/go-chi/chi/v5"
)

// GET /api/game
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	s.respondView(w, http.StatusOK, gameFrom(r.Context()))
}

// POST /api/game/save
func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r.Context())
	if err := s.saveGame(r, g); err != nil {
		writeErr(w, err)
		return
	}
	g.TakeDirty()
	w.WriteHeader(http.StatusNoContent)
}

type activityRequest struct {
	Activity game.ActivityID `json:"activity"`
}

// POST /api/game/activity
func (s *Server) handleSetActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if !decode(w, r, &req) {
		return
	}
	g := gameFrom(r.Context())
	ok := false
	g.Do(func(ss *game.Session) []game.Event {
		ok = s.Engine.SetActivity(ss, req.Activity)
		return nil
	})
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown activity")
		return
	}
	s.respondView(w, http.StatusOK, g)
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

// POST /api/game/speed
func (s *Server) handleSetSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if !decode(w, r, &req) {
		return
	}
	var speed float64
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		speed = s.Engine.SetSpeed(ss, req.Speed)
		return nil
	})
	writeJSON(w, http.StatusOK, speedRequest{Speed: speed})
}

type equipRequest struct {
	Treasure game.TreasureID `json:"treasure"`
}

// POST /api/game/equip
func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	var req equipRequest
	if !decode(w, r, &req) {
		return
	}
	g := gameFrom(r.Context())
	ok := false
	g.Do(func(ss *game.Session) []game.Event {
		ok = s.Engine.EquipTreasure(ss.Character, req.Treasure)
		return nil
	})
	if !ok {
		writeError(w, http.StatusBadRequest, "treasure not owned")
		return
	}
	s.respondView(w, http.StatusOK, g)
}

// POST /api/game/hidden
func (s *Server) handleHidden(w http.ResponseWriter, r *http.Request) {
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		s.Engine.RecordHidden(ss, s.Engine.Now())
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/game/visible
func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	var rep game.OfflineReport
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		rep = s.Engine.ProcessOfflineTime(ss, s.Engine.Now())
		return rep.Events
	})
	writeJSON(w, http.StatusOK, rep)
}

type explorationRequest struct {
	Area string `json:"area"`
}

// POST /api/game/exploration
func (s *Server) handleStartExploration(w http.ResponseWriter, r *http.Request) {
	var req explorationRequest
	if !decode(w, r, &req) {
		return
	}
	g := gameFrom(r.Context())
	ok := false
	g.Do(func(ss *game.Session) []game.Event {
		ok = s.Engine.StartExploration(ss, req.Area)
		return nil
	})
	if !ok {
		writeError(w, http.StatusConflict, "cannot explore "+req.Area)
		return
	}
	s.respondView(w, http.StatusOK, g)
}

// POST /api/game/exploration/complete
func (s *Server) handleCompleteExploration(w http.ResponseWriter, r *http.Request) {
	var res *game.ExplorationResult
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		var events []game.Event
		res, events = s.Engine.CompleteExploration(ss)
		return events
	})
	if res == nil {
		writeError(w, http.StatusConflict, "no finished exploration")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /api/game/exploration
func (s *Server) handleCancelExploration(w http.ResponseWriter, r *http.Request) {
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		s.Engine.CancelExploration(ss)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ladderParam(w http.ResponseWriter, r *http.Request) (game.LadderKind, bool) {
	kind := game.LadderKind(chi.URLParam(r, "ladder"))
	if s.Engine.Content.Ladder(kind) == nil {
		writeError(w, http.StatusNotFound, "unknown ladder")
		return "", false
	}
	return kind, true
}

// GET /api/game/breakthrough/{ladder}
func (s *Server) handleBreakthroughStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.ladderParam(w, r)
	if !ok {
		return
	}
	var st game.BreakthroughStatus
	gameFrom(r.Context()).View(func(ss *game.Session) {
		st = s.Engine.BreakthroughStatus(ss.Character, kind)
	})
	writeJSON(w, http.StatusOK, st)
}

// POST /api/game/breakthrough/{ladder}
func (s *Server) handleAttemptBreakthrough(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.ladderParam(w, r)
	if !ok {
		return
	}
	var res game.BreakthroughResult
	gameFrom(r.Context()).Do(func(ss *game.Session) []game.Event {
		res = s.Engine.AttemptBreakthrough(ss.Character, kind)
		return res.Events
	})
	writeJSON(w, http.StatusOK, res)
}

// POST /api/game/abilities/{id}/upgrade
func (s *Server) handleUpgradeAbility(w http.ResponseWriter, r *http.Request) {
	id := game.AbilityID(chi.URLParam(r, "id"))
	g := gameFrom(r.Context())
	ok := false
	g.Do(func(ss *game.Session) []game.Event {
		var events []game.Event
		ok, events = s.Engine.UpgradeAbility(ss.Character, id)
		return events
	})
	if !ok {
		writeError(w, http.StatusConflict, fmt.Sprintf("cannot upgrade %s", id))
		return
	}
	s.respondView(w, http.StatusOK, g)
}

// POST /api/game/modifiers
func (s *Server) handleAddModifier(w http.ResponseWriter, r *http.Request) {
	var m game.Modifier
	if !decode(w, r, &m) {
		return
	}
	g := gameFrom(r.Context())
	var err error
	g.Do(func(ss *game.Session) []game.Event {
		err = s.Engine.AddAttributeModifier(ss.Character, m)
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	s.respondView(w, http.StatusOK, g)
}

// DELETE /api/game/modifiers/{id}
func (s *Server) handleRemoveModifier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g := gameFrom(r.Context())
	g.Do(func(ss *game.Session) []game.Event {
		s.Engine.RemoveAttributeModifier(ss.Character, id)
		return nil
	})
	s.respondView(w, http.StatusOK, g)
}

// GET /api/game/report.pdf
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var (
		pdf []byte
		err error
	)
	gameFrom(r.Context()).View(func(ss *game.Session) {
		pdf, err = report.Generate(s.Engine.Content, ss.Character, s.Engine.Now())
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="cultivation-record.pdf"`)
	_, _ = w.Write(pdf)
}
