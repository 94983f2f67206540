package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cultivation/internal/game"
	"cultivation/internal/live"

	"github.com/go-chi/chi/v5"
)

// maxImportSize bounds uploaded archives; the archive reader enforces its own
// limit on the decompressed size.
const maxImportSize = 1 << 20

type createCharacterRequest struct {
	game.CreationPayload
	SaveName string `json:"saveName"`
}

// POST /api/characters
func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.Engine.NewCharacter(req.CreationPayload)
	if err != nil {
		writeErr(w, err)
		return
	}
	save, err := s.Saves.Create(r.Context(), req.SaveName, c)
	if err != nil {
		writeErr(w, err)
		return
	}
	g := s.Table.Add(save.ID, game.NewSession(c))
	slog.Info("character created", "save", save.ID, "path", c.Path, "talent", c.Talent)

	setSessionCookie(w, save.ID)
	s.respondView(w, http.StatusCreated, g)
}

// GET /api/characters/roll
func (s *Server) handleRollAttributes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, game.RollBaseAttributes(s.Engine.Rand))
}

// GET /api/saves
func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	list, err := s.Saves.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/saves/{id}/load
func (s *Server) handleLoadSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// A slot that is already live keeps its unsaved progress.
	g, err := s.liveGame(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookie(w, id)
	s.respondView(w, http.StatusOK, g)
}

type renameRequest struct {
	Name string `json:"name"`
}

// PATCH /api/saves/{id}
func (s *Server) handleRenameSave(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.Saves.Rename(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/saves/{id}
func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Saves.Delete(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	s.Table.Remove(id)
	if s.sessionID(r) == id {
		clearSessionCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/saves/{id}/export
func (s *Server) handleExportSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// flush live progress first so the archive is current
	if g, ok := s.Table.Get(id); ok {
		if err := s.saveGame(r, g); err != nil {
			writeErr(w, err)
			return
		}
	}
	data, err := s.Saves.Export(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cultivation-"+id+".save"))
	_, _ = w.Write(data)
}

// POST /api/saves/import
func (s *Server) handleImportSave(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "archive too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	save, err := s.Saves.Import(r.Context(), data)
	if err != nil {
		writeErr(w, err)
		return
	}
	slog.Info("save imported", "save", save.ID)
	writeJSON(w, http.StatusCreated, save)
}

func (s *Server) saveGame(r *http.Request, g *live.Game) error {
	var err error
	g.View(func(ss *game.Session) {
		err = s.Saves.Save(r.Context(), g.ID, ss.Character)
	})
	return err
}

func (s *Server) respondView(w http.ResponseWriter, status int, g *live.Game) {
	vm, err := s.makeView(g)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, status, vm)
}
