package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cultivation/internal/game"
	"cultivation/internal/live"
	"cultivation/internal/saves"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Engine *game.Engine
	Saves  *saves.Manager
	Table  *live.Table
	Hub    *Hub
}

const cookieName = "cultivation_sid"

// NewServer wires the live table's notifications into the hub.
func NewServer(engine *game.Engine, sv *saves.Manager, table *live.Table, hub *Hub) *Server {
	if hub != nil {
		table.Publish = hub.Publish
	}
	return &Server{Engine: engine, Saves: sv, Table: table, Hub: hub}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/characters", s.handleCreateCharacter)
		r.Get("/characters/roll", s.handleRollAttributes)

		r.Route("/saves", func(r chi.Router) {
			r.Get("/", s.handleListSaves)
			r.Post("/import", s.handleImportSave)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/load", s.handleLoadSave)
				r.Patch("/", s.handleRenameSave)
				r.Delete("/", s.handleDeleteSave)
				r.Get("/export", s.handleExportSave)
			})
		})

		r.Route("/game", func(r chi.Router) {
			r.Use(s.withGame)
			r.Get("/", s.handleGame)
			r.Post("/save", s.handleSaveGame)
			r.Post("/activity", s.handleSetActivity)
			r.Post("/speed", s.handleSetSpeed)
			r.Post("/equip", s.handleEquip)
			r.Post("/hidden", s.handleHidden)
			r.Post("/visible", s.handleVisible)
			r.Post("/exploration", s.handleStartExploration)
			r.Post("/exploration/complete", s.handleCompleteExploration)
			r.Delete("/exploration", s.handleCancelExploration)
			r.Get("/breakthrough/{ladder}", s.handleBreakthroughStatus)
			r.Post("/breakthrough/{ladder}", s.handleAttemptBreakthrough)
			r.Post("/abilities/{id}/upgrade", s.handleUpgradeAbility)
			r.Post("/modifiers", s.handleAddModifier)
			r.Delete("/modifiers/{id}", s.handleRemoveModifier)
			r.Get("/report.pdf", s.handleReport)
		})
	})

	r.Get("/ws", s.handleWebsocket)
	return r
}

type gameKey struct{}

// withGame resolves the cookie's save slot to a live game, resuming it from
// the save store when the server has not seen it yet.
func (s *Server) withGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(r)
		if id == "" {
			writeError(w, http.StatusNotFound, "no active game")
			return
		}
		g, err := s.liveGame(r.Context(), id)
		if err != nil {
			if errors.Is(err, saves.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no active game")
				return
			}
			writeErr(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), gameKey{}, g)))
	})
}

func gameFrom(ctx context.Context) *live.Game {
	g, _ := ctx.Value(gameKey{}).(*live.Game)
	return g
}

func (s *Server) liveGame(ctx context.Context, id string) (*live.Game, error) {
	return s.Table.GetOrAdd(id, func() (*game.Session, error) {
		c, _, err := s.Saves.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		slog.Info("game resumed", "save", id)
		return game.NewSession(c), nil
	})
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, saves.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, saves.ErrSlotsFull):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, saves.ErrInvalidName),
		errors.Is(err, saves.ErrInvalidArchive),
		errors.Is(err, game.ErrInvalidCharacter),
		errors.Is(err, game.ErrUnknownPath),
		errors.Is(err, game.ErrUnknownTalent),
		errors.Is(err, game.ErrInvalidModifier):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
