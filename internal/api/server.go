package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"raisingsim/internal/config"
	"raisingsim/internal/export"
	"raisingsim/internal/game"
	"raisingsim/internal/session"
	"raisingsim/internal/store"
)

var errNoSave = errors.New("no saved game in slot")

type Server struct {
	cfg      config.Config
	log      *slog.Logger
	engine   *game.Engine
	sessions *session.Manager
	store    store.Backend
	mux      *chi.Mux
}

func New(cfg config.Config, logger *slog.Logger, engine *game.Engine, sessions *session.Manager, backend store.Backend) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		engine:   engine,
		sessions: sessions,
		store:    backend,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.sessions.Len()})
	})

	r.Route("/v1/games", func(r chi.Router) {
		r.Post("/", s.handleCreateGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/characters", s.handleAddCharacter)
			r.Patch("/characters/{charID}", s.handleEditCharacter)
			r.Delete("/characters/{charID}", s.handleRemoveCharacter)
			r.Put("/relations/{fromID}/{toID}", s.handleSetPreset)
			r.Put("/settings", s.handleSettings)
			r.Post("/advance", s.handleAdvance)
			r.Get("/cards", s.handleCards)
			r.Post("/cards/{cardID}/choice", s.handleChoice)
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
			r.Get("/export", s.handleExport)
		})
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	st := game.NewState()
	st.UpdateSettings(s.cfg.NewGameSettings())
	id := s.sessions.Create(st)
	s.log.Info("game created", "session", id)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": st})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		return writeLocked(w, http.StatusOK, sess.State)
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Drop(chi.URLParam(r, "id")) {
		s.writeDomainError(w, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddCharacter(w http.ResponseWriter, r *http.Request) {
	var in game.CharacterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var out *game.Character
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		c, err := sess.State.AddCharacter(in)
		out = c
		return err
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleEditCharacter(w http.ResponseWriter, r *http.Request) {
	var in game.CharacterEdit
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var out *game.Character
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		c, err := sess.State.EditCharacter(chi.URLParam(r, "charID"), in)
		out = c
		return err
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRemoveCharacter(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		return sess.State.RemoveCharacter(chi.URLParam(r, "charID"))
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPreset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Preset game.Preset `json:"preset"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var out *game.Relationship
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		rel, err := sess.State.SetRelationPreset(chi.URLParam(r, "fromID"), chi.URLParam(r, "toID"), in.Preset)
		out = rel
		return err
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var in game.Settings
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var out game.Settings
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		sess.State.UpdateSettings(in)
		out = sess.State.Settings
		return nil
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Selections map[string]game.Activity `json:"selections"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		entries, err := s.engine.AdvancePeriod(r.Context(), sess.State, in.Selections)
		if err != nil {
			return err
		}
		return writeLocked(w, http.StatusOK, map[string]any{"entries": entries, "state": sess.State})
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	pendingOnly := r.URL.Query().Get("pending") != ""
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		cards := sess.State.Log
		if pendingOnly {
			cards = sess.State.PendingCards()
		}
		if cards == nil {
			cards = []*game.Card{}
		}
		return writeLocked(w, http.StatusOK, map[string]any{"cards": cards})
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Tag game.ChoiceTag `json:"tag"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		entries, ok := s.engine.ResolveChoice(sess.State, chi.URLParam(r, "cardID"), game.ChoiceTag(strings.ToUpper(string(in.Tag))))
		if entries == nil {
			entries = []*game.Card{}
		}
		return writeLocked(w, http.StatusOK, map[string]any{"resolved": ok, "entries": entries})
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) slotKey(r *http.Request) string {
	slot := strings.TrimSpace(r.URL.Query().Get("slot"))
	if slot == "" {
		slot = chi.URLParam(r, "id")
	}
	return s.cfg.SaveKey + ":" + slot
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	key := s.slotKey(r)
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		return store.SaveState(r.Context(), s.store, key, sess.State)
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "key": key})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	key := s.slotKey(r)
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		st, ok := store.LoadState(r.Context(), s.store, key, s.log)
		if !ok {
			return errNoSave
		}
		sess.State = st
		return writeLocked(w, http.StatusOK, map[string]any{"loaded": true, "state": st})
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	err := s.sessions.With(chi.URLParam(r, "id"), func(sess *session.Session) error {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(now)))
		return export.Encode(w, sess.State, now)
	})
	if err != nil {
		s.writeDomainError(w, err)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, game.ErrCharacterNotFound), errors.Is(err, errNoSave):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrSetupLocked), errors.Is(err, game.ErrHorizonReached),
		errors.Is(err, game.ErrRosterFull), errors.Is(err, game.ErrLastCharacter):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrSameCharacter), errors.Is(err, game.ErrUnknownActivity), errors.Is(err, game.ErrUnknownPreset):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeLocked writes from inside a session callback, while the session lock is held.
func writeLocked(w http.ResponseWriter, status int, payload any) error {
	writeJSON(w, status, payload)
	return nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
