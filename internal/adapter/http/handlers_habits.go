package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"habits/internal/domain"

	"github.com/gorilla/mux"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if err := s.habits.Ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.habits.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleSearchHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := s.habits.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	h, err := s.habits.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var in domain.HabitInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h, err := s.habits.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.HabitCreated()
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	var in domain.HabitInput
	if err := parseJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h, err := s.habits.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.habits.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.HabitDeleted()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddEntry reads date, completed and notes from the query string.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, errors.New("date is required"))
		return
	}
	completed, err := strconv.ParseBool(q.Get("completed"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("completed must be true or false"))
		return
	}

	h, err := s.habits.AddEntry(r.Context(), mux.Vars(r)["id"], date, completed, q.Get("notes"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.EntryRecorded(completed)
	}
	writeJSON(w, http.StatusOK, h)
}
