package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"bingetrack/models"
	"bingetrack/services/watchlog"
)

type watchLogService interface {
	GetWatchLog(userID, showID string) ([]models.WatchedEntry, error)
	MarkWatched(userID, showID string, season, episode int, watchedAt time.Time) (models.WatchedEntry, error)
	UnmarkWatched(userID, showID string, season, episode int, confirmed bool) (bool, error)
}

var _ watchLogService = (*watchlog.Service)(nil)

// WatchLogHandler exposes the raw per-show watch log and its mutations.
type WatchLogHandler struct {
	Service watchLogService
	Users   userService
}

func NewWatchLogHandler(service watchLogService, users userService) *WatchLogHandler {
	return &WatchLogHandler{Service: service, Users: users}
}

func (h *WatchLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	showID, ok := h.requireShow(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.GetWatchLog(userID, showID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.WatchedEntry{}
	}

	writeJSON(w, entries)
}

func (h *WatchLogHandler) Mark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	showID, ok := h.requireShow(w, r)
	if !ok {
		return
	}

	var payload struct {
		Season    int        `json:"season"`
		Episode   int        `json:"episode"`
		WatchedAt *time.Time `json:"watchedAt"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	watchedAt := time.Time{}
	if payload.WatchedAt != nil {
		watchedAt = *payload.WatchedAt
	}

	entry, err := h.Service.MarkWatched(userID, showID, payload.Season, payload.Episode, watchedAt)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlog.ErrBadPosition) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// Unmark removes all recorded events for one episode. Destructive, so the
// client must send confirmed=true after its own prompt; without it the call
// fails with 409 and nothing is deleted.
func (h *WatchLogHandler) Unmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	showID, ok := h.requireShow(w, r)
	if !ok {
		return
	}

	var payload struct {
		Season    int  `json:"season"`
		Episode   int  `json:"episode"`
		Confirmed bool `json:"confirmed"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	removed, err := h.Service.UnmarkWatched(userID, showID, payload.Season, payload.Episode, payload.Confirmed)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, watchlog.ErrBadPosition):
			status = http.StatusBadRequest
		case errors.Is(err, watchlog.ErrConfirmationRequired):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	if !removed {
		http.Error(w, "episode not marked as watched", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchLogHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *WatchLogHandler) requireShow(w http.ResponseWriter, r *http.Request) (string, bool) {
	vars := mux.Vars(r)
	showID := strings.TrimSpace(vars["showID"])
	if showID == "" {
		http.Error(w, "show id is required", http.StatusBadRequest)
		return "", false
	}
	return showID, true
}
