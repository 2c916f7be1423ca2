package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"bingetrack/models"
	"bingetrack/services/shows"
	"bingetrack/services/watchlog"
)

type showsService interface {
	List(userID string) ([]models.OnboardedShow, error)
	Add(userID string, input models.OnboardedShowUpsert) (models.OnboardedShow, error)
	Remove(userID, showID string) (bool, error)
}

var _ showsService = (*shows.Service)(nil)

type showsWatchLog interface {
	DropShow(userID, showID string) error
}

var _ showsWatchLog = (*watchlog.Service)(nil)

// ShowsHandler manages the per-user onboarded show list.
type ShowsHandler struct {
	Service  showsService
	WatchLog showsWatchLog
	Users    userService
}

func NewShowsHandler(service showsService, log showsWatchLog, users userService) *ShowsHandler {
	return &ShowsHandler{Service: service, WatchLog: log, Users: users}
}

func (h *ShowsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	items, err := h.Service.List(userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, shows.ErrUserIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, items)
}

func (h *ShowsHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	var input models.OnboardedShowUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.Add(userID, input)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, shows.ErrUserIDRequired), errors.Is(err, shows.ErrShowIDRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// Remove takes a show off the user's list. With ?purgeHistory=true the show's
// watch events are deleted too; otherwise history survives un-onboarding.
func (h *ShowsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	showID := strings.TrimSpace(vars["showID"])
	if showID == "" {
		http.Error(w, "show id is required", http.StatusBadRequest)
		return
	}

	removed, err := h.Service.Remove(userID, showID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "show not onboarded", http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("purgeHistory") == "true" {
		if err := h.WatchLog.DropShow(userID, showID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ShowsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
