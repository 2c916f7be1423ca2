package handlers

import (
	"context"
	"net/http"
	"strconv"

	"bingetrack/models"
	"bingetrack/services/feed"
)

type feedService interface {
	Feed(ctx context.Context, userID string, limit int) (*models.HistoryFeed, error)
}

var _ feedService = (*feed.Service)(nil)

// HistoryHandler serves the reverse-chronological watch history feed.
type HistoryHandler struct {
	Service feedService
	Users   userService
}

func NewHistoryHandler(service feedService, users userService) *HistoryHandler {
	return &HistoryHandler{Service: service, Users: users}
}

func (h *HistoryHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.Service.Feed(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, items)
}

func (h *HistoryHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
