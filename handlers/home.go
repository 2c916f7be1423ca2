package handlers

import (
	"context"
	"net/http"

	"bingetrack/models"
	"bingetrack/services/home"
)

type homeService interface {
	Buckets(ctx context.Context, userID string) (*models.WatchBuckets, error)
}

var _ homeService = (*home.Service)(nil)

// HomeHandler serves the home-screen watch buckets.
type HomeHandler struct {
	Service homeService
	Users   userService
}

func NewHomeHandler(service homeService, users userService) *HomeHandler {
	return &HomeHandler{Service: service, Users: users}
}

func (h *HomeHandler) Buckets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	buckets, err := h.Service.Buckets(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, buckets)
}

func (h *HomeHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
