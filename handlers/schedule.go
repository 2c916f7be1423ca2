package handlers

import (
	"context"
	"net/http"

	"bingetrack/models"
	"bingetrack/services/schedule"
)

type scheduleService interface {
	Partition(ctx context.Context, userID string) (*models.SchedulePartition, error)
}

var _ scheduleService = (*schedule.Service)(nil)

// ScheduleHandler serves the air-date partition of the onboarded shows.
type ScheduleHandler struct {
	Service scheduleService
	Users   userService
}

func NewScheduleHandler(service scheduleService, users userService) *ScheduleHandler {
	return &ScheduleHandler{Service: service, Users: users}
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	part, err := h.Service.Partition(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, part)
}

func (h *ScheduleHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
