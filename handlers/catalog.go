package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"bingetrack/models"
	"bingetrack/services/catalog"
)

type catalogService interface {
	ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error)
	SeasonDetails(ctx context.Context, showID string, season int) (*models.SeasonDetails, error)
	SearchShows(ctx context.Context, query string) ([]models.ShowDetails, error)
}

var _ catalogService = (*catalog.Service)(nil)

// CatalogHandler proxies catalog lookups for the onboarding and browse flows.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query parameter q is required", http.StatusBadRequest)
		return
	}

	results, err := h.Service.SearchShows(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, results)
}

func (h *CatalogHandler) ShowDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	showID := strings.TrimSpace(vars["showID"])

	details, err := h.Service.ShowDetails(r.Context(), showID)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	writeJSON(w, details)
}

func (h *CatalogHandler) SeasonDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	showID := strings.TrimSpace(vars["showID"])

	season, err := strconv.Atoi(vars["season"])
	if err != nil {
		http.Error(w, "season must be an integer", http.StatusBadRequest)
		return
	}

	details, err := h.Service.SeasonDetails(r.Context(), showID, season)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	writeJSON(w, details)
}

func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *CatalogHandler) writeCatalogError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrShowIDRequired), errors.Is(err, catalog.ErrBadPosition):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
