package handlers

import (
	"encoding/json"
	"net/http"

	"bingetrack/config"
)

// SettingsHandler reads and persists the application configuration.
type SettingsHandler struct {
	Manager *config.Manager
	// OnUpdate propagates saved settings to running services (catalog
	// credentials hot reload). May be nil.
	OnUpdate func(config.Settings)
}

func NewSettingsHandler(manager *config.Manager, onUpdate func(config.Settings)) *SettingsHandler {
	return &SettingsHandler{Manager: manager, OnUpdate: onUpdate}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Manager.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if settings.Server.Port <= 0 || settings.Server.Port > 65535 {
		http.Error(w, "server port out of range", http.StatusBadRequest)
		return
	}
	if settings.Progression.StaleThresholdDays <= 0 {
		http.Error(w, "stale threshold must be at least one day", http.StatusBadRequest)
		return
	}

	if err := h.Manager.Save(settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.OnUpdate != nil {
		h.OnUpdate(settings)
	}

	writeJSON(w, settings)
}

func (h *SettingsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
