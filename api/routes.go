package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"bingetrack/handlers"
)

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	usersHandler *handlers.UsersHandler,
	showsHandler *handlers.ShowsHandler,
	watchLogHandler *handlers.WatchLogHandler,
	homeHandler *handlers.HomeHandler,
	scheduleHandler *handlers.ScheduleHandler,
	historyHandler *handlers.HistoryHandler,
	catalogHandler *handlers.CatalogHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Profiles
	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}", usersHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}", usersHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}", usersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin", usersHandler.SetPin).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/pin", usersHandler.ClearPin).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/pin", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin/verify", usersHandler.VerifyPin).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/pin/verify", usersHandler.Options).Methods(http.MethodOptions)

	// Onboarded shows
	api.HandleFunc("/users/{userID}/shows", showsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/shows", showsHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/shows", showsHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/shows/{showID}", showsHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/shows/{showID}", showsHandler.Options).Methods(http.MethodOptions)

	// Watch log
	api.HandleFunc("/users/{userID}/shows/{showID}/watchlog", watchLogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/shows/{showID}/watchlog", watchLogHandler.Mark).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/shows/{showID}/watchlog", watchLogHandler.Unmark).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/shows/{showID}/watchlog", watchLogHandler.Options).Methods(http.MethodOptions)

	// Derived views
	api.HandleFunc("/users/{userID}/home", homeHandler.Buckets).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/schedule", scheduleHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/history", historyHandler.Feed).Methods(http.MethodGet)

	// Catalog browse / onboarding search
	api.HandleFunc("/catalog/search", catalogHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/catalog/shows/{showID}", catalogHandler.ShowDetails).Methods(http.MethodGet)
	api.HandleFunc("/catalog/shows/{showID}/seasons/{season}", catalogHandler.SeasonDetails).Methods(http.MethodGet)

	// Settings
	api.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/settings", settingsHandler.Options).Methods(http.MethodOptions)
}
