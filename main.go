package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gopkg.in/natefinch/lumberjack.v2"

	"bingetrack/api"
	"bingetrack/config"
	"bingetrack/handlers"
	"bingetrack/services/catalog"
	"bingetrack/services/feed"
	"bingetrack/services/home"
	"bingetrack/services/progression"
	"bingetrack/services/schedule"
	"bingetrack/services/shows"
	"bingetrack/services/users"
	"bingetrack/services/watchlog"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("Bingetrack backend starting...")

	configPath := os.Getenv("BINGETRACK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	usersService, err := users.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init users service: %v", err)
	}
	showsService, err := shows.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init shows service: %v", err)
	}
	watchLogService, err := watchlog.NewService(settings.Storage.WatchLogPath)
	if err != nil {
		log.Fatalf("failed to init watch log: %v", err)
	}
	defer watchLogService.Close()

	catalogService := catalog.NewService(settings.Catalog.TMDBAPIKey, settings.Catalog.Language)
	if settings.Catalog.TMDBAPIKey == "" {
		log.Printf("Warning: no TMDB API key configured; catalog lookups will fail until one is set via /api/settings")
	}

	resolver := progression.NewResolver(catalogService, progression.Config{
		StaleThreshold:   time.Duration(settings.Progression.StaleThresholdDays) * 24 * time.Hour,
		StrictTimestamps: settings.Progression.StrictTimestamps,
	})

	homeService := home.NewService(showsService, watchLogService, catalogService, resolver)
	scheduleService := schedule.NewService(showsService, catalogService, nil)
	feedService := feed.NewService(resolver, watchLogService, catalogService)

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewUsersHandler(usersService),
		handlers.NewShowsHandler(showsService, watchLogService, usersService),
		handlers.NewWatchLogHandler(watchLogService, usersService),
		handlers.NewHomeHandler(homeService, usersService),
		handlers.NewScheduleHandler(scheduleService, usersService),
		handlers.NewHistoryHandler(feedService, usersService),
		handlers.NewCatalogHandler(catalogService),
		handlers.NewSettingsHandler(cfgManager, func(s config.Settings) {
			catalogService.UpdateCredentials(s.Catalog.TMDBAPIKey, s.Catalog.Language)
		}),
	)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsWrapper.Handler(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
