package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server      ServerSettings      `json:"server"`
	Catalog     CatalogSettings     `json:"catalog"`
	Storage     StorageSettings     `json:"storage"`
	Progression ProgressionSettings `json:"progression"`
	Log         LogConfig           `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings configures the remote metadata service.
type CatalogSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

// StorageSettings locates the per-user data stores.
type StorageSettings struct {
	Directory    string `json:"directory"`    // JSON stores (users, onboarded shows)
	WatchLogPath string `json:"watchLogPath"` // sqlite database for watch events
}

// ProgressionSettings holds the resolver policy knobs. Earlier iterations of
// the resolver hard-coded these; they are configuration now so the logic is
// not re-forked per policy change.
type ProgressionSettings struct {
	// StaleThresholdDays separates "Watch Next" from "Haven't Watched For A
	// While". The boundary is inclusive on the recent side.
	StaleThresholdDays int `json:"staleThresholdDays"`
	// StrictTimestamps rejects watch entries with missing timestamps instead
	// of treating them as earliest-possible.
	StrictTimestamps bool `json:"strictTimestamps"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:  ServerSettings{Host: "0.0.0.0", Port: 7070},
		Catalog: CatalogSettings{TMDBAPIKey: "", Language: "en"},
		Storage: StorageSettings{
			Directory:    "data",
			WatchLogPath: "data/watchlog.db",
		},
		Progression: ProgressionSettings{
			StaleThresholdDays: 30,
			StrictTimestamps:   false,
		},
		Log: LogConfig{
			File:       "data/logs/backend.log",
			Level:      "info",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,  // keep 3 old files
			MaxAge:     7,  // 7 days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}

	// Backfill defaults for settings introduced after the config was written
	if strings.TrimSpace(s.Storage.Directory) == "" {
		s.Storage.Directory = "data"
	}
	if strings.TrimSpace(s.Storage.WatchLogPath) == "" {
		s.Storage.WatchLogPath = filepath.Join(s.Storage.Directory, "watchlog.db")
	}
	if s.Progression.StaleThresholdDays <= 0 {
		s.Progression.StaleThresholdDays = 30
	}
	if strings.TrimSpace(s.Catalog.Language) == "" {
		s.Catalog.Language = "en"
	}
	if s.Log.MaxSize <= 0 {
		s.Log.MaxSize = 50
	}

	return s, nil
}

// Save writes settings atomically via a temp file rename.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
