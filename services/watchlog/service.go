package watchlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bingetrack/models"
)

var (
	ErrDatabasePathRequired = errors.New("watch log database path not provided")
	ErrUserIDRequired       = errors.New("user id is required")
	ErrShowIDRequired       = errors.New("show id is required")
	ErrBadPosition          = errors.New("season and episode numbers must be >= 1")
	ErrConfirmationRequired = errors.New("unmark requires explicit confirmation")
)

// Service persists watch events in SQLite, one row per event. Append and
// remove touch single rows keyed by (user, show, season, episode), so
// concurrent mark/unmark on the same show never clobbers other shows'
// entries. The store keeps raw events, duplicates included; normalization
// happens in the progression layer on read.
type Service struct {
	db *sql.DB
}

// NewService opens (or creates) the watch log database at the given path.
func NewService(dbPath string) (*Service, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrDatabasePathRequired
	}

	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create watch log dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open watch log database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Service{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply pragma %s: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watched_entries (
            user_id TEXT NOT NULL,
            show_id TEXT NOT NULL,
            season INTEGER NOT NULL,
            episode INTEGER NOT NULL,
            watched_at INTEGER NOT NULL,
            PRIMARY KEY (user_id, show_id, season, episode, watched_at)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_watched_entries_user_show
            ON watched_entries(user_id, show_id);`,
		`CREATE INDEX IF NOT EXISTS idx_watched_entries_user_time
            ON watched_entries(user_id, watched_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// GetWatchLog returns the raw watch events for one show, duplicates included.
func (s *Service) GetWatchLog(userID, showID string) ([]models.WatchedEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return nil, ErrShowIDRequired
	}

	rows, err := s.db.Query(
		`SELECT show_id, season, episode, watched_at FROM watched_entries
         WHERE user_id = ? AND show_id = ?`,
		userID, showID,
	)
	if err != nil {
		return nil, fmt.Errorf("query watch log: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByUser returns every raw watch event the user has, grouped by show.
func (s *Service) ListByUser(userID string) (map[string][]models.WatchedEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rows, err := s.db.Query(
		`SELECT show_id, season, episode, watched_at FROM watched_entries
         WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query watch log: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	byShow := make(map[string][]models.WatchedEntry)
	for _, entry := range entries {
		byShow[entry.ShowID] = append(byShow[entry.ShowID], entry)
	}
	return byShow, nil
}

// MarkWatched appends one watch event. A zero watchedAt defaults to now. The
// insert is a single-row statement; re-marking an already-recorded event at
// the same timestamp is a no-op rather than an error.
func (s *Service) MarkWatched(userID, showID string, season, episode int, watchedAt time.Time) (models.WatchedEntry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.WatchedEntry{}, ErrUserIDRequired
	}
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return models.WatchedEntry{}, ErrShowIDRequired
	}
	if season < 1 || episode < 1 {
		return models.WatchedEntry{}, ErrBadPosition
	}

	if watchedAt.IsZero() {
		watchedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO watched_entries (user_id, show_id, season, episode, watched_at)
         VALUES (?, ?, ?, ?, ?)`,
		userID, showID, season, episode, watchedAt.UTC().Unix(),
	)
	if err != nil {
		return models.WatchedEntry{}, fmt.Errorf("append watch entry: %w", err)
	}

	return models.WatchedEntry{
		ShowID:    showID,
		Season:    season,
		Episode:   episode,
		WatchedAt: watchedAt.UTC().Truncate(time.Second),
	}, nil
}

// UnmarkWatched removes every recorded event for the (season, episode) pair,
// including duplicate timestamps. The caller must pass an explicit prior
// confirmation decision; the store never prompts. Returns whether anything
// was removed.
func (s *Service) UnmarkWatched(userID, showID string, season, episode int, confirmed bool) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, ErrUserIDRequired
	}
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return false, ErrShowIDRequired
	}
	if season < 1 || episode < 1 {
		return false, ErrBadPosition
	}
	if !confirmed {
		return false, ErrConfirmationRequired
	}

	res, err := s.db.Exec(
		`DELETE FROM watched_entries
         WHERE user_id = ? AND show_id = ? AND season = ? AND episode = ?`,
		userID, showID, season, episode,
	)
	if err != nil {
		return false, fmt.Errorf("remove watch entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove watch entry: %w", err)
	}
	return affected > 0, nil
}

// DropShow removes every event for a show, used when a show is un-onboarded.
func (s *Service) DropShow(userID, showID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return ErrShowIDRequired
	}

	if _, err := s.db.Exec(
		`DELETE FROM watched_entries WHERE user_id = ? AND show_id = ?`,
		userID, showID,
	); err != nil {
		return fmt.Errorf("drop show watch log: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]models.WatchedEntry, error) {
	var entries []models.WatchedEntry
	for rows.Next() {
		var (
			entry models.WatchedEntry
			unix  int64
		)
		if err := rows.Scan(&entry.ShowID, &entry.Season, &entry.Episode, &unix); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		if unix > 0 {
			entry.WatchedAt = time.Unix(unix, 0).UTC()
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch entries: %w", err)
	}
	return entries, nil
}
