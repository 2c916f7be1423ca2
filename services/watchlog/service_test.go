package watchlog_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bingetrack/services/watchlog"
)

func newTestService(t *testing.T) *watchlog.Service {
	t.Helper()
	svc, err := watchlog.NewService(filepath.Join(t.TempDir(), "watchlog.db"))
	if err != nil {
		t.Fatalf("failed to create watch log service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestMarkAndGetWatchLog(t *testing.T) {
	svc := newTestService(t)

	at := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	entry, err := svc.MarkWatched("default", "100", 1, 2, at)
	if err != nil {
		t.Fatalf("failed to mark episode: %v", err)
	}
	if !entry.WatchedAt.Equal(at) {
		t.Fatalf("expected watchedAt %v, got %v", at, entry.WatchedAt)
	}

	entries, err := svc.GetWatchLog("default", "100")
	if err != nil {
		t.Fatalf("failed to read watch log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Season != 1 || entries[0].Episode != 2 || !entries[0].WatchedAt.Equal(at) {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestMarkDefaultsToNow(t *testing.T) {
	svc := newTestService(t)

	before := time.Now().UTC().Add(-time.Second)
	entry, err := svc.MarkWatched("default", "100", 1, 1, time.Time{})
	if err != nil {
		t.Fatalf("failed to mark episode: %v", err)
	}
	if entry.WatchedAt.Before(before) {
		t.Fatalf("expected watchedAt close to now, got %v", entry.WatchedAt)
	}
}

func TestMarkKeepsRewatchesSeparate(t *testing.T) {
	svc := newTestService(t)

	first := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	if _, err := svc.MarkWatched("default", "100", 1, 1, first); err != nil {
		t.Fatalf("failed to mark episode: %v", err)
	}
	// Same timestamp is a no-op, a later one is a second event.
	if _, err := svc.MarkWatched("default", "100", 1, 1, first); err != nil {
		t.Fatalf("failed to re-mark episode: %v", err)
	}
	if _, err := svc.MarkWatched("default", "100", 1, 1, first.Add(time.Hour)); err != nil {
		t.Fatalf("failed to mark rewatch: %v", err)
	}

	entries, err := svc.GetWatchLog("default", "100")
	if err != nil {
		t.Fatalf("failed to read watch log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestMarkRejectsBadPosition(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.MarkWatched("default", "100", 0, 1, time.Time{}); !errors.Is(err, watchlog.ErrBadPosition) {
		t.Fatalf("expected ErrBadPosition, got %v", err)
	}
	if _, err := svc.MarkWatched("default", "100", 1, 0, time.Time{}); !errors.Is(err, watchlog.ErrBadPosition) {
		t.Fatalf("expected ErrBadPosition, got %v", err)
	}
}

func TestUnmarkRequiresConfirmation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.MarkWatched("default", "100", 1, 1, time.Time{}); err != nil {
		t.Fatalf("failed to mark episode: %v", err)
	}

	if _, err := svc.UnmarkWatched("default", "100", 1, 1, false); !errors.Is(err, watchlog.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}

	// Nothing was deleted by the refused call.
	entries, err := svc.GetWatchLog("default", "100")
	if err != nil {
		t.Fatalf("failed to read watch log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected entry to survive unconfirmed unmark, got %d entries", len(entries))
	}
}

func TestUnmarkRemovesAllEventsForEpisode(t *testing.T) {
	svc := newTestService(t)

	first := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	if _, err := svc.MarkWatched("default", "100", 1, 1, first); err != nil {
		t.Fatalf("failed to mark episode: %v", err)
	}
	if _, err := svc.MarkWatched("default", "100", 1, 1, first.Add(time.Hour)); err != nil {
		t.Fatalf("failed to mark rewatch: %v", err)
	}
	if _, err := svc.MarkWatched("default", "100", 1, 2, first); err != nil {
		t.Fatalf("failed to mark other episode: %v", err)
	}

	removed, err := svc.UnmarkWatched("default", "100", 1, 1, true)
	if err != nil {
		t.Fatalf("failed to unmark: %v", err)
	}
	if !removed {
		t.Fatal("expected unmark to report removal")
	}

	entries, err := svc.GetWatchLog("default", "100")
	if err != nil {
		t.Fatalf("failed to read watch log: %v", err)
	}
	if len(entries) != 1 || entries[0].Episode != 2 {
		t.Fatalf("expected only episode 2 to remain, got %+v", entries)
	}
}

func TestUnmarkMissingEpisodeReportsNothingRemoved(t *testing.T) {
	svc := newTestService(t)

	removed, err := svc.UnmarkWatched("default", "100", 3, 9, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Fatal("expected no removal for unknown episode")
	}
}

func TestListByUserGroupsByShow(t *testing.T) {
	svc := newTestService(t)

	at := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	if _, err := svc.MarkWatched("default", "100", 1, 1, at); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	if _, err := svc.MarkWatched("default", "200", 2, 5, at); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	if _, err := svc.MarkWatched("other", "100", 1, 1, at); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}

	byShow, err := svc.ListByUser("default")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(byShow) != 2 {
		t.Fatalf("expected 2 shows, got %d", len(byShow))
	}
	if len(byShow["100"]) != 1 || len(byShow["200"]) != 1 {
		t.Fatalf("unexpected grouping: %+v", byShow)
	}
}

func TestDropShowRemovesOnlyThatShow(t *testing.T) {
	svc := newTestService(t)

	at := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	if _, err := svc.MarkWatched("default", "100", 1, 1, at); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	if _, err := svc.MarkWatched("default", "200", 1, 1, at); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}

	if err := svc.DropShow("default", "100"); err != nil {
		t.Fatalf("failed to drop show: %v", err)
	}

	byShow, err := svc.ListByUser("default")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if _, ok := byShow["100"]; ok {
		t.Fatal("expected show 100 to be gone")
	}
	if _, ok := byShow["200"]; !ok {
		t.Fatal("expected show 200 to survive")
	}
}

func TestValidationErrors(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.GetWatchLog("", "100"); !errors.Is(err, watchlog.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
	if _, err := svc.GetWatchLog("default", " "); !errors.Is(err, watchlog.ErrShowIDRequired) {
		t.Fatalf("expected ErrShowIDRequired, got %v", err)
	}
	if _, err := watchlog.NewService(""); !errors.Is(err, watchlog.ErrDatabasePathRequired) {
		t.Fatalf("expected ErrDatabasePathRequired, got %v", err)
	}
}
