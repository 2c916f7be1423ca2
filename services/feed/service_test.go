package feed_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bingetrack/models"
	"bingetrack/services/feed"
)

type lenientPolicy struct{}

func (lenientPolicy) StrictTimestamps() bool { return false }

type stubWatchLog struct {
	entries map[string][]models.WatchedEntry
}

func (s *stubWatchLog) ListByUser(userID string) (map[string][]models.WatchedEntry, error) {
	return s.entries, nil
}

type stubCatalog struct {
	shows    map[string]*models.ShowDetails
	episodes map[string]*models.EpisodeDetails
}

func (s *stubCatalog) ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error) {
	show, ok := s.shows[showID]
	if !ok {
		return nil, errors.New("unknown show")
	}
	return show, nil
}

func (s *stubCatalog) EpisodeDetails(ctx context.Context, showID string, season, episode int) (*models.EpisodeDetails, error) {
	details, ok := s.episodes[fmt.Sprintf("%s/%d/%d", showID, season, episode)]
	if !ok {
		return nil, errors.New("unknown episode")
	}
	return details, nil
}

func TestFeedOrdersNewestFirst(t *testing.T) {
	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	log := &stubWatchLog{entries: map[string][]models.WatchedEntry{
		"1": {
			{ShowID: "1", Season: 1, Episode: 1, WatchedAt: base},
			{ShowID: "1", Season: 1, Episode: 2, WatchedAt: base.Add(48 * time.Hour)},
		},
		"2": {
			{ShowID: "2", Season: 1, Episode: 1, WatchedAt: base.Add(24 * time.Hour)},
		},
	}}
	cat := &stubCatalog{
		shows: map[string]*models.ShowDetails{
			"1": {ShowID: "1", Name: "Alpha"},
			"2": {ShowID: "2", Name: "Beta"},
		},
		episodes: map[string]*models.EpisodeDetails{
			"1/1/1": {ShowID: "1", SeasonNumber: 1, EpisodeNumber: 1, Title: "One"},
			"1/1/2": {ShowID: "1", SeasonNumber: 1, EpisodeNumber: 2, Title: "Two"},
			"2/1/1": {ShowID: "2", SeasonNumber: 1, EpisodeNumber: 1, Title: "Other"},
		},
	}

	svc := feed.NewService(lenientPolicy{}, log, cat)
	result, err := svc.Feed(context.Background(), "default", -1)
	if err != nil {
		t.Fatalf("failed to build feed: %v", err)
	}

	if result.Total != 3 {
		t.Fatalf("expected total 3, got %d", result.Total)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}

	order := []string{
		result.Items[0].ShowID + result.Items[0].EpisodeTitle,
		result.Items[1].ShowID + result.Items[1].EpisodeTitle,
		result.Items[2].ShowID + result.Items[2].EpisodeTitle,
	}
	if order[0] != "1Two" || order[1] != "2Other" || order[2] != "1One" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestFeedCollapsesRewatchesToLatest(t *testing.T) {
	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	log := &stubWatchLog{entries: map[string][]models.WatchedEntry{
		"1": {
			{ShowID: "1", Season: 1, Episode: 1, WatchedAt: base},
			{ShowID: "1", Season: 1, Episode: 1, WatchedAt: base.Add(time.Hour)},
		},
	}}
	cat := &stubCatalog{
		shows: map[string]*models.ShowDetails{"1": {ShowID: "1", Name: "Alpha"}},
		episodes: map[string]*models.EpisodeDetails{
			"1/1/1": {ShowID: "1", SeasonNumber: 1, EpisodeNumber: 1, Title: "One"},
		},
	}

	svc := feed.NewService(lenientPolicy{}, log, cat)
	result, err := svc.Feed(context.Background(), "default", -1)
	if err != nil {
		t.Fatalf("failed to build feed: %v", err)
	}

	if result.Total != 1 {
		t.Fatalf("expected rewatches collapsed to 1 item, got %d", result.Total)
	}
	if !result.Items[0].WatchedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected latest timestamp, got %v", result.Items[0].WatchedAt)
	}
}

func TestFeedLimitPreservesTotal(t *testing.T) {
	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	entries := make([]models.WatchedEntry, 0, 5)
	episodes := make(map[string]*models.EpisodeDetails)
	for i := 1; i <= 5; i++ {
		entries = append(entries, models.WatchedEntry{
			ShowID: "1", Season: 1, Episode: i, WatchedAt: base.Add(time.Duration(i) * time.Hour),
		})
		episodes[fmt.Sprintf("1/1/%d", i)] = &models.EpisodeDetails{
			ShowID: "1", SeasonNumber: 1, EpisodeNumber: i,
		}
	}
	log := &stubWatchLog{entries: map[string][]models.WatchedEntry{"1": entries}}
	cat := &stubCatalog{
		shows:    map[string]*models.ShowDetails{"1": {ShowID: "1", Name: "Alpha"}},
		episodes: episodes,
	}

	svc := feed.NewService(lenientPolicy{}, log, cat)
	result, err := svc.Feed(context.Background(), "default", 2)
	if err != nil {
		t.Fatalf("failed to build feed: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items under limit, got %d", len(result.Items))
	}
	if result.Total != 5 {
		t.Fatalf("expected total to stay 5, got %d", result.Total)
	}
	if result.Items[0].Episode != 5 {
		t.Fatalf("expected newest item first, got %+v", result.Items[0])
	}
}

func TestFeedDegradesOnMetadataFailure(t *testing.T) {
	base := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	log := &stubWatchLog{entries: map[string][]models.WatchedEntry{
		"missing": {{ShowID: "missing", Season: 2, Episode: 3, WatchedAt: base}},
	}}
	cat := &stubCatalog{shows: map[string]*models.ShowDetails{}, episodes: map[string]*models.EpisodeDetails{}}

	svc := feed.NewService(lenientPolicy{}, log, cat)
	result, err := svc.Feed(context.Background(), "default", -1)
	if err != nil {
		t.Fatalf("metadata failure must degrade, not fail: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected the event to survive with a bare label, got %+v", result.Items)
	}
	if result.Items[0].Label != "S2 E3" {
		t.Fatalf("expected fallback label, got %q", result.Items[0].Label)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected a warning, got %v", result.Warnings)
	}
}
