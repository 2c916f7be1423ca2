package home

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"bingetrack/models"
	"bingetrack/services/progression"
)

const maxConcurrentShows = 5

// ShowList provides the user's onboarded shows.
type ShowList interface {
	IDs(userID string) ([]string, error)
	Contains(userID, showID string) bool
}

// WatchLog provides raw watch events per show.
type WatchLog interface {
	GetWatchLog(userID, showID string) ([]models.WatchedEntry, error)
}

// Catalog provides show-level metadata for bucket enrichment.
type Catalog interface {
	ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error)
}

// Resolver turns a show's normalized watch set into a progression.
type Resolver interface {
	Resolve(ctx context.Context, showID string, set models.NormalizedWatchSet) (*progression.Resolution, error)
	StrictTimestamps() bool
}

// Service builds the home-screen watch buckets by running the progression
// resolver across every onboarded show.
type Service struct {
	shows    ShowList
	watchlog WatchLog
	catalog  Catalog
	resolver Resolver
}

// NewService constructs the category builder.
func NewService(shows ShowList, watchlog WatchLog, cat Catalog, resolver Resolver) *Service {
	return &Service{shows: shows, watchlog: watchlog, catalog: cat, resolver: resolver}
}

type showResult struct {
	showID   string
	category models.Category
	info     models.EpisodeInfo
	skipped  bool
	err      error
}

// Buckets resolves every onboarded show concurrently and partitions the
// results into next/stale/notStarted. Complete and skipped shows appear in no
// bucket. A failure on one show lands in Warnings and never blocks or
// corrupts the others. Buckets are sorted by show name, which is the
// user-visible order.
func (s *Service) Buckets(ctx context.Context, userID string) (*models.WatchBuckets, error) {
	ids, err := s.shows.IDs(userID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []showResult
	)

	p := pool.New().WithMaxGoroutines(maxConcurrentShows)
	for _, showID := range ids {
		showID := showID
		p.Go(func() {
			res := s.resolveShow(ctx, userID, showID)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}
	p.Wait()

	buckets := &models.WatchBuckets{
		Next:       []models.EpisodeInfo{},
		Stale:      []models.EpisodeInfo{},
		NotStarted: []models.EpisodeInfo{},
	}

	for _, res := range results {
		if res.err != nil {
			log.Printf("[home] show %s excluded from buckets: %v", res.showID, res.err)
			buckets.Warnings = append(buckets.Warnings, fmt.Sprintf("%s: %v", res.showID, res.err))
			continue
		}
		if res.skipped {
			continue
		}
		// The onboarded list may have changed while this show resolved;
		// results for shows no longer on it are abandoned, not merged.
		if !s.shows.Contains(userID, res.showID) {
			continue
		}

		switch res.category {
		case models.CategoryNext:
			buckets.Next = append(buckets.Next, res.info)
		case models.CategoryStale:
			buckets.Stale = append(buckets.Stale, res.info)
		case models.CategoryNotStarted:
			buckets.NotStarted = append(buckets.NotStarted, res.info)
		}
	}

	sortBucket(buckets.Next)
	sortBucket(buckets.Stale)
	sortBucket(buckets.NotStarted)
	sort.Strings(buckets.Warnings)

	return buckets, nil
}

func (s *Service) resolveShow(ctx context.Context, userID, showID string) showResult {
	raw, err := s.watchlog.GetWatchLog(userID, showID)
	if err != nil {
		return showResult{showID: showID, err: fmt.Errorf("read watch log: %w", err)}
	}

	set, err := progression.Normalize(raw, s.resolver.StrictTimestamps())
	if err != nil {
		return showResult{showID: showID, err: fmt.Errorf("normalize watch log: %w", err)}
	}

	res, err := s.resolver.Resolve(ctx, showID, set)
	if err != nil {
		return showResult{showID: showID, err: err}
	}
	if res.Skipped || res.Progression.Category == models.CategoryComplete {
		return showResult{showID: showID, skipped: true}
	}

	show, err := s.catalog.ShowDetails(ctx, showID)
	if err != nil {
		return showResult{showID: showID, err: fmt.Errorf("fetch show metadata: %w", err)}
	}

	ep := res.Episode
	info := models.EpisodeInfo{
		EpisodeRef:   *res.Progression.NextEpisode,
		ShowName:     show.Name,
		EpisodeTitle: ep.Title,
		Overview:     ep.Overview,
		AirDate:      ep.AirDate,
		PosterURL:    show.PosterURL,
		StillURL:     ep.StillURL,
		Rating:       ep.Rating,
		Label:        models.EpisodeLabel(ep.SeasonNumber, ep.EpisodeNumber, ep.Title),
	}

	return showResult{showID: showID, category: res.Progression.Category, info: info}
}

func sortBucket(items []models.EpisodeInfo) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ShowName != items[j].ShowName {
			return items[i].ShowName < items[j].ShowName
		}
		return items[i].ShowID < items[j].ShowID
	})
}
