package feed

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

// WatchLog provides the user's full raw watch history.
type WatchLog interface {
	ListByUser(userID string) (map[string][]models.WatchedEntry, error)
}

// Catalog provides the metadata used to enrich feed items.
type Catalog interface {
	ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error)
	EpisodeDetails(ctx context.Context, showID string, season, episode int) (*models.EpisodeDetails, error)
}

// Service builds the reverse-chronological history feed across all of a
// user's shows. The feed spans the whole watch log, onboarded or not: history
// outlives a show's presence on the current list.
type Service struct {
	policy  Policy
	log     WatchLog
	catalog Catalog
}

// Policy reports the timestamp handling shared with the progression layer.
type Policy interface {
	StrictTimestamps() bool
}

// NewService constructs the history feed builder.
func NewService(policy Policy, watchlog WatchLog, cat Catalog) *Service {
	return &Service{policy: policy, log: watchlog, catalog: cat}
}

type showItems struct {
	showID string
	items  []models.EpisodeInfo
	err    error
}

// Feed returns every watched episode, newest first, enriched with catalog
// metadata. Duplicate events for the same episode collapse to the latest
// timestamp before sorting. A limit below zero means no limit; Total always
// reflects the pre-limit count. Per-show enrichment failures degrade that
// show's items to bare labels and land in Warnings rather than dropping the
// events.
func (s *Service) Feed(ctx context.Context, userID string, limit int) (*models.HistoryFeed, error) {
	byShow, err := s.log.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []showItems
	)

	p := pool.New().WithMaxGoroutines(maxConcurrentShows)
	for showID, raw := range byShow {
		showID, raw := showID, raw
		p.Go(func() {
			res := s.enrichShow(ctx, userID, showID, raw)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}
	p.Wait()

	feed := &models.HistoryFeed{Items: []models.EpisodeInfo{}}
	for _, res := range results {
		if res.err != nil {
			log.Printf("[feed] show %s degraded in history: %v", res.showID, res.err)
			feed.Warnings = append(feed.Warnings, fmt.Sprintf("%s: %v", res.showID, res.err))
		}
		feed.Items = append(feed.Items, res.items...)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		a, b := feed.Items[i], feed.Items[j]
		if !a.WatchedAt.Equal(*b.WatchedAt) {
			return a.WatchedAt.After(*b.WatchedAt)
		}
		if a.ShowName != b.ShowName {
			return a.ShowName < b.ShowName
		}
		if a.ShowID != b.ShowID {
			return a.ShowID < b.ShowID
		}
		return b.EpisodeRef.Less(a.EpisodeRef)
	})
	sort.Strings(feed.Warnings)

	feed.Total = len(feed.Items)
	return feed.TakeFirstN(limit), nil
}

func (s *Service) enrichShow(ctx context.Context, userID, showID string, raw []models.WatchedEntry) showItems {
	set, err := progression.Normalize(raw, s.policy.StrictTimestamps())
	if err != nil {
		return showItems{showID: showID, err: fmt.Errorf("normalize watch log: %w", err)}
	}

	entries := set.Entries()
	items := make([]models.EpisodeInfo, 0, len(entries))

	show, showErr := s.catalog.ShowDetails(ctx, showID)
	for _, entry := range entries {
		entry := entry
		info := models.EpisodeInfo{
			EpisodeRef: entry.Ref(),
			Label:      models.EpisodeLabel(entry.Season, entry.Episode, ""),
			WatchedAt:  &entry.WatchedAt,
		}

		if showErr == nil {
			info.ShowName = show.Name
			info.PosterURL = show.PosterURL

			if ep, err := s.catalog.EpisodeDetails(ctx, showID, entry.Season, entry.Episode); err == nil {
				info.EpisodeTitle = ep.Title
				info.Overview = ep.Overview
				info.AirDate = ep.AirDate
				info.StillURL = ep.StillURL
				info.Rating = ep.Rating
				info.Label = models.EpisodeLabel(entry.Season, entry.Episode, ep.Title)
			} else if ctx.Err() != nil {
				return showItems{showID: showID, err: ctx.Err()}
			}
		}

		items = append(items, info)
	}

	if showErr != nil {
		return showItems{showID: showID, items: items, err: fmt.Errorf("fetch show metadata: %w", showErr)}
	}
	return showItems{showID: showID, items: items}
}
