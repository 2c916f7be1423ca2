package schedule

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"bingetrack/models"
)

const maxConcurrentShows = 5

// ShowList provides the user's onboarded shows.
type ShowList interface {
	IDs(userID string) ([]string, error)
	Contains(userID, showID string) bool
}

// Catalog is the subset of the catalog service the partitioner consumes.
type Catalog interface {
	ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error)
	SeasonDetails(ctx context.Context, showID string, season int) (*models.SeasonDetails, error)
}

// Service partitions every catalogued episode of the onboarded shows by air
// date, independent of watch status.
type Service struct {
	shows   ShowList
	catalog Catalog
	now     func() time.Time
}

// NewService constructs the schedule partitioner. now may be nil, in which
// case time.Now is used.
func NewService(shows ShowList, cat Catalog, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{shows: shows, catalog: cat, now: now}
}

type showEpisodes struct {
	showID   string
	episodes []models.EpisodeInfo
	err      error
}

// Partition walks every season of every onboarded show and splits the
// episodes around today. Episodes airing today count as upcoming; episodes
// with no parseable air date appear on neither side. Past is most recent
// first, Upcoming soonest first. Per-show failures land in Warnings.
func (s *Service) Partition(ctx context.Context, userID string) (*models.SchedulePartition, error) {
	ids, err := s.shows.IDs(userID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []showEpisodes
	)

	p := pool.New().WithMaxGoroutines(maxConcurrentShows)
	for _, showID := range ids {
		showID := showID
		p.Go(func() {
			res := s.collectShow(ctx, showID)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		})
	}
	p.Wait()

	today := s.now().UTC().Truncate(24 * time.Hour)

	part := &models.SchedulePartition{
		Past:     []models.EpisodeInfo{},
		Upcoming: []models.EpisodeInfo{},
	}

	for _, res := range results {
		if res.err != nil {
			log.Printf("[schedule] show %s excluded from schedule: %v", res.showID, res.err)
			part.Warnings = append(part.Warnings, fmt.Sprintf("%s: %v", res.showID, res.err))
			continue
		}
		if !s.shows.Contains(userID, res.showID) {
			continue
		}

		for _, info := range res.episodes {
			aired, err := time.Parse("2006-01-02", info.AirDate)
			if err != nil {
				continue
			}
			if aired.Before(today) {
				part.Past = append(part.Past, info)
			} else {
				part.Upcoming = append(part.Upcoming, info)
			}
		}
	}

	sort.Slice(part.Past, func(i, j int) bool {
		return scheduleLess(part.Past[j], part.Past[i])
	})
	sort.Slice(part.Upcoming, func(i, j int) bool {
		return scheduleLess(part.Upcoming[i], part.Upcoming[j])
	})
	sort.Strings(part.Warnings)

	return part, nil
}

func (s *Service) collectShow(ctx context.Context, showID string) showEpisodes {
	show, err := s.catalog.ShowDetails(ctx, showID)
	if err != nil {
		return showEpisodes{showID: showID, err: fmt.Errorf("fetch show metadata: %w", err)}
	}

	var episodes []models.EpisodeInfo
	for season := 1; season <= show.TotalSeasons; season++ {
		details, err := s.catalog.SeasonDetails(ctx, showID, season)
		if err != nil {
			if ctx.Err() != nil {
				return showEpisodes{showID: showID, err: ctx.Err()}
			}
			// A season missing from the catalog contributes no episodes; the
			// rest of the show still makes the schedule.
			continue
		}

		for _, ep := range details.Episodes {
			episodes = append(episodes, models.EpisodeInfo{
				EpisodeRef: models.EpisodeRef{
					ShowID:  showID,
					Season:  season,
					Episode: ep.EpisodeNumber,
				},
				ShowName:     show.Name,
				EpisodeTitle: ep.Name,
				AirDate:      ep.AirDate,
				PosterURL:    show.PosterURL,
				StillURL:     ep.StillURL,
				Label:        models.EpisodeLabel(season, ep.EpisodeNumber, ep.Name),
			})
		}
	}

	return showEpisodes{showID: showID, episodes: episodes}
}

// scheduleLess orders by air date ascending; within a date, shows sort by
// name and episodes by position so the schedule is stable across rebuilds.
func scheduleLess(a, b models.EpisodeInfo) bool {
	if a.AirDate != b.AirDate {
		return a.AirDate < b.AirDate
	}
	if a.ShowName != b.ShowName {
		return a.ShowName < b.ShowName
	}
	if a.ShowID != b.ShowID {
		return a.ShowID < b.ShowID
	}
	return a.EpisodeRef.Less(b.EpisodeRef)
}
