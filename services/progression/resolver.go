package progression

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bingetrack/models"
	"bingetrack/services/catalog"
)

// DefaultStaleThreshold separates recent activity ("Watch Next") from old
// activity ("Haven't Watched For A While").
const DefaultStaleThreshold = 30 * 24 * time.Hour

// Catalog is the subset of the catalog service the resolver consumes.
type Catalog interface {
	ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error)
	SeasonDetails(ctx context.Context, showID string, season int) (*models.SeasonDetails, error)
	EpisodeDetails(ctx context.Context, showID string, season, episode int) (*models.EpisodeDetails, error)
}

// Config holds the resolver policy knobs. Earlier revisions of this logic
// forked the whole resolver per policy change; the knobs live here instead.
type Config struct {
	// StaleThreshold is how long after the most recent watch a show stays in
	// "Watch Next". Inclusive on the recent side: activity exactly at the
	// threshold still counts as recent. Defaults to 30 days.
	StaleThreshold time.Duration
	// StrictTimestamps rejects watch entries with missing timestamps instead
	// of coercing them to earliest-possible.
	StrictTimestamps bool
	// Now is the wall clock used for staleness checks. Tests override it;
	// when nil, time.Now is used.
	Now func() time.Time
}

// Resolution is the outcome of resolving one show.
type Resolution struct {
	Progression models.ShowProgression
	// Episode carries the catalog metadata of the next unwatched episode.
	// Nil exactly when the show is Complete or Skipped.
	Episode *models.EpisodeDetails
	// Skipped marks a show with no history whose catalog record has no
	// season 1 episode 1: a valid terminal outcome, excluded from every
	// bucket without being an error.
	Skipped bool
}

// Resolver walks a show's seasons against a normalized watch set to find the
// single canonical next unwatched episode.
type Resolver struct {
	catalog Catalog
	cfg     Config
}

// NewResolver constructs a resolver; zero Config fields get defaults.
func NewResolver(cat Catalog, cfg Config) *Resolver {
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = DefaultStaleThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{catalog: cat, cfg: cfg}
}

// StrictTimestamps reports the configured timestamp policy so callers can
// pass the same choice to Normalize.
func (r *Resolver) StrictTimestamps() bool {
	return r.cfg.StrictTimestamps
}

// Resolve determines a show's progression from its normalized watch set.
//
// Season and episode fetch failures are swallowed and treated as "this unit
// does not exist": a season that 404s contributes no episodes to the gap
// search and never aborts the walk. Only a failure to fetch the show record
// itself propagates, and callers isolate that per show.
func (r *Resolver) Resolve(ctx context.Context, showID string, set models.NormalizedWatchSet) (*Resolution, error) {
	if len(set) == 0 {
		return r.resolveNotStarted(ctx, showID)
	}

	show, err := r.catalog.ShowDetails(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("fetch show %s: %w", showID, err)
	}

	// Always walk from season 1 upward. Catalogs renumber and backfill
	// episodes, so resuming from the last watched season could skip past a
	// gap that appeared behind it. Correctness over performance.
	for season := 1; season <= show.TotalSeasons; season++ {
		details, err := r.catalog.SeasonDetails(ctx, showID, season)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, catalog.ErrNotFound) {
				log.Printf("[progression] show %s season %d unavailable, treating as absent: %v", showID, season, err)
			}
			continue
		}

		for _, ep := range details.Episodes {
			if set.Contains(season, ep.EpisodeNumber) {
				continue
			}
			return r.resolveGap(ctx, showID, set, season, ep)
		}
	}

	return &Resolution{
		Progression: models.ShowProgression{
			ShowID:   showID,
			Category: models.CategoryComplete,
		},
	}, nil
}

func (r *Resolver) resolveNotStarted(ctx context.Context, showID string) (*Resolution, error) {
	ep, err := r.catalog.EpisodeDetails(ctx, showID, 1, 1)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			// No watch history and no first episode: nothing to surface.
			return &Resolution{
				Progression: models.ShowProgression{ShowID: showID},
				Skipped:     true,
			}, nil
		}
		return nil, fmt.Errorf("fetch show %s first episode: %w", showID, err)
	}

	return &Resolution{
		Progression: models.ShowProgression{
			ShowID:      showID,
			Category:    models.CategoryNotStarted,
			NextEpisode: &models.EpisodeRef{ShowID: showID, Season: 1, Episode: 1},
		},
		Episode: ep,
	}, nil
}

func (r *Resolver) resolveGap(ctx context.Context, showID string, set models.NormalizedWatchSet, season int, listed models.SeasonEpisode) (*Resolution, error) {
	details, err := r.catalog.EpisodeDetails(ctx, showID, season, listed.EpisodeNumber)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The season listing names the episode even when its full record is
		// missing; fall back to the listing fields rather than losing the gap.
		details = &models.EpisodeDetails{
			ShowID:        showID,
			SeasonNumber:  season,
			EpisodeNumber: listed.EpisodeNumber,
			Title:         listed.Name,
			AirDate:       listed.AirDate,
			StillURL:      listed.StillURL,
		}
	}

	category := models.CategoryStale
	if recent, ok := set.MostRecent(); ok {
		cutoff := r.cfg.Now().Add(-r.cfg.StaleThreshold)
		// Closed interval: a watch exactly at the threshold is still recent.
		if !recent.WatchedAt.Before(cutoff) {
			category = models.CategoryNext
		}
	}

	return &Resolution{
		Progression: models.ShowProgression{
			ShowID:      showID,
			Category:    category,
			NextEpisode: &models.EpisodeRef{ShowID: showID, Season: season, Episode: listed.EpisodeNumber},
		},
		Episode: details,
	}, nil
}
