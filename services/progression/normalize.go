package progression

import (
	"errors"

	"bingetrack/models"
)

// ErrInvalidTimestamp reports a watch entry without a usable timestamp while
// strict timestamp handling is enabled.
var ErrInvalidTimestamp = errors.New("watch entry has no valid timestamp")

// Normalize collapses a raw watched-episode list into one canonical entry per
// (season, episode) pair, keeping the maximum WatchedAt among duplicates.
// Equal timestamps resolve last-seen-wins, so the result is deterministic for
// a given input order. Pure function; the input slice is never mutated.
//
// Entries with a zero WatchedAt are treated as earliest-possible watch events
// unless strict mode is on, in which case they fail with ErrInvalidTimestamp.
// Entries with season or episode below 1 cannot belong to any catalog walk
// and are dropped.
func Normalize(raw []models.WatchedEntry, strict bool) (models.NormalizedWatchSet, error) {
	set := make(models.NormalizedWatchSet, len(raw))

	for _, entry := range raw {
		if entry.Season < 1 || entry.Episode < 1 {
			continue
		}
		if entry.WatchedAt.IsZero() && strict {
			return nil, ErrInvalidTimestamp
		}

		key := models.EpisodeKey{Season: entry.Season, Episode: entry.Episode}
		existing, ok := set[key]
		if !ok || !entry.WatchedAt.Before(existing.WatchedAt) {
			set[key] = entry
		}
	}

	return set, nil
}
