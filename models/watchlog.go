package models

import (
	"sort"
	"time"
)

// WatchedEntry records a single watch event for one episode of a show.
// The same (season, episode) pair may appear multiple times in a raw log
// (re-watches, client retries); only the latest timestamp is canonical.
type WatchedEntry struct {
	ShowID    string    `json:"showId"`
	Season    int       `json:"season"`
	Episode   int       `json:"episode"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Ref returns the episode identity of the entry.
func (e WatchedEntry) Ref() EpisodeRef {
	return EpisodeRef{ShowID: e.ShowID, Season: e.Season, Episode: e.Episode}
}

// EpisodeKey identifies an episode within a single show.
type EpisodeKey struct {
	Season  int
	Episode int
}

// NormalizedWatchSet holds at most one entry per (season, episode) pair,
// each carrying the maximum WatchedAt seen among duplicates. Derived from
// raw entries on every read, never persisted.
type NormalizedWatchSet map[EpisodeKey]WatchedEntry

// Contains reports whether the set holds an entry for the given pair.
func (s NormalizedWatchSet) Contains(season, episode int) bool {
	_, ok := s[EpisodeKey{Season: season, Episode: episode}]
	return ok
}

// MostRecent returns the entry with the latest WatchedAt, or false when the
// set is empty. Ties are broken by episode ordering so the result is stable.
func (s NormalizedWatchSet) MostRecent() (WatchedEntry, bool) {
	var best WatchedEntry
	found := false
	for _, entry := range s {
		if !found {
			best, found = entry, true
			continue
		}
		if entry.WatchedAt.After(best.WatchedAt) {
			best = entry
			continue
		}
		if entry.WatchedAt.Equal(best.WatchedAt) && entry.Ref().Less(best.Ref()) {
			best = entry
		}
	}
	return best, found
}

// Entries returns the set as a slice in (season, episode) order.
func (s NormalizedWatchSet) Entries() []WatchedEntry {
	out := make([]WatchedEntry, 0, len(s))
	for _, entry := range s {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ref().Less(out[j].Ref())
	})
	return out
}
