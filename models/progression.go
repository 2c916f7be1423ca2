package models

import (
	"fmt"
	"time"
)

// Category classifies a show's resolved watching state.
type Category string

const (
	CategoryNext       Category = "next"       // watched recently, next episode ready
	CategoryStale      Category = "stale"      // has progress but no recent activity
	CategoryNotStarted Category = "notStarted" // onboarded, nothing watched yet
	CategoryComplete   Category = "complete"   // every catalogued episode watched
)

// EpisodeRef identifies a specific episode of a show.
type EpisodeRef struct {
	ShowID  string `json:"showId"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
}

// Less orders refs by season, then episode. Only meaningful within one show.
func (r EpisodeRef) Less(other EpisodeRef) bool {
	if r.Season != other.Season {
		return r.Season < other.Season
	}
	return r.Episode < other.Episode
}

// EpisodeInfo is an EpisodeRef enriched with catalog metadata. Constructed
// fresh per request, never persisted.
type EpisodeInfo struct {
	EpisodeRef
	ShowName     string     `json:"showName"`
	EpisodeTitle string     `json:"episodeTitle,omitempty"`
	Overview     string     `json:"overview,omitempty"`
	AirDate      string     `json:"airDate,omitempty"` // ISO date, empty when unknown
	PosterURL    string     `json:"posterUrl,omitempty"`
	StillURL     string     `json:"stillUrl,omitempty"`
	Rating       float64    `json:"rating,omitempty"` // 0-10
	Label        string     `json:"label"`
	WatchedAt    *time.Time `json:"watchedAt,omitempty"` // history feed only
}

// EpisodeLabel renders the human-readable "S2 E5 · Title" form.
func EpisodeLabel(season, episode int, title string) string {
	label := fmt.Sprintf("S%d E%d", season, episode)
	if title != "" {
		label += " · " + title
	}
	return label
}

// ShowProgression is a show's resolved watching state: the bucket it belongs
// to and the single next unwatched episode, if any. Recomputed whenever the
// watch log or the onboarded-show list changes.
type ShowProgression struct {
	ShowID      string      `json:"showId"`
	Category    Category    `json:"category"`
	NextEpisode *EpisodeRef `json:"nextEpisode,omitempty"` // nil when Complete
}

// WatchBuckets partitions onboarded shows into the home-screen rows. Each
// bucket holds one EpisodeInfo per show, sorted by show name. Complete shows
// are excluded; per-show resolution failures land in Warnings.
type WatchBuckets struct {
	Next       []EpisodeInfo `json:"next"`
	Stale      []EpisodeInfo `json:"stale"`
	NotStarted []EpisodeInfo `json:"notStarted"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// SchedulePartition splits every catalogued episode of the onboarded shows by
// air date, independent of watch status. Past is sorted most recent first,
// Upcoming soonest first. Episodes without an air date appear in neither.
type SchedulePartition struct {
	Past     []EpisodeInfo `json:"past"`
	Upcoming []EpisodeInfo `json:"upcoming"`
	Warnings []string      `json:"warnings,omitempty"`
}

// HistoryFeed is the flattened reverse-chronological list of watch events
// across all of a user's shows. Total stays stable while clients page with
// TakeFirstN.
type HistoryFeed struct {
	Items    []EpisodeInfo `json:"items"`
	Total    int           `json:"total"`
	Warnings []string      `json:"warnings,omitempty"`
}

// TakeFirstN returns a feed containing only the first n items, preserving
// Total. Pagination is a plain prefix over the already-sorted result.
func (f *HistoryFeed) TakeFirstN(n int) *HistoryFeed {
	if f == nil {
		return nil
	}
	if n < 0 || n >= len(f.Items) {
		return f
	}
	return &HistoryFeed{Items: f.Items[:n], Total: f.Total, Warnings: f.Warnings}
}
