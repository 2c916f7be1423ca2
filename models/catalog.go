package models

// Catalog record shapes as consumed by the core. The catalog itself is a
// remote service; any backing implementation satisfying these contracts is
// conformant.

// ShowDetails is the show-level catalog record.
type ShowDetails struct {
	ShowID       string `json:"showId"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	PosterURL    string `json:"posterUrl,omitempty"`
	BackdropURL  string `json:"backdropUrl,omitempty"`
	FirstAirDate string `json:"firstAirDate,omitempty"`
	TotalSeasons int    `json:"totalSeasons"`
}

// SeasonEpisode is one entry of a season's ordered episode listing.
type SeasonEpisode struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
	StillURL      string `json:"stillUrl,omitempty"`
}

// SeasonDetails lists a season's episodes in ascending episode order.
type SeasonDetails struct {
	ShowID       string          `json:"showId"`
	SeasonNumber int             `json:"seasonNumber"`
	Episodes     []SeasonEpisode `json:"episodes"`
}

// EpisodeDetails is the full single-episode catalog record.
type EpisodeDetails struct {
	ShowID        string  `json:"showId"`
	SeasonNumber  int     `json:"seasonNumber"`
	EpisodeNumber int     `json:"episodeNumber"`
	Title         string  `json:"title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"airDate,omitempty"`
	StillURL      string  `json:"stillUrl,omitempty"`
	Rating        float64 `json:"rating,omitempty"` // 0-10
}
