package models

import "time"

// OnboardedShow is one entry of a user's onboarded-show list. Name and poster
// are denormalized from the catalog at onboarding time for display; the
// catalog stays authoritative for everything else.
type OnboardedShow struct {
	ShowID    string    `json:"showId"`
	Name      string    `json:"name,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// OnboardedShowUpsert captures data required to add a show to the list.
type OnboardedShowUpsert struct {
	ShowID    string `json:"showId"`
	Name      string `json:"name,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}
