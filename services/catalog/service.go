package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"bingetrack/models"
)

var (
	ErrShowIDRequired = errors.New("show id is required")
	ErrQueryRequired  = errors.New("search query is required")
	ErrBadPosition    = errors.New("season and episode numbers must be >= 1")
)

// Service exposes show, season, and episode records from the remote catalog.
// It deliberately carries no offline cache: derived state is recomputed from
// live catalog data on every read.
type Service struct {
	mu     sync.RWMutex
	client *tmdbClient
}

// NewService constructs a catalog service backed by TMDB.
func NewService(tmdbAPIKey, language string) *Service {
	return &Service{client: newTMDBClient(tmdbAPIKey, language, nil)}
}

// NewServiceWithHTTPClient is used by tests to stub the transport.
func NewServiceWithHTTPClient(tmdbAPIKey, language string, httpc *http.Client) *Service {
	svc := &Service{client: newTMDBClient(tmdbAPIKey, language, httpc)}
	svc.client.minInterval = 0
	return svc
}

// UpdateCredentials swaps the API key and language at runtime (settings hot reload).
func (s *Service) UpdateCredentials(tmdbAPIKey, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = newTMDBClient(tmdbAPIKey, language, s.client.httpc)
}

func (s *Service) tmdb() *tmdbClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// ShowDetails returns the show-level record including the season count.
// Returns ErrNotFound when the catalog has no such show.
func (s *Service) ShowDetails(ctx context.Context, showID string) (*models.ShowDetails, error) {
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return nil, ErrShowIDRequired
	}
	if _, err := strconv.Atoi(showID); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid catalog id", ErrShowIDRequired, showID)
	}

	payload, err := s.tmdb().showDetails(ctx, showID)
	if err != nil {
		return nil, err
	}

	return &models.ShowDetails{
		ShowID:       showID,
		Name:         payload.Name,
		Overview:     payload.Overview,
		PosterURL:    buildTMDBImageURL(payload.PosterPath, tmdbPosterSize),
		BackdropURL:  buildTMDBImageURL(payload.BackdropPath, tmdbPosterSize),
		FirstAirDate: payload.FirstAirDate,
		TotalSeasons: payload.NumberOfSeasons,
	}, nil
}

// SeasonDetails returns a season's episode listing in ascending episode
// order. Returns ErrNotFound when the season is absent from the catalog.
func (s *Service) SeasonDetails(ctx context.Context, showID string, season int) (*models.SeasonDetails, error) {
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return nil, ErrShowIDRequired
	}
	if season < 1 {
		return nil, ErrBadPosition
	}

	payload, err := s.tmdb().seasonDetails(ctx, showID, season)
	if err != nil {
		return nil, err
	}

	details := &models.SeasonDetails{
		ShowID:       showID,
		SeasonNumber: season,
		Episodes:     make([]models.SeasonEpisode, 0, len(payload.Episodes)),
	}
	for _, ep := range payload.Episodes {
		details.Episodes = append(details.Episodes, models.SeasonEpisode{
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			AirDate:       ep.AirDate,
			StillURL:      buildTMDBImageURL(ep.StillPath, tmdbStillSize),
		})
	}

	// The walk order is a correctness requirement for gap finding, so the
	// listing is sorted here rather than trusting upstream ordering.
	sort.Slice(details.Episodes, func(i, j int) bool {
		return details.Episodes[i].EpisodeNumber < details.Episodes[j].EpisodeNumber
	})

	return details, nil
}

// EpisodeDetails returns the full single-episode record. Returns ErrNotFound
// when the episode is absent from the catalog.
func (s *Service) EpisodeDetails(ctx context.Context, showID string, season, episode int) (*models.EpisodeDetails, error) {
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return nil, ErrShowIDRequired
	}
	if season < 1 || episode < 1 {
		return nil, ErrBadPosition
	}

	payload, err := s.tmdb().episodeDetails(ctx, showID, season, episode)
	if err != nil {
		return nil, err
	}

	return &models.EpisodeDetails{
		ShowID:        showID,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		Title:         payload.Name,
		Overview:      payload.Overview,
		AirDate:       payload.AirDate,
		StillURL:      buildTMDBImageURL(payload.StillPath, tmdbStillSize),
		Rating:        payload.VoteAverage,
	}, nil
}

// SearchShows looks up shows by name for the onboarding flow.
func (s *Service) SearchShows(ctx context.Context, query string) ([]models.ShowDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	payload, err := s.tmdb().searchShows(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]models.ShowDetails, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, models.ShowDetails{
			ShowID:       strconv.FormatInt(r.ID, 10),
			Name:         r.Name,
			Overview:     r.Overview,
			PosterURL:    buildTMDBImageURL(r.PosterPath, tmdbPosterSize),
			FirstAirDate: r.FirstAirDate,
		})
	}
	return results, nil
}
