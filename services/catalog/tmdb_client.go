package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to reduce payloads.
	// Posters: w500 is plenty for cards; stills: w300 for episode thumbnails.
	tmdbPosterSize = "w500"
	tmdbStillSize  = "w300"
)

// ErrNotFound reports that the catalog has no record for the requested
// show, season, or episode.
var ErrNotFound = errors.New("catalog entity not found")

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs an HTTP GET with rate limiting and exponential backoff on
// 429/5xx. A 404 maps to ErrNotFound and is never retried.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, query url.Values, v any) error {
	if !c.isConfigured() {
		return errors.New("tmdb api key not configured")
	}

	return retry.Do(
		func() error {
			c.throttleMu.Lock()
			since := time.Since(c.lastRequest)
			if since < c.minInterval {
				time.Sleep(c.minInterval - since)
			}
			c.lastRequest = time.Now()
			c.throttleMu.Unlock()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			q := req.URL.Query()
			for key, vals := range query {
				for _, val := range vals {
					q.Add(key, val)
				}
			}
			q.Set("api_key", c.apiKey)
			if lang := strings.TrimSpace(c.language); lang != "" {
				q.Set("language", lang)
			} else {
				q.Set("language", "en-US")
			}
			req.URL.RawQuery = q.Encode()

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return retry.Unrecoverable(ErrNotFound)
			}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type tmdbShowResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Overview        string `json:"overview"`
	PosterPath      string `json:"poster_path"`
	BackdropPath    string `json:"backdrop_path"`
	FirstAirDate    string `json:"first_air_date"`
	NumberOfSeasons int    `json:"number_of_seasons"`
}

type tmdbSeasonResponse struct {
	SeasonNumber int `json:"season_number"`
	Episodes     []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		AirDate       string `json:"air_date"`
		StillPath     string `json:"still_path"`
	} `json:"episodes"`
}

type tmdbEpisodeResponse struct {
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	StillPath     string  `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
}

type tmdbSearchResponse struct {
	Results []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Overview     string `json:"overview"`
		PosterPath   string `json:"poster_path"`
		FirstAirDate string `json:"first_air_date"`
	} `json:"results"`
}

func (c *tmdbClient) showDetails(ctx context.Context, showID string) (*tmdbShowResponse, error) {
	endpoint, err := url.JoinPath(tmdbBaseURL, "tv", showID)
	if err != nil {
		return nil, err
	}
	var payload tmdbShowResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) seasonDetails(ctx context.Context, showID string, season int) (*tmdbSeasonResponse, error) {
	endpoint, err := url.JoinPath(tmdbBaseURL, "tv", showID, "season", fmt.Sprintf("%d", season))
	if err != nil {
		return nil, err
	}
	var payload tmdbSeasonResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) episodeDetails(ctx context.Context, showID string, season, episode int) (*tmdbEpisodeResponse, error) {
	endpoint, err := url.JoinPath(tmdbBaseURL, "tv", showID, "season", fmt.Sprintf("%d", season), "episode", fmt.Sprintf("%d", episode))
	if err != nil {
		return nil, err
	}
	var payload tmdbEpisodeResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) searchShows(ctx context.Context, query string) (*tmdbSearchResponse, error) {
	endpoint, err := url.JoinPath(tmdbBaseURL, "search", "tv")
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", query)
	var payload tmdbSearchResponse
	if err := c.doGET(ctx, endpoint, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// buildTMDBImageURL resolves a TMDB image path to a fully qualified URL.
func buildTMDBImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + size + "/" + strings.TrimPrefix(trimmed, "/")
}
