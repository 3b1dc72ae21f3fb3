package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"movie-finder-service/internal/metrics"
	"movie-finder-service/internal/model"
	"movie-finder-service/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// ErrFetchFailed matches any non-success status from the metadata provider
var ErrFetchFailed = errors.New("failed to fetch data")

// FetchError is returned when TMDB answers with a non-success status
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("TMDB returned status %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrFetchFailed) match
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// NetworkError is returned when TMDB could not be reached or its body could not be read
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("TMDB request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TMDBService handles TMDB API interactions with key rotation
type TMDBService struct {
	apiKeys   []string
	baseURL   string
	imageBase string
	client    *httpclient.Client
	keyIndex  uint64 // 原子计数器，用于轮询
}

// NewTMDBService creates a new TMDBService with multiple API keys
func NewTMDBService(client *httpclient.Client, apiKeys []string, baseURL, imageBase string) *TMDBService {
	if len(apiKeys) > 0 {
		log.Info().Int("count", len(apiKeys)).Msg("🔑 TMDB API keys configured")
	}
	return &TMDBService{
		apiKeys:   apiKeys,
		baseURL:   baseURL,
		imageBase: imageBase,
		client:    client,
	}
}

// getNextKey returns the next API key using round-robin
func (s *TMDBService) getNextKey() string {
	if len(s.apiKeys) == 0 {
		return ""
	}
	idx := atomic.AddUint64(&s.keyIndex, 1) - 1
	return s.apiKeys[idx%uint64(len(s.apiKeys))]
}

// tmdbPageResponse is the raw discover/search response.
// Pointers distinguish absent fields from empty ones.
type tmdbPageResponse struct {
	Results    *[]model.MovieSummary `json:"results"`
	TotalPages *int                  `json:"total_pages"`
}

// Fetch loads one page of movies. An empty query discovers, anything else searches.
func (s *TMDBService) Fetch(ctx context.Context, query string, page int) (*model.SearchResultPage, error) {
	endpoint := s.endpoint(query, page)
	mode := "search"
	if query == "" {
		mode = "discover"
	}
	start := time.Now()

	headers := map[string]string{}
	if key := s.getNextKey(); key != "" {
		headers["Authorization"] = "Bearer " + key
	}

	data, err := s.client.Fetch(ctx, endpoint, headers)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			log.Warn().
				Int("status", statusErr.StatusCode).
				Str("query", query).
				Int("page", page).
				Msg("TMDB: non-success status")
			metrics.RecordFetch(mode, "failed", time.Since(start))
			return nil, &FetchError{StatusCode: statusErr.StatusCode}
		}
		metrics.RecordFetch(mode, "network_error", time.Since(start))
		return nil, &NetworkError{Err: err}
	}

	var raw tmdbPageResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		metrics.RecordFetch(mode, "network_error", time.Since(start))
		return nil, &NetworkError{Err: fmt.Errorf("failed to parse TMDB response: %w", err)}
	}

	result := &model.SearchResultPage{Results: []model.MovieSummary{}}
	if raw.Results != nil {
		result.Results = *raw.Results
	}
	if raw.TotalPages != nil {
		result.TotalPages = *raw.TotalPages
	}

	metrics.RecordFetch(mode, "ok", time.Since(start))
	log.Debug().
		Str("query", query).
		Int("page", page).
		Int("count", len(result.Results)).
		Int("total_pages", result.TotalPages).
		Msg("TMDB: fetched")

	return result, nil
}

func (s *TMDBService) endpoint(query string, page int) string {
	if query == "" {
		return fmt.Sprintf("%s/discover/movie?page=%d", s.baseURL, page)
	}
	return fmt.Sprintf("%s/search/movie?query=%s&page=%d", s.baseURL, url.QueryEscape(query), page)
}

// ImageBase returns the poster base URL
func (s *TMDBService) ImageBase() string {
	return s.imageBase
}

// IsConfigured returns true if TMDB is configured
func (s *TMDBService) IsConfigured() bool {
	return len(s.apiKeys) > 0
}

// KeyCount returns the number of configured API keys
func (s *TMDBService) KeyCount() int {
	return len(s.apiKeys)
}
