package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"movie-finder-service/internal/model"
	"movie-finder-service/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

var _ Documents = (*AppwriteDocuments)(nil)

// AppwriteConfig identifies the hosted collection holding trending records
type AppwriteConfig struct {
	Endpoint     string
	ProjectID    string
	DatabaseID   string
	CollectionID string
	APIKey       string // optional server key
}

// AppwriteDocuments talks to the Appwrite Databases REST API
type AppwriteDocuments struct {
	cfg     AppwriteConfig
	client  *httpclient.Client
	baseURL string
}

// appwriteDocument is the wire shape of a trending document
type appwriteDocument struct {
	ID         string    `json:"$id"`
	CreatedAt  time.Time `json:"$createdAt"`
	UpdatedAt  time.Time `json:"$updatedAt"`
	SearchTerm string    `json:"searchTerm"`
	Count      int       `json:"count"`
	MovieID    int       `json:"movie_id"`
	PosterURL  string    `json:"poster_url"`
}

type appwriteList struct {
	Total     int                `json:"total"`
	Documents []appwriteDocument `json:"documents"`
}

// appwriteQuery is the JSON query syntax accepted by Appwrite 1.5+
type appwriteQuery struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// NewAppwriteDocuments creates an Appwrite-backed store
func NewAppwriteDocuments(cfg AppwriteConfig) (*AppwriteDocuments, error) {
	if cfg.Endpoint == "" || cfg.ProjectID == "" || cfg.DatabaseID == "" || cfg.CollectionID == "" {
		return nil, fmt.Errorf("appwrite: endpoint, project, database and collection ids are required")
	}

	headers := map[string]string{"X-Appwrite-Project": cfg.ProjectID}
	if cfg.APIKey != "" {
		headers["X-Appwrite-Key"] = cfg.APIKey
	}

	baseURL := fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		strings.TrimRight(cfg.Endpoint, "/"),
		url.PathEscape(cfg.DatabaseID),
		url.PathEscape(cfg.CollectionID))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Str("collection", cfg.CollectionID).
		Msg("✅ Appwrite trending collection configured")

	return &AppwriteDocuments{
		cfg:     cfg,
		client:  httpclient.NewClient(0, headers),
		baseURL: baseURL,
	}, nil
}

func (a *AppwriteDocuments) list(ctx context.Context, queries ...appwriteQuery) ([]model.TrendingRecord, error) {
	params := url.Values{}
	for _, q := range queries {
		encoded, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("appwrite: failed to encode query: %w", err)
		}
		params.Add("queries[]", string(encoded))
	}

	target := a.baseURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	data, err := a.client.Fetch(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("appwrite: list documents: %w", err)
	}

	var result appwriteList
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("appwrite: failed to parse documents: %w", err)
	}

	records := make([]model.TrendingRecord, len(result.Documents))
	for i, d := range result.Documents {
		records[i] = model.TrendingRecord{
			ID:         d.ID,
			SearchTerm: d.SearchTerm,
			Count:      d.Count,
			MovieID:    d.MovieID,
			PosterURL:  d.PosterURL,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		}
	}
	return records, nil
}

func (a *AppwriteDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	return a.list(ctx, appwriteQuery{Method: "equal", Attribute: "searchTerm", Values: []any{term}})
}

func (a *AppwriteDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	return a.list(ctx,
		appwriteQuery{Method: "limit", Values: []any{limit}},
		appwriteQuery{Method: "orderDesc", Attribute: "count"},
	)
}

func (a *AppwriteDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	payload := map[string]any{
		"documentId": rec.ID,
		"data": map[string]any{
			"searchTerm": rec.SearchTerm,
			"count":      rec.Count,
			"movie_id":   rec.MovieID,
			"poster_url": rec.PosterURL,
		},
	}

	if _, err := a.client.PostJSON(ctx, a.baseURL, payload, nil); err != nil {
		return fmt.Errorf("appwrite: create document: %w", err)
	}
	return nil
}

func (a *AppwriteDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	payload := map[string]any{
		"data": map[string]any{"count": count},
	}

	if _, err := a.client.PatchJSON(ctx, a.baseURL+"/"+url.PathEscape(id), payload, nil); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("appwrite: update document: %w", err)
	}
	return nil
}

func (a *AppwriteDocuments) Close() error {
	return nil
}
