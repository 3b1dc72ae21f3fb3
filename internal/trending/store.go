// Package trending keeps per-search-term counters on top of a document store.
//
// Every failure is logged and swallowed at this boundary: callers never see
// trending errors, and a failed write is simply a no-op.
package trending

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"movie-finder-service/internal/metrics"
	"movie-finder-service/internal/model"
	"movie-finder-service/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultLimit is the size of the trending list
const DefaultLimit = 5

// StoreError describes a swallowed trending failure
type StoreError struct {
	Op   string
	Term string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("trending %s %q: %v", e.Op, e.Term, e.Err)
	}
	return fmt.Sprintf("trending %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// termLocks is a fixed set of mutexes picked by term hash
const termLocks = 64

// Store implements increment-or-create and top-N reads
type Store struct {
	docs      repository.Documents
	imageBase string
	locks     [termLocks]sync.Mutex
	now       func() time.Time
}

// NewStore creates a Store. imageBase prefixes poster paths of new records.
func NewStore(docs repository.Documents, imageBase string) *Store {
	return &Store{
		docs:      docs,
		imageBase: imageBase,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) lockFor(term string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(term))
	return &s.locks[h.Sum32()%termLocks]
}

// IncrementOrCreate bumps the counter for term, creating it with movie's data on first use.
// It is a read-then-write; writers for the same term are serialised within this process only.
func (s *Store) IncrementOrCreate(ctx context.Context, term string, movie model.MovieSummary) {
	if err := s.incrementOrCreate(ctx, term, movie); err != nil {
		metrics.TrendingWrites.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("term", term).Msg("Failed to update trending count")
	}
}

func (s *Store) incrementOrCreate(ctx context.Context, term string, movie model.MovieSummary) error {
	mu := s.lockFor(term)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.docs.FindByTerm(ctx, term)
	if err != nil {
		return &StoreError{Op: "lookup", Term: term, Err: err}
	}

	if len(existing) > 0 {
		doc := existing[0]
		if err := s.docs.UpdateCount(ctx, doc.ID, doc.Count+1); err != nil {
			return &StoreError{Op: "update", Term: term, Err: err}
		}
		metrics.TrendingWrites.WithLabelValues("update").Inc()
		log.Debug().Str("term", term).Int("count", doc.Count+1).Msg("Trending count incremented")
		return nil
	}

	now := s.now()
	rec := model.TrendingRecord{
		ID:         uuid.NewString(),
		SearchTerm: term,
		Count:      1,
		MovieID:    movie.ID,
		PosterURL:  s.posterURL(movie),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.docs.Create(ctx, rec); err != nil {
		return &StoreError{Op: "create", Term: term, Err: err}
	}
	metrics.TrendingWrites.WithLabelValues("create").Inc()
	log.Debug().Str("term", term).Int("movie_id", movie.ID).Msg("Trending record created")
	return nil
}

// posterURL is empty when the movie has no poster
func (s *Store) posterURL(movie model.MovieSummary) string {
	if !movie.HasPoster() {
		return ""
	}
	return movie.PosterURL(s.imageBase)
}

// TopTrending returns up to limit records by descending count.
// On failure it logs and returns an empty list.
func (s *Store) TopTrending(ctx context.Context, limit int) []model.TrendingRecord {
	if limit <= 0 {
		limit = DefaultLimit
	}

	records, err := s.docs.ListTop(ctx, limit)
	if err != nil {
		log.Error().Err(&StoreError{Op: "top", Err: err}).Msg("Failed to load trending searches")
		return []model.TrendingRecord{}
	}
	if records == nil {
		records = []model.TrendingRecord{}
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}
