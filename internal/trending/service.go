package trending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"movie-finder-service/internal/metrics"
	"movie-finder-service/internal/model"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

// writeTimeout bounds one detached increment
const writeTimeout = 10 * time.Second

// Service runs trending writes on a worker pool so that search callers never wait for them
type Service struct {
	store *Store
	pool  *ants.Pool
	wg    sync.WaitGroup
}

// NewService wraps store with a pool of the given size
func NewService(store *Store, workers int) (*Service, error) {
	if workers <= 0 {
		workers = 8
	}

	// 池满时 Submit 直接返回 ErrPoolOverload，写入被丢弃
	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			log.Error().Interface("panic", p).Msg("Trending worker panic")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trending pool: %w", err)
	}

	return &Service{store: store, pool: pool}, nil
}

// RecordAsync schedules IncrementOrCreate and returns immediately.
// When every worker is busy the write is logged and dropped.
func (s *Service) RecordAsync(term string, movie model.MovieSummary) {
	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		s.store.IncrementOrCreate(ctx, term, movie)
	})
	if err != nil {
		s.wg.Done()
		metrics.TrendingWrites.WithLabelValues("dropped").Inc()
		log.Error().Err(err).Str("term", term).Msg("Failed to schedule trending update")
	}
}

// TopTrending delegates to the store
func (s *Service) TopTrending(ctx context.Context, limit int) []model.TrendingRecord {
	return s.store.TopTrending(ctx, limit)
}

// Wait blocks until every scheduled write finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close waits for pending writes and releases the pool
func (s *Service) Close() error {
	s.wg.Wait()
	return s.pool.ReleaseTimeout(5 * time.Second)
}
