package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"movie-finder-service/internal/model"
)

var _ Documents = (*MemoryDocuments)(nil)

// MemoryDocuments keeps records in process memory
type MemoryDocuments struct {
	mu      sync.RWMutex
	records map[string]model.TrendingRecord
	order   []string // insertion order, used to break count ties
}

// NewMemoryDocuments creates an empty in-memory store
func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{records: make(map[string]model.TrendingRecord)}
}

func (m *MemoryDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.TrendingRecord
	for _, id := range m.order {
		if rec := m.records[id]; rec.SearchTerm == term {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemoryDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *MemoryDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Count = count
	rec.UpdatedAt = time.Now().UTC()
	m.records[id] = rec
	return nil
}

func (m *MemoryDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.TrendingRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records
func (m *MemoryDocuments) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryDocuments) Close() error {
	return nil
}
