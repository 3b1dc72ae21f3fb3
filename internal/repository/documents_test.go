package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"movie-finder-service/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runDocumentsSuite exercises the Documents contract against any backend
func runDocumentsSuite(t *testing.T, docs Documents) {
	t.Helper()
	ctx := context.Background()

	// unique terms keep env-gated backends reusable between runs
	suffix := uuid.NewString()[:8]
	termA, termB, termC := "alien-"+suffix, "batman-"+suffix, "cars-"+suffix

	found, err := docs.FindByTerm(ctx, termA)
	require.NoError(t, err)
	assert.Empty(t, found)

	now := time.Now().UTC().Truncate(time.Second)
	newRecord := func(term string, count int) model.TrendingRecord {
		return model.TrendingRecord{
			ID:         uuid.NewString(),
			SearchTerm: term,
			Count:      count,
			MovieID:    count * 100,
			PosterURL:  "https://image.tmdb.org/t/p/w500/" + term + ".jpg",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	a, b, c := newRecord(termA, 1), newRecord(termB, 3), newRecord(termC, 2)
	for _, rec := range []model.TrendingRecord{a, b, c} {
		require.NoError(t, docs.Create(ctx, rec))
	}

	found, err = docs.FindByTerm(ctx, termA)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.ID, found[0].ID)
	assert.Equal(t, termA, found[0].SearchTerm)
	assert.Equal(t, 1, found[0].Count)
	assert.Equal(t, 100, found[0].MovieID)
	assert.Equal(t, a.PosterURL, found[0].PosterURL)

	require.NoError(t, docs.UpdateCount(ctx, a.ID, 5))

	top, err := docs.ListTop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a.ID, top[0].ID)
	assert.Equal(t, 5, top[0].Count)
	assert.Equal(t, b.ID, top[1].ID)

	again, err := docs.ListTop(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, ids(top), ids(again))

	err = docs.UpdateCount(ctx, "missing-"+suffix, 1)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func ids(records []model.TrendingRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestMemoryDocuments(t *testing.T) {
	docs := NewMemoryDocuments()
	defer docs.Close()
	runDocumentsSuite(t, docs)
	assert.Equal(t, 3, docs.Len())
}

func TestSQLiteDocuments(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	docs, err := NewSQLiteDocuments(dsn)
	require.NoError(t, err)
	defer docs.Close()
	runDocumentsSuite(t, docs)
}

func TestRedisDocuments(t *testing.T) {
	mr := miniredis.RunT(t)

	docs, err := NewRedisDocuments(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer docs.Close()
	runDocumentsSuite(t, docs)
}

func TestRedisDocuments_FindByTermOldestFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	docs, err := NewRedisDocuments(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer docs.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	// ids sort the opposite way from creation time
	for _, rec := range []model.TrendingRecord{
		{ID: "a-newest", SearchTerm: "heat", Count: 1, CreatedAt: now.Add(2 * time.Minute)},
		{ID: "c-oldest", SearchTerm: "heat", Count: 1, CreatedAt: now},
		{ID: "b-middle", SearchTerm: "heat", Count: 1, CreatedAt: now.Add(time.Minute)},
	} {
		rec.UpdatedAt = rec.CreatedAt
		require.NoError(t, docs.Create(ctx, rec))
	}

	for i := 0; i < 3; i++ {
		found, err := docs.FindByTerm(ctx, "heat")
		require.NoError(t, err)
		assert.Equal(t, []string{"c-oldest", "b-middle", "a-newest"}, ids(found))
	}
}

func TestRedisDocuments_BadURL(t *testing.T) {
	_, err := NewRedisDocuments(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestMongoDocuments(t *testing.T) {
	uri := os.Getenv("MOVIEFINDER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("Skipping Mongo backend test: MOVIEFINDER_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	docs, err := NewMongoDocuments(ctx, uri, "movie_finder_test", "trending_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer docs.Close()
	defer docs.collection.Drop(ctx)
	runDocumentsSuite(t, docs)
}

func TestPostgresDocuments(t *testing.T) {
	dsn := os.Getenv("MOVIEFINDER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres backend test: MOVIEFINDER_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	docs, err := NewPostgresDocuments(ctx, dsn)
	require.NoError(t, err)
	defer docs.Close()

	_, err = docs.pool.Exec(ctx, "TRUNCATE trending_searches")
	require.NoError(t, err)
	runDocumentsSuite(t, docs)
}

func TestOpen(t *testing.T) {
	docs, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryDocuments{}, docs)

	_, err = Open(context.Background(), Options{Backend: "cassandra"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Options{Backend: BackendAppwrite})
	assert.Error(t, err, "appwrite needs its identifiers")
}
