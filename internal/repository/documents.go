package repository

import (
	"context"
	"errors"
	"fmt"

	"movie-finder-service/internal/model"
)

// Documents is the document-store port behind the trending counters.
// Backends only store and read; the upsert decision lives in the trending package.
type Documents interface {
	// FindByTerm lists records whose search term equals term exactly.
	FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error)

	// Create inserts a new record. rec.ID is assigned by the caller.
	Create(ctx context.Context, rec model.TrendingRecord) error

	// UpdateCount overwrites the count of an existing record.
	UpdateCount(ctx context.Context, id string, count int) error

	// ListTop returns records ordered by descending count, at most limit of them.
	ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error)

	Close() error
}

// ErrNotFound is returned by UpdateCount when no record has the given id
var ErrNotFound = errors.New("document not found")

// Backend names accepted by Open
const (
	BackendAppwrite = "appwrite"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Options carries the connection settings of every backend
type Options struct {
	Backend string

	Appwrite AppwriteConfig

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	SQLiteDSN   string
	PostgresDSN string
	RedisURL    string
}

// Open connects the backend selected by opts.Backend
func Open(ctx context.Context, opts Options) (Documents, error) {
	switch opts.Backend {
	case BackendAppwrite, "":
		return NewAppwriteDocuments(opts.Appwrite)
	case BackendMongo:
		return NewMongoDocuments(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendSQLite:
		return NewSQLiteDocuments(opts.SQLiteDSN)
	case BackendPostgres:
		return NewPostgresDocuments(ctx, opts.PostgresDSN)
	case BackendRedis:
		return NewRedisDocuments(ctx, opts.RedisURL)
	case BackendMemory:
		return NewMemoryDocuments(), nil
	default:
		return nil, fmt.Errorf("unknown trending backend %q", opts.Backend)
	}
}
