package repository

import (
	"context"
	"fmt"
	"time"

	"movie-finder-service/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Documents = (*PostgresDocuments)(nil)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS trending_searches (
	id TEXT PRIMARY KEY,
	search_term TEXT NOT NULL,
	count INTEGER NOT NULL,
	movie_id BIGINT NOT NULL,
	poster_url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trending_searches_term ON trending_searches (search_term);
CREATE INDEX IF NOT EXISTS idx_trending_searches_count ON trending_searches (count DESC);
`

// PostgresDocuments stores trending records in PostgreSQL
type PostgresDocuments struct {
	pool *pgxpool.Pool
}

// NewPostgresDocuments connects a pgx pool and applies the schema
func NewPostgresDocuments(ctx context.Context, dsn string) (*PostgresDocuments, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return &PostgresDocuments{pool: pool}, nil
}

func (p *PostgresDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	rows, err := p.pool.Query(ctx, `
	SELECT id, search_term, count, movie_id, poster_url, created_at, updated_at
	FROM trending_searches WHERE search_term = $1 ORDER BY created_at ASC`, term)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	return scanPgRecords(rows)
}

func (p *PostgresDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	_, err := p.pool.Exec(ctx, `
	INSERT INTO trending_searches (id, search_term, count, movie_id, poster_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.SearchTerm, rec.Count, rec.MovieID, rec.PosterURL, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres insert: %w", err)
	}
	return nil
}

func (p *PostgresDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE trending_searches SET count = $1, updated_at = $2 WHERE id = $3`,
		count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	rows, err := p.pool.Query(ctx, `
	SELECT id, search_term, count, movie_id, poster_url, created_at, updated_at
	FROM trending_searches ORDER BY count DESC, created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	return scanPgRecords(rows)
}

func (p *PostgresDocuments) Close() error {
	p.pool.Close()
	return nil
}

func scanPgRecords(rows pgx.Rows) ([]model.TrendingRecord, error) {
	defer rows.Close()

	var records []model.TrendingRecord
	for rows.Next() {
		var r model.TrendingRecord
		var movieID int64
		if err := rows.Scan(&r.ID, &r.SearchTerm, &r.Count, &movieID, &r.PosterURL, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres scan: %w", err)
		}
		r.MovieID = int(movieID)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows: %w", err)
	}
	return records, nil
}
