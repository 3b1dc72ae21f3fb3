package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"movie-finder-service/internal/model"

	_ "modernc.org/sqlite"
)

var _ Documents = (*SQLiteDocuments)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trending_searches (
	id TEXT PRIMARY KEY,
	search_term TEXT NOT NULL,
	count INTEGER NOT NULL,
	movie_id INTEGER NOT NULL,
	poster_url TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trending_searches_term ON trending_searches (search_term);
CREATE INDEX IF NOT EXISTS idx_trending_searches_count ON trending_searches (count DESC);
`

// SQLiteDocuments stores trending records in a SQLite database
type SQLiteDocuments struct {
	db *sql.DB
}

// NewSQLiteDocuments opens dsn and applies the schema
func NewSQLiteDocuments(dsn string) (*SQLiteDocuments, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteDocuments{db: db}, nil
}

func (s *SQLiteDocuments) FindByTerm(ctx context.Context, term string) ([]model.TrendingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, search_term, count, movie_id, poster_url, created_at, updated_at
	FROM trending_searches WHERE search_term = ? ORDER BY created_at ASC`, term)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	return scanSQLRecords(rows)
}

func (s *SQLiteDocuments) Create(ctx context.Context, rec model.TrendingRecord) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO trending_searches (id, search_term, count, movie_id, poster_url, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SearchTerm, rec.Count, rec.MovieID, rec.PosterURL, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

func (s *SQLiteDocuments) UpdateCount(ctx context.Context, id string, count int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trending_searches SET count = ?, updated_at = ? WHERE id = ?`,
		count, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("sqlite update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDocuments) ListTop(ctx context.Context, limit int) ([]model.TrendingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, search_term, count, movie_id, poster_url, created_at, updated_at
	FROM trending_searches ORDER BY count DESC, created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	return scanSQLRecords(rows)
}

func (s *SQLiteDocuments) Close() error {
	return s.db.Close()
}

func scanSQLRecords(rows *sql.Rows) ([]model.TrendingRecord, error) {
	defer rows.Close()

	var records []model.TrendingRecord
	for rows.Next() {
		var r model.TrendingRecord
		if err := rows.Scan(&r.ID, &r.SearchTerm, &r.Count, &r.MovieID, &r.PosterURL, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}
	return records, nil
}
