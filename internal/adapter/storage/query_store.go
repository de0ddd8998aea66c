package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"wander/internal/domain/place"
)

// QueryStore implements place.QueryStore on Postgres. Each completed
// pipeline query is recorded for analytics; the table is append-only.
type QueryStore struct {
	db *pgxpool.Pool
}

// NewQueryStore creates a new query store
func NewQueryStore(db *pgxpool.Pool) *QueryStore {
	return &QueryStore{
		db: db,
	}
}

// SaveQuery records one completed query
func (s *QueryStore) SaveQuery(ctx context.Context, rec place.QueryRecord) error {
	query := `
		INSERT INTO place_queries (
			id, category, method, latitude, longitude,
			result_count, status, error, duration_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
	`

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		ctx,
		query,
		rec.ID,
		rec.Category,
		string(rec.Method),
		rec.Location.Latitude,
		rec.Location.Longitude,
		rec.ResultCount,
		rec.Status,
		rec.Error,
		rec.Duration.Milliseconds(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting query record: %w", err)
	}

	return nil
}

// RecentQueries returns the most recent query records, newest first
func (s *QueryStore) RecentQueries(ctx context.Context, limit int) ([]place.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, category, method, latitude, longitude,
		       result_count, status, error, duration_ms, created_at
		FROM place_queries
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var records []place.QueryRecord
	for rows.Next() {
		var (
			rec        place.QueryRecord
			method     string
			durationMs int64
		)

		if err := rows.Scan(
			&rec.ID, &rec.Category, &method,
			&rec.Location.Latitude, &rec.Location.Longitude,
			&rec.ResultCount, &rec.Status, &rec.Error,
			&durationMs, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		rec.Method = place.SearchMethod(method)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
