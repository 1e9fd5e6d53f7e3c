package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository is the optional analytics and embedding store:
// chat turn logs, recommendation-card feedback, and location
// description embeddings. The chat core runs fine without it.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to PostgreSQL and prepares the schema
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) migrate() error {
	schema := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS chat_logs (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			intent TEXT,
			city TEXT,
			result_names TEXT[],
			took_ms BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			location_id INT NOT NULL,
			action TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS location_embeddings (
			location_id INT PRIMARY KEY,
			embedding vector(768),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range schema {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// LogChatTurn records one completed conversation turn
func (r *PostgresRepository) LogChatTurn(ctx context.Context, sessionID, query, intent, city string, resultNames []string, tookMs int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_logs (session_id, query, intent, city, result_names, took_ms)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)`,
		sessionID, query, intent, city, pq.Array(resultNames), tookMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log chat turn: %w", err)
	}
	return nil
}

// LogFeedback records a user action on a recommendation card
func (r *PostgresRepository) LogFeedback(ctx context.Context, sessionID string, locationID int, action string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (session_id, location_id, action) VALUES ($1, $2, $3)`,
		sessionID, locationID, action,
	)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

// UpsertEmbedding stores or replaces the embedding for a location
func (r *PostgresRepository) UpsertEmbedding(ctx context.Context, locationID int, embedding []float32) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO location_embeddings (location_id, embedding, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (location_id) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = now()`,
		locationID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding for location %d: %w", locationID, err)
	}
	return nil
}

// SimilarTo returns the IDs of the k locations whose embeddings are
// nearest (cosine distance) to the given location's embedding, nearest
// first. The location itself is excluded.
func (r *PostgresRepository) SimilarTo(ctx context.Context, locationID, k int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.location_id
		 FROM location_embeddings e,
		      (SELECT embedding FROM location_embeddings WHERE location_id = $1) ref
		 WHERE e.location_id != $1
		 ORDER BY e.embedding <=> ref.embedding
		 LIMIT $2`,
		locationID, k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar locations: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan similar location: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasEmbedding reports whether an embedding is stored for the location
func (r *PostgresRepository) HasEmbedding(ctx context.Context, locationID int) (bool, error) {
	var id int
	err := r.db.GetContext(ctx, &id,
		`SELECT location_id FROM location_embeddings WHERE location_id = $1`, locationID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check embedding: %w", err)
	}
	return true, nil
}
