package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/deusflow/aidigest/internal/logger"
	"github.com/deusflow/aidigest/internal/retry"
)

// PostgresBackend stores snapshots as rows of the snapshots table.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend connects, retrying the initial ping, and creates the schema.
func NewPostgresBackend(ctx context.Context, connectionString string, rc retry.RetryConfig) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	err = retry.WithRetry(ctx, rc, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pb := &PostgresBackend{db: db}
	if err := pb.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres snapshot store connected")
	return pb, nil
}

func (pb *PostgresBackend) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key VARCHAR(128) PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	`

	if _, err := pb.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (pb *PostgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := pb.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE key = $1`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return []byte(body), nil
}

// Write upserts the full document for key.
func (pb *PostgresBackend) Write(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO snapshots (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`

	if _, err := pb.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (pb *PostgresBackend) List(ctx context.Context) ([]string, error) {
	rows, err := pb.db.QueryContext(ctx, `SELECT key FROM snapshots`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			logger.Warn("error scanning snapshot key", "error", err)
			continue
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the database connection
func (pb *PostgresBackend) Close() error {
	if pb.db != nil {
		return pb.db.Close()
	}
	return nil
}
