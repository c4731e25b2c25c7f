package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	"github.com/medassist/offline-triage/pkg/config"
	"github.com/medassist/offline-triage/pkg/retry"
)

// Client represents a PostgreSQL database client
type Client struct {
	db *sql.DB
}

// NewClient creates a new PostgreSQL client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = retry.DoWithLog(ctx, retry.DefaultConfig(), "PostgreSQL",
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := db.PingContext(pingCtx)
			if isAuthFailure(err) {
				return retry.Permanent(err)
			}
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			observability.GetLogger().Warn().Err(err).
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Msg("PostgreSQL connection attempt failed")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	observability.GetLogger().Info().Str("host", cfg.Host).Msg("Connected to PostgreSQL")
	return &Client{db: db}, nil
}

// isAuthFailure reports SQLSTATE class 28 (invalid authorization) errors,
// which no amount of retrying will fix.
func isAuthFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == "28"
}

// NewClientFromDB wraps an open connection pool
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// EnsureSchema creates the audit table when it does not exist yet
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS triage_audits (
	id                UUID PRIMARY KEY,
	patient_id        TEXT NOT NULL DEFAULT '',
	symptoms          TEXT NOT NULL,
	language          TEXT NOT NULL,
	primary_diagnosis TEXT NOT NULL,
	confidence_score  DOUBLE PRECISION NOT NULL,
	referral_needed   BOOLEAN NOT NULL,
	source            TEXT NOT NULL,
	record            JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triage_audits_patient ON triage_audits (patient_id, created_at DESC);
`
