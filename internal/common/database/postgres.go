package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agency-workers/internal/common/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Migrate creates the tables owned by this service. Statements are idempotent.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS document_totals_audit (
		id            UUID PRIMARY KEY,
		document_kind TEXT NOT NULL,
		document_id   TEXT NOT NULL,
		reference     TEXT,
		stage         TEXT NOT NULL,
		subtotal      NUMERIC(14,2) NOT NULL,
		deduction     NUMERIC(14,2) NOT NULL,
		vat_amount    NUMERIC(14,2) NOT NULL,
		total         NUMERIC(14,2) NOT NULL,
		stored_total  NUMERIC(14,2),
		drift         NUMERIC(14,2) NOT NULL DEFAULT 0,
		recorded_by   TEXT,
		recorded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_document_totals_audit_doc
		ON document_totals_audit (document_kind, document_id)`,
}
