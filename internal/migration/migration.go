// Package migration manages the database schema.
package migration

import (
	"context"

	"spendlens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createCampaignRecordsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create campaign_records table")
	}
	if err := r.createClassificationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create campaign_classifications table")
	}
	if err := r.createImportHistoryTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create import_history table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *MigrationRunner) createCampaignRecordsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS campaign_records (
			id BIGSERIAL PRIMARY KEY,
			campaign_name TEXT NOT NULL,
			source TEXT NOT NULL,
			platform TEXT DEFAULT '',
			date DATE NOT NULL,
			impressions BIGINT DEFAULT 0,
			clicks BIGINT DEFAULT 0,
			cost DOUBLE PRECISION DEFAULT 0,
			installs BIGINT DEFAULT 0,
			purchases BIGINT DEFAULT 0,
			revenue DOUBLE PRECISION DEFAULT 0,
			opens BIGINT DEFAULT 0,
			logins BIGINT DEFAULT 0,
			ad_partner TEXT DEFAULT '',
			batch_id TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createClassificationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS campaign_classifications (
			campaign_name TEXT PRIMARY KEY,
			campaign_type TEXT NOT NULL,
			channel_type TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createImportHistoryTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS import_history (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			source TEXT DEFAULT '',
			record_count INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL DEFAULT TRUE,
			error_message TEXT DEFAULT '',
			imported_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_records_date ON campaign_records(date)",
		"CREATE INDEX IF NOT EXISTS idx_records_source ON campaign_records(source)",
		"CREATE INDEX IF NOT EXISTS idx_records_campaign ON campaign_records(campaign_name)",
		"CREATE INDEX IF NOT EXISTS idx_records_batch ON campaign_records(batch_id)",
		"CREATE INDEX IF NOT EXISTS idx_imports_date ON import_history(imported_at DESC)",
	}
	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}
	return nil
}
