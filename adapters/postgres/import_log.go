package postgres

import (
	"context"

	"spendlens/domain/campaign"
	"spendlens/ports"

	"github.com/jmoiron/sqlx"
)

// ImportLogImpl implements ImportLog for PostgreSQL
type ImportLogImpl struct {
	db *sqlx.DB
}

// NewImportLog creates a new PostgreSQL import log
func NewImportLog(db *sqlx.DB) ports.ImportLog {
	return &ImportLogImpl{db: db}
}

// LogImport records the outcome of one file import.
func (r *ImportLogImpl) LogImport(ctx context.Context, entry campaign.ImportEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO import_history (id, filename, source, record_count, success, error_message, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, string(entry.ID), entry.Filename, entry.Source, entry.RecordCount, entry.Success, entry.Error, entry.ImportedAt)
	return err
}

// GetImportHistory returns the most recent import log entries.
func (r *ImportLogImpl) GetImportHistory(ctx context.Context, limit int) ([]campaign.ImportEntry, error) {
	var entries []campaign.ImportEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, filename, source, record_count, success,
		       COALESCE(error_message, '') AS error_message,
		       imported_at::text AS imported_at
		FROM import_history
		ORDER BY imported_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
