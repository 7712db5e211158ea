// Package postgres implements the persistence ports on PostgreSQL.
package postgres

import (
	"context"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
	"spendlens/ports"

	"github.com/jmoiron/sqlx"
)

// RecordStoreImpl implements RecordStore for PostgreSQL
type RecordStoreImpl struct {
	db *sqlx.DB
}

// NewRecordStore creates a new PostgreSQL record store
func NewRecordStore(db *sqlx.DB) ports.RecordStore {
	return &RecordStoreImpl{db: db}
}

// InsertRecords stores one ingestion batch inside a single transaction.
func (r *RecordStoreImpl) InsertRecords(ctx context.Context, records []campaign.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO campaign_records
			(campaign_name, source, platform, date, impressions, clicks, cost,
			 installs, purchases, revenue, opens, logins, ad_partner, batch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.CampaignName, rec.Source, rec.Platform, string(rec.Date),
			rec.Impressions, rec.Clicks, rec.Cost,
			rec.Installs, rec.Purchases, rec.Revenue,
			rec.Opens, rec.Logins, rec.AdPartner, string(rec.BatchID))
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// GetRecords returns records in the inclusive date range with their
// classification joined in where one exists.
func (r *RecordStoreImpl) GetRecords(ctx context.Context, start, end core.Day) ([]campaign.Record, error) {
	var records []campaign.Record
	err := r.db.SelectContext(ctx, &records, `
		SELECT
			cr.campaign_name, cr.source, cr.platform, cr.date::text AS date,
			cr.impressions, cr.clicks, cr.cost,
			cr.installs, cr.purchases, cr.revenue,
			cr.opens, cr.logins, cr.ad_partner, cr.batch_id,
			cc.campaign_type, cc.channel_type
		FROM campaign_records cr
		LEFT JOIN campaign_classifications cc ON cc.campaign_name = cr.campaign_name
		WHERE cr.date >= $1 AND cr.date <= $2
		ORDER BY cr.date, cr.campaign_name
	`, string(start), string(end))
	if err != nil {
		return nil, err
	}
	return records, nil
}
