package postgres

import (
	"context"

	"spendlens/domain/campaign"
	"spendlens/ports"

	"github.com/jmoiron/sqlx"
)

// ClassificationStoreImpl implements ClassificationStore for PostgreSQL
type ClassificationStoreImpl struct {
	db *sqlx.DB
}

// NewClassificationStore creates a new PostgreSQL classification store
func NewClassificationStore(db *sqlx.DB) ports.ClassificationStore {
	return &ClassificationStoreImpl{db: db}
}

// UpsertClassification creates or replaces a campaign classification.
func (r *ClassificationStoreImpl) UpsertClassification(ctx context.Context, c campaign.Classification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaign_classifications (campaign_name, campaign_type, channel_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (campaign_name)
		DO UPDATE SET campaign_type = EXCLUDED.campaign_type,
		              channel_type = EXCLUDED.channel_type,
		              updated_at = NOW()
	`, c.CampaignName, c.CampaignType, c.ChannelType)
	return err
}

// DeleteClassification removes a campaign's classification entry.
func (r *ClassificationStoreImpl) DeleteClassification(ctx context.Context, campaignName string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM campaign_classifications WHERE campaign_name = $1
	`, campaignName)
	return err
}

// GetUnclassifiedCampaigns lists campaign names seen in ingested data
// that have no classification yet.
func (r *ClassificationStoreImpl) GetUnclassifiedCampaigns(ctx context.Context) ([]campaign.UnclassifiedCampaign, error) {
	var campaigns []campaign.UnclassifiedCampaign
	err := r.db.SelectContext(ctx, &campaigns, `
		SELECT DISTINCT ON (cr.campaign_name) cr.campaign_name, cr.source
		FROM campaign_records cr
		LEFT JOIN campaign_classifications cc ON cc.campaign_name = cr.campaign_name
		WHERE cc.campaign_name IS NULL AND cr.campaign_name <> ''
		ORDER BY cr.campaign_name, cr.source
	`)
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetCampaignOverview lists every known campaign with its
// classification state and headline spend figures.
func (r *ClassificationStoreImpl) GetCampaignOverview(ctx context.Context) ([]campaign.CampaignOverview, error) {
	var overview []campaign.CampaignOverview
	err := r.db.SelectContext(ctx, &overview, `
		SELECT
			cr.campaign_name,
			MIN(cr.source) AS source,
			cc.campaign_type,
			cc.channel_type,
			COALESCE(SUM(cr.cost), 0) AS total_cost,
			COALESCE(SUM(cr.clicks), 0) AS total_clicks
		FROM campaign_records cr
		LEFT JOIN campaign_classifications cc ON cc.campaign_name = cr.campaign_name
		WHERE cr.campaign_name <> ''
		GROUP BY cr.campaign_name, cc.campaign_type, cc.channel_type
		ORDER BY total_cost DESC, cr.campaign_name
	`)
	if err != nil {
		return nil, err
	}
	return overview, nil
}
