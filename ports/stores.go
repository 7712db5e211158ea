// Package ports defines the persistence collaborator contracts. The core
// never issues queries itself; everything it needs from storage goes
// through these interfaces.
package ports

import (
	"context"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// RecordStore persists canonical records. Records are immutable once
// stored: batches are append-only and identified by their BatchID.
type RecordStore interface {
	// InsertRecords stores one ingestion batch and returns the number
	// of rows inserted.
	InsertRecords(ctx context.Context, records []campaign.Record) (int, error)

	// GetRecords returns all records in [start, end] (inclusive) with
	// their classification joined in where one exists.
	GetRecords(ctx context.Context, start, end core.Day) ([]campaign.Record, error)
}

// ClassificationStore manages the user-maintained campaign classification.
type ClassificationStore interface {
	// UpsertClassification creates or replaces the classification for a
	// campaign name. Last write wins.
	UpsertClassification(ctx context.Context, c campaign.Classification) error

	// DeleteClassification removes a campaign's classification entry.
	DeleteClassification(ctx context.Context, campaignName string) error

	// GetUnclassifiedCampaigns lists campaign names present in ingested
	// data that have no classification yet.
	GetUnclassifiedCampaigns(ctx context.Context) ([]campaign.UnclassifiedCampaign, error)

	// GetCampaignOverview lists every known campaign with its
	// classification state and headline spend figures.
	GetCampaignOverview(ctx context.Context) ([]campaign.CampaignOverview, error)
}

// ImportLog records the outcome of every file import.
type ImportLog interface {
	LogImport(ctx context.Context, entry campaign.ImportEntry) error
	GetImportHistory(ctx context.Context, limit int) ([]campaign.ImportEntry, error)
}
