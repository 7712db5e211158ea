package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/testkit"
)

type fakeRecordStore struct {
	inserted []campaign.Record
}

func (f *fakeRecordStore) InsertRecords(ctx context.Context, records []campaign.Record) (int, error) {
	f.inserted = append(f.inserted, records...)
	return len(records), nil
}

func (f *fakeRecordStore) GetRecords(ctx context.Context, start, end core.Day) ([]campaign.Record, error) {
	var out []campaign.Record
	for _, r := range f.inserted {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeImportLog struct {
	entries []campaign.ImportEntry
}

func (f *fakeImportLog) LogImport(ctx context.Context, entry campaign.ImportEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeImportLog) GetImportHistory(ctx context.Context, limit int) ([]campaign.ImportEntry, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

type noopSheets struct{}

func (noopSheets) ToCSV(data []byte) ([]byte, error) { return data, nil }

func newTestService(store *fakeRecordStore, imports *fakeImportLog) *Service {
	cfg := config.IngestConfig{MaxFileSizeMB: 1, Concurrency: 2}
	return NewService(store, imports, noopSheets{}, cfg, internal.NewDefaultLogger())
}

func TestIngestBatchAllSources(t *testing.T) {
	kit := testkit.NewKit()
	store := &fakeRecordStore{}
	imports := &fakeImportLog{}
	svc := newTestService(store, imports)

	files := []UploadFile{
		{Filename: "google-ads-jan.csv", Data: kit.GoogleCSV()},
		{Filename: "asa-jan.csv", Data: kit.ASACSV()},
		{Filename: "branch-export-jan.csv", Data: kit.BranchCSV()},
	}

	results := svc.IngestBatch(context.Background(), files)
	require.Len(t, results, 3)

	for _, result := range results {
		assert.Empty(t, result.Error, "file %s should ingest cleanly", result.Filename)
		assert.Greater(t, result.Inserted, 0, "file %s should insert rows", result.Filename)
	}

	assert.Equal(t, campaign.SourceGoogleAds, results[0].Source)
	assert.Equal(t, campaign.SourceAppleSearchAds, results[1].Source)
	assert.Equal(t, campaign.SourceBranch, results[2].Source)

	// Every attempt lands in the import log.
	assert.Len(t, imports.entries, 3)
	for _, entry := range imports.entries {
		assert.True(t, entry.Success)
	}
}

func TestIngestBatchFailureDoesNotAbortBatch(t *testing.T) {
	kit := testkit.NewKit()
	store := &fakeRecordStore{}
	imports := &fakeImportLog{}
	svc := newTestService(store, imports)

	files := []UploadFile{
		{Filename: "notes.csv", Data: []byte("just some prose\nno table here at all")},
		{Filename: "google-ads.csv", Data: kit.GoogleCSV()},
	}

	results := svc.IngestBatch(context.Background(), files)
	require.Len(t, results, 2)

	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[1].Error)
	assert.Greater(t, results[1].Inserted, 0)

	require.Len(t, imports.entries, 2)
	failures := 0
	for _, entry := range imports.entries {
		if !entry.Success {
			failures++
			assert.NotEmpty(t, entry.Error)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestIngestNeutralFilenameDefaultsToAdPlatform(t *testing.T) {
	store := &fakeRecordStore{}
	svc := newTestService(store, &fakeImportLog{})

	// Nothing in the name or the header signature marks the source;
	// the file is still a perfectly valid generic export.
	data := []byte("Campaign,Date,Cost,Impr.,Clicks\n\"Spring Promo\",2025-05-16,10.50,1000,20\n")
	results := svc.IngestBatch(context.Background(), []UploadFile{{Filename: "data.csv", Data: data}})
	require.Len(t, results, 1)
	require.Empty(t, results[0].Error)
	assert.Equal(t, campaign.SourceGoogleAds, results[0].Source)

	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, "Spring Promo", rec.CampaignName)
	assert.Equal(t, core.Day("2025-05-16"), rec.Date)
	assert.Equal(t, 10.50, rec.Cost)
	assert.Equal(t, int64(1000), rec.Impressions)
	assert.Equal(t, int64(20), rec.Clicks)
}

func TestIngestRejectsOversizedFile(t *testing.T) {
	store := &fakeRecordStore{}
	imports := &fakeImportLog{}
	svc := newTestService(store, imports)

	big := make([]byte, 2*1024*1024)
	results := svc.IngestBatch(context.Background(), []UploadFile{{Filename: "google.csv", Data: big}})
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Error)
	assert.Zero(t, results[0].Inserted)
}

func TestIngestBranchRelabelsPartners(t *testing.T) {
	kit := testkit.NewKit()
	store := &fakeRecordStore{}
	svc := newTestService(store, &fakeImportLog{})

	results := svc.IngestBatch(context.Background(), []UploadFile{
		{Filename: "branch-export.csv", Data: kit.BranchCSV()},
	})
	require.Empty(t, results[0].Error)

	sources := make(map[campaign.Source]int)
	for _, r := range store.inserted {
		sources[r.Source]++
	}
	assert.Greater(t, sources[campaign.SourceAppleSearchAds], 0, "partner rows should relabel to the app-store network")
	assert.Greater(t, sources[campaign.SourceGoogleAdWords], 0, "partner rows should relabel to the ad platform")
	assert.Greater(t, sources[campaign.SourceBranch], 0, "unattributed partner rows stay attribution rows")
}
