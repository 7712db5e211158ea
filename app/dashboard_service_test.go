package app

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
	records []campaign.Record
}

func (f *fakeRecordStore) InsertRecords(ctx context.Context, records []campaign.Record) (int, error) {
	f.records = append(f.records, records...)
	return len(records), nil
}

func (f *fakeRecordStore) GetRecords(ctx context.Context, start, end core.Day) ([]campaign.Record, error) {
	var out []campaign.Record
	for _, r := range f.records {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeClassificationStore struct {
	classifications map[string]campaign.Classification
}

func newFakeClassificationStore() *fakeClassificationStore {
	return &fakeClassificationStore{classifications: make(map[string]campaign.Classification)}
}

func (f *fakeClassificationStore) UpsertClassification(ctx context.Context, c campaign.Classification) error {
	f.classifications[c.CampaignName] = c
	return nil
}

func (f *fakeClassificationStore) DeleteClassification(ctx context.Context, campaignName string) error {
	delete(f.classifications, campaignName)
	return nil
}

func (f *fakeClassificationStore) GetUnclassifiedCampaigns(ctx context.Context) ([]campaign.UnclassifiedCampaign, error) {
	return nil, nil
}

func (f *fakeClassificationStore) GetCampaignOverview(ctx context.Context) ([]campaign.CampaignOverview, error) {
	return nil, nil
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

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		ExcludeUnattributed: true,
		CartPerPurchase:     3.0,
		LoginPerOpen:        0.25,
		AnomalyThreshold:    2.0,
	}
}

func newTestService(store *fakeRecordStore) *DashboardService {
	return NewDashboardService(store, newFakeClassificationStore(), &fakeImportLog{},
		testAnalyticsConfig(), internal.NewDefaultLogger())
}

func TestDashboard(t *testing.T) {
	store := &fakeRecordStore{records: testkit.NewKit().Records()}
	svc := newTestService(store)

	data, err := svc.Dashboard(context.Background(), "2024-01-01", "2024-01-14", nil)
	require.NoError(t, err)

	assert.Equal(t, core.Day("2024-01-01"), data.StartDate)
	assert.Len(t, data.Consolidated, 14)
	assert.NotEmpty(t, data.AppFunnel, "attribution app rows should produce an app funnel")
	assert.NotEmpty(t, data.WebFunnel, "unclassified ad campaigns default to the web funnel")
	assert.NotEmpty(t, data.TopCampaigns)
	assert.Len(t, data.FunnelSummary.App.FunnelSteps, 6)
	assert.Contains(t, data.RawBySource, string(campaign.SourceGoogleAds))
	assert.Contains(t, data.RawBySource, string(campaign.SourceBranch))
}

func TestDashboardValidatesDates(t *testing.T) {
	svc := newTestService(&fakeRecordStore{})

	_, err := svc.Dashboard(context.Background(), "", "2024-01-14", nil)
	assert.Error(t, err)

	_, err = svc.Dashboard(context.Background(), "2024-01-14", "2024-01-01", nil)
	assert.Error(t, err, "end before start must be rejected")
}

func TestDashboardPlatformFilter(t *testing.T) {
	store := &fakeRecordStore{records: testkit.NewKit().Records()}
	svc := newTestService(store)

	all, err := svc.Dashboard(context.Background(), "2024-01-01", "2024-01-14", nil)
	require.NoError(t, err)
	ios, err := svc.Dashboard(context.Background(), "2024-01-01", "2024-01-14", []string{campaign.PlatformIOS})
	require.NoError(t, err)

	var allInstalls, iosInstalls int64
	for _, d := range all.Consolidated {
		allInstalls += d.Installs
	}
	for _, d := range ios.Consolidated {
		iosInstalls += d.Installs
	}
	assert.Less(t, iosInstalls, allInstalls, "platform filter should drop non-iOS installs")
	assert.Greater(t, iosInstalls, int64(0))
}

func TestComparePeriods(t *testing.T) {
	store := &fakeRecordStore{records: testkit.NewKit().Records()}
	svc := newTestService(store)

	comparison, err := svc.ComparePeriods(context.Background(),
		"2024-01-08", "2024-01-14",
		"2024-01-01", "2024-01-07")
	require.NoError(t, err)

	cost, ok := comparison["cost"]
	require.True(t, ok)
	assert.Greater(t, cost.Current, 0.0)
	assert.Greater(t, cost.Previous, 0.0)
}

func TestClassifyCampaign(t *testing.T) {
	classifications := newFakeClassificationStore()
	svc := NewDashboardService(&fakeRecordStore{}, classifications, &fakeImportLog{},
		testAnalyticsConfig(), internal.NewDefaultLogger())
	ctx := context.Background()

	require.NoError(t, svc.ClassifyCampaign(ctx, "Search 01", "acquisition", "web"))
	stored := classifications.classifications["Search 01"]
	assert.Equal(t, campaign.TypeAcquisition, stored.CampaignType)
	assert.Equal(t, campaign.ChannelWeb, stored.ChannelType)

	assert.Error(t, svc.ClassifyCampaign(ctx, "", "acquisition", "web"))
	assert.Error(t, svc.ClassifyCampaign(ctx, "X", "bogus", "web"))
	assert.Error(t, svc.ClassifyCampaign(ctx, "X", "acquisition", "bogus"))

	require.NoError(t, svc.RemoveClassification(ctx, "Search 01"))
	_, exists := classifications.classifications["Search 01"]
	assert.False(t, exists)
	assert.Error(t, svc.RemoveClassification(ctx, ""))
}

func TestUnattributedBucketExcludedEverywhere(t *testing.T) {
	store := &fakeRecordStore{records: []campaign.Record{
		{CampaignName: campaign.UnattributedCampaign, Source: campaign.SourceBranch, Date: "2024-01-01",
			Installs: 500, Purchases: 80, Revenue: 9999},
		{CampaignName: "Search 01", Source: campaign.SourceGoogleAds, Date: "2024-01-01",
			Cost: 100, Impressions: 1000, Clicks: 50, Purchases: 5, Revenue: 400},
	}}
	svc := newTestService(store)
	ctx := context.Background()

	report, err := svc.Report(ctx, "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Zero(t, report.Global.Installs, "global metrics must not count the unattributed bucket")
	assert.Equal(t, 400.0, report.Global.Revenue)
	assert.NotContains(t, report.SourcePerformance, string(campaign.SourceBranch))
	for _, c := range report.TopCampaigns {
		assert.NotEqual(t, campaign.UnattributedCampaign, c.CampaignName)
	}

	data, err := svc.Dashboard(ctx, "2024-01-01", "2024-01-01", nil)
	require.NoError(t, err)
	for _, c := range data.TopCampaigns {
		assert.NotEqual(t, campaign.UnattributedCampaign, c.CampaignName)
	}
	assert.NotContains(t, data.RawBySource, string(campaign.SourceBranch))
}

func TestImportHistoryDefaultLimit(t *testing.T) {
	imports := &fakeImportLog{}
	for i := 0; i < 60; i++ {
		imports.entries = append(imports.entries, campaign.ImportEntry{Filename: "f"})
	}
	svc := NewDashboardService(&fakeRecordStore{}, newFakeClassificationStore(), imports,
		testAnalyticsConfig(), internal.NewDefaultLogger())

	history, err := svc.ImportHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, history, 50)
}

func TestReport(t *testing.T) {
	store := &fakeRecordStore{records: testkit.NewKit().Records()}
	svc := newTestService(store)

	report, err := svc.Report(context.Background(), "2024-01-01", "2024-01-14")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", report.Period.StartDate)
	assert.Equal(t, 14, report.Period.TotalDays)
	assert.Greater(t, report.Global.Cost, 0.0)
	assert.NotEmpty(t, report.SourcePerformance)
	assert.NotEmpty(t, report.TopCampaigns)
}
