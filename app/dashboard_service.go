// Package app wires the domain pipeline into use-case services the
// transport layer calls.
package app

import (
	"context"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
	"spendlens/internal"
	"spendlens/internal/analysis"
	"spendlens/internal/config"
	"spendlens/internal/errors"
	"spendlens/ports"
)

// DashboardData is the complete analytical payload for one date range.
type DashboardData struct {
	StartDate core.Day `json:"start_date"`
	EndDate   core.Day `json:"end_date"`

	Consolidated  []analysis.ConsolidatedDay        `json:"consolidated"`
	AppFunnel     []analysis.AppFunnelDay           `json:"app_funnel"`
	WebFunnel     []analysis.WebFunnelDay           `json:"web_funnel"`
	FunnelSummary analysis.FunnelSummary            `json:"funnel_summary"`
	CampaignTypes []analysis.CampaignTypeRow        `json:"campaign_types"`
	TypeSummaries []analysis.TypeSummary            `json:"type_summaries"`
	TopCampaigns  []analysis.CampaignPerformance    `json:"top_campaigns"`
	RawBySource   map[string]analysis.FunnelMetrics `json:"raw_by_source"`
	Anomalies     []analysis.Anomaly                `json:"anomalies"`
	Insights      []analysis.Insight                `json:"insights"`
}

// DashboardService answers every read-side question the dashboard asks.
type DashboardService struct {
	records         ports.RecordStore
	classifications ports.ClassificationStore
	imports         ports.ImportLog
	cfg             config.AnalyticsConfig
	logger          *internal.Logger

	funnels   *analysis.FunnelBuilder
	campaigns *analysis.CampaignTypeAnalyzer
	engine    *analysis.Engine
}

func NewDashboardService(records ports.RecordStore, classifications ports.ClassificationStore,
	imports ports.ImportLog, cfg config.AnalyticsConfig, logger *internal.Logger) *DashboardService {
	policy := analysis.EstimationPolicy{
		CartPerPurchase: cfg.CartPerPurchase,
		LoginPerOpen:    cfg.LoginPerOpen,
	}
	return &DashboardService{
		records:         records,
		classifications: classifications,
		imports:         imports,
		cfg:             cfg,
		logger:          logger,
		funnels:         analysis.NewFunnelBuilder(policy),
		campaigns:       analysis.NewCampaignTypeAnalyzer(policy),
		engine:          analysis.NewEngine(cfg.AnomalyThreshold),
	}
}

// Dashboard computes the full analytical view for a date range. The
// unattributed bucket is filtered exactly once, right after load, so
// every view below works from the same population.
func (s *DashboardService) Dashboard(ctx context.Context, start, end core.Day, platforms []string) (*DashboardData, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errors.InvalidInput("start and end dates are required")
	}
	if end.Before(start) {
		return nil, errors.InvalidInput("end date is before start date")
	}

	records, err := s.records.GetRecords(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "could not load records")
	}
	s.logger.Debug("[dashboard] loaded %d records for %s..%s", len(records), start, end)
	if s.cfg.ExcludeUnattributed {
		records = analysis.DropUnattributed(records)
	}

	split := analysis.SplitBySource(records, platforms)
	consolidated := analysis.Consolidate(split)
	appFunnel := s.funnels.BuildAppFunnel(split)
	webFunnel := s.funnels.BuildWebFunnel(split)
	summary := s.funnels.Summarize(appFunnel, webFunnel)
	typeRows := s.campaigns.Analyze(records)
	typeSummaries := s.campaigns.Summarize(typeRows)

	anomalies, err := s.engine.DetectAnomalies(consolidated, "cost")
	if err != nil {
		return nil, err
	}

	insights := s.engine.ChannelInsights(summary)
	insights = append(insights, s.campaigns.TypeInsights(typeSummaries)...)
	insights = append(insights, s.engine.GenerateInsights(records, consolidated)...)

	return &DashboardData{
		StartDate:     start,
		EndDate:       end,
		Consolidated:  consolidated,
		AppFunnel:     appFunnel,
		WebFunnel:     webFunnel,
		FunnelSummary: summary,
		CampaignTypes: typeRows,
		TypeSummaries: typeSummaries,
		TopCampaigns:  s.engine.TopPerformers(records, "roas", 10),
		RawBySource:   analysis.SourceTotals(split.Records()),
		Anomalies:     anomalies,
		Insights:      insights,
	}, nil
}

// Report builds the exportable summary report for a date range.
func (s *DashboardService) Report(ctx context.Context, start, end core.Day) (*analysis.Report, error) {
	records, err := s.records.GetRecords(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "could not load records")
	}
	if s.cfg.ExcludeUnattributed {
		records = analysis.DropUnattributed(records)
	}
	report := s.engine.SummaryReport(records, analysis.Consolidate(analysis.SplitBySource(records, nil)))
	return &report, nil
}

// ComparePeriods compares all funnel metrics between two date ranges.
func (s *DashboardService) ComparePeriods(ctx context.Context, curStart, curEnd, prevStart, prevEnd core.Day) (map[string]analysis.MetricChange, error) {
	start, end := prevStart, curEnd
	if curStart.Before(start) {
		start = curStart
	}
	if prevEnd.After(end) {
		end = prevEnd
	}
	records, err := s.records.GetRecords(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "could not load records")
	}
	if s.cfg.ExcludeUnattributed {
		records = analysis.DropUnattributed(records)
	}
	return s.engine.ComparePeriods(records, curStart, curEnd, prevStart, prevEnd), nil
}

// ClassifyCampaign validates and stores a campaign classification.
func (s *DashboardService) ClassifyCampaign(ctx context.Context, name, campaignType, channelType string) error {
	if name == "" {
		return errors.InvalidInput("campaign name is required")
	}
	if !campaign.ValidCampaignType(campaignType) {
		return errors.InvalidInput("invalid campaign type: " + campaignType)
	}
	if !campaign.ValidChannelType(channelType) {
		return errors.InvalidInput("invalid channel type: " + channelType)
	}
	c := campaign.Classification{
		CampaignName: name,
		CampaignType: campaign.CampaignType(campaignType),
		ChannelType:  campaign.ChannelType(channelType),
	}
	if err := s.classifications.UpsertClassification(ctx, c); err != nil {
		return errors.Wrap(err, "could not store classification")
	}
	s.logger.Info("[dashboard] classified %q as %s/%s", name, campaignType, channelType)
	return nil
}

// RemoveClassification deletes a campaign's classification.
func (s *DashboardService) RemoveClassification(ctx context.Context, name string) error {
	if name == "" {
		return errors.InvalidInput("campaign name is required")
	}
	if err := s.classifications.DeleteClassification(ctx, name); err != nil {
		return errors.Wrap(err, "could not delete classification")
	}
	return nil
}

// UnclassifiedCampaigns lists campaigns still awaiting classification.
func (s *DashboardService) UnclassifiedCampaigns(ctx context.Context) ([]campaign.UnclassifiedCampaign, error) {
	return s.classifications.GetUnclassifiedCampaigns(ctx)
}

// CampaignOverview lists every campaign with its classification state.
func (s *DashboardService) CampaignOverview(ctx context.Context) ([]campaign.CampaignOverview, error) {
	return s.classifications.GetCampaignOverview(ctx)
}

// ImportHistory returns the most recent import log entries.
func (s *DashboardService) ImportHistory(ctx context.Context, limit int) ([]campaign.ImportEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.imports.GetImportHistory(ctx, limit)
}
