package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
	"spendlens/internal/errors"
)

// Engine computes the derived analytics on top of the consolidated
// daily series.
type Engine struct {
	anomalyThreshold float64
}

func NewEngine(anomalyThreshold float64) *Engine {
	return &Engine{anomalyThreshold: anomalyThreshold}
}

// Anomaly is one daily value outside the mean +/- k*stddev band.
type Anomaly struct {
	Date      core.Day `json:"date"`
	Metric    string   `json:"metric"`
	Value     float64  `json:"value"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"std_dev"`
	Deviation float64  `json:"deviation"`
	Kind      string   `json:"kind"`
}

const (
	AnomalyHigh = "High"
	AnomalyLow  = "Low"
)

// metricValue extracts a named metric from a consolidated day.
func metricValue(d ConsolidatedDay, metric string) (float64, bool) {
	switch metric {
	case "cost":
		return d.Cost, true
	case "impressions":
		return float64(d.Impressions), true
	case "clicks":
		return float64(d.Clicks), true
	case "installs":
		return float64(d.Installs), true
	case "purchases":
		return float64(d.Purchases), true
	case "revenue":
		return d.Revenue, true
	case "roas":
		return d.ROAS, true
	case "cpa":
		return d.CPA, true
	case "ctr":
		return d.CTR, true
	}
	return 0, false
}

// DetectAnomalies flags days whose metric value lies beyond the
// configured number of standard deviations from the series mean. A flat
// series produces no anomalies.
func (e *Engine) DetectAnomalies(days []ConsolidatedDay, metric string) ([]Anomaly, error) {
	values := make([]float64, 0, len(days))
	for _, d := range days {
		v, ok := metricValue(d, metric)
		if !ok {
			return nil, errors.InvalidInput("unknown metric: " + metric)
		}
		values = append(values, v)
	}
	if len(values) < 2 {
		return nil, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute mean")
	}
	stddev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute standard deviation")
	}
	if stddev == 0 {
		return nil, nil
	}

	upper := mean + e.anomalyThreshold*stddev
	lower := mean - e.anomalyThreshold*stddev

	var anomalies []Anomaly
	for i, v := range values {
		if v <= upper && v >= lower {
			continue
		}
		kind := AnomalyLow
		if v > upper {
			kind = AnomalyHigh
		}
		anomalies = append(anomalies, Anomaly{
			Date:      days[i].Date,
			Metric:    metric,
			Value:     v,
			Mean:      mean,
			StdDev:    stddev,
			Deviation: math.Abs(v-mean) / stddev,
			Kind:      kind,
		})
	}
	return anomalies, nil
}

// FunnelMetrics is the whole-period rollup used by period comparison
// and the summary report.
type FunnelMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Installs    int64   `json:"installs"`
	Purchases   int64   `json:"purchases"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`

	ImpressionToClickRate   float64 `json:"impression_to_click_rate"`
	ClickToInstallRate      float64 `json:"click_to_install_rate"`
	InstallToPurchaseRate   float64 `json:"install_to_purchase_rate"`
	ImpressionToInstallRate float64 `json:"impression_to_install_rate"`
	CPA                     float64 `json:"cpa"`
	ROAS                    float64 `json:"roas"`
}

func funnelMetrics(t totals) FunnelMetrics {
	return FunnelMetrics{
		Impressions:             t.Impressions,
		Clicks:                  t.Clicks,
		Installs:                t.Installs,
		Purchases:               t.Purchases,
		Cost:                    t.Cost,
		Revenue:                 t.Revenue,
		ImpressionToClickRate:   percentage(float64(t.Clicks), float64(t.Impressions)),
		ClickToInstallRate:      percentage(float64(t.Installs), float64(t.Clicks)),
		InstallToPurchaseRate:   percentage(float64(t.Purchases), float64(t.Installs)),
		ImpressionToInstallRate: percentage(float64(t.Installs), float64(t.Impressions)),
		CPA:                     safeDivide(t.Cost, float64(t.Installs)),
		ROAS:                    safeDivide(t.Revenue, t.Cost),
	}
}

func (m FunnelMetrics) asMap() map[string]float64 {
	return map[string]float64{
		"impressions":                float64(m.Impressions),
		"clicks":                     float64(m.Clicks),
		"installs":                   float64(m.Installs),
		"purchases":                  float64(m.Purchases),
		"cost":                       m.Cost,
		"revenue":                    m.Revenue,
		"impression_to_click_rate":   m.ImpressionToClickRate,
		"click_to_install_rate":      m.ClickToInstallRate,
		"install_to_purchase_rate":   m.InstallToPurchaseRate,
		"impression_to_install_rate": m.ImpressionToInstallRate,
		"cpa":                        m.CPA,
		"roas":                       m.ROAS,
	}
}

// MetricChange is one metric's movement between two periods.
type MetricChange struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// ComparePeriods compares every funnel metric between two date ranges.
// A zero previous value yields 0% when current is also zero, 100%
// otherwise.
func (e *Engine) ComparePeriods(records []campaign.Record, curStart, curEnd, prevStart, prevEnd core.Day) map[string]MetricChange {
	inRange := func(d, start, end core.Day) bool {
		return d >= start && d <= end
	}
	var current, previous []campaign.Record
	for _, r := range records {
		if inRange(r.Date, curStart, curEnd) {
			current = append(current, r)
		}
		if inRange(r.Date, prevStart, prevEnd) {
			previous = append(previous, r)
		}
	}

	currentMap := funnelMetrics(sumRecords(current)).asMap()
	previousMap := funnelMetrics(sumRecords(previous)).asMap()

	comparison := make(map[string]MetricChange, len(currentMap))
	for metric, cur := range currentMap {
		prev := previousMap[metric]
		change := MetricChange{Current: cur, Previous: prev, Change: cur - prev}
		switch {
		case prev > 0:
			change.ChangePercent = (cur - prev) / prev * 100
		case cur != 0:
			change.ChangePercent = 100
		}
		comparison[metric] = change
	}
	return comparison
}

// CampaignPerformance is the whole-period performance of one campaign.
type CampaignPerformance struct {
	CampaignName string  `json:"campaign_name"`
	Cost         float64 `json:"cost"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Installs     int64   `json:"installs"`
	Purchases    int64   `json:"purchases"`
	Revenue      float64 `json:"revenue"`

	CTR               float64 `json:"ctr"`
	ConversionRate    float64 `json:"conversion_rate"`
	PurchaseRate      float64 `json:"purchase_rate"`
	CPC               float64 `json:"cpc"`
	CPA               float64 `json:"cpa"`
	CPM               float64 `json:"cpm"`
	ROAS              float64 `json:"roas"`
	RevenuePerInstall float64 `json:"rpi"`
}

func (p CampaignPerformance) metric(name string) float64 {
	switch name {
	case "cost":
		return p.Cost
	case "impressions":
		return float64(p.Impressions)
	case "clicks":
		return float64(p.Clicks)
	case "installs":
		return float64(p.Installs)
	case "purchases":
		return float64(p.Purchases)
	case "revenue":
		return p.Revenue
	case "ctr":
		return p.CTR
	case "conversion_rate":
		return p.ConversionRate
	case "cpa":
		return p.CPA
	case "roas":
		return p.ROAS
	}
	return 0
}

// TopPerformers ranks campaigns by a metric over the whole period.
func (e *Engine) TopPerformers(records []campaign.Record, metric string, topN int) []CampaignPerformance {
	byName := make(map[string]totals)
	var names []string
	for _, r := range records {
		if _, seen := byName[r.CampaignName]; !seen {
			names = append(names, r.CampaignName)
		}
		t := byName[r.CampaignName]
		t.add(r)
		byName[r.CampaignName] = t
	}

	perf := make([]CampaignPerformance, 0, len(names))
	for _, name := range names {
		t := byName[name]
		p := CampaignPerformance{
			CampaignName: name,
			Cost:         t.Cost,
			Impressions:  t.Impressions,
			Clicks:       t.Clicks,
			Installs:     t.Installs,
			Purchases:    t.Purchases,
			Revenue:      t.Revenue,
		}
		p.CTR = percentage(float64(p.Clicks), float64(p.Impressions))
		p.ConversionRate = percentage(float64(p.Installs), float64(p.Clicks))
		p.PurchaseRate = percentage(float64(p.Purchases), float64(p.Installs))
		p.CPC = safeDivide(p.Cost, float64(p.Clicks))
		p.CPA = safeDivide(p.Cost, float64(p.Installs))
		p.CPM = safeDivide(p.Cost, float64(p.Impressions)) * 1000
		p.ROAS = safeDivide(p.Revenue, p.Cost)
		p.RevenuePerInstall = safeDivide(p.Revenue, float64(p.Installs))
		perf = append(perf, p)
	}

	sort.SliceStable(perf, func(i, j int) bool {
		return perf[i].metric(metric) > perf[j].metric(metric)
	})
	if topN > 0 && len(perf) > topN {
		perf = perf[:topN]
	}
	return perf
}

// Period granularity for re-aggregation.
type Period string

const (
	PeriodDaily  Period = "day"
	PeriodWeekly Period = "week"
)

// PeriodMetrics is one re-aggregated bucket with re-derived ratios.
type PeriodMetrics struct {
	Period      core.Day `json:"period"`
	Cost        float64  `json:"cost"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Installs    int64    `json:"installs"`
	Purchases   int64    `json:"purchases"`
	Revenue     float64  `json:"revenue"`
	Opens       int64    `json:"opens"`

	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	PurchaseRate   float64 `json:"purchase_rate"`
	CPC            float64 `json:"cpc"`
	CPA            float64 `json:"cpa"`
	CPM            float64 `json:"cpm"`
	ROAS           float64 `json:"roas"`
}

// AggregateByPeriod re-buckets the daily series. Weekly buckets are
// keyed by the Monday of each week; ratios are re-derived from the
// bucket sums, never averaged.
func (e *Engine) AggregateByPeriod(days []ConsolidatedDay, period Period) []PeriodMetrics {
	buckets := make(map[core.Day]*PeriodMetrics)
	var order []core.Day
	for _, d := range days {
		key := d.Date
		if period == PeriodWeekly {
			key = d.Date.StartOfWeek()
		}
		b := buckets[key]
		if b == nil {
			b = &PeriodMetrics{Period: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.Cost += d.Cost
		b.Impressions += d.Impressions
		b.Clicks += d.Clicks
		b.Installs += d.Installs
		b.Purchases += d.Purchases
		b.Revenue += d.Revenue
		b.Opens += d.Opens
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]PeriodMetrics, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.CTR = percentage(float64(b.Clicks), float64(b.Impressions))
		b.ConversionRate = percentage(float64(b.Installs), float64(b.Clicks))
		b.PurchaseRate = percentage(float64(b.Purchases), float64(b.Installs))
		b.CPC = safeDivide(b.Cost, float64(b.Clicks))
		b.CPA = safeDivide(b.Cost, float64(b.Installs))
		b.CPM = safeDivide(b.Cost, float64(b.Impressions)) * 1000
		b.ROAS = safeDivide(b.Revenue, b.Cost)
		out = append(out, *b)
	}
	return out
}

// Trend fits a least-squares line through a metric's daily series and
// returns its slope and intercept over the day index.
func (e *Engine) Trend(days []ConsolidatedDay, metric string) (slope, intercept float64) {
	if len(days) < 2 {
		return 0, 0
	}
	xs := make([]float64, 0, len(days))
	ys := make([]float64, 0, len(days))
	for i, d := range days {
		v, ok := metricValue(d, metric)
		if !ok {
			return 0, 0
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// PeriodInfo describes the date coverage of a report.
type PeriodInfo struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TotalDays int    `json:"total_days"`
}

// Report is the full summary over a date range: global funnel metrics,
// per-source and per-platform breakdowns, trends and insights.
type Report struct {
	Period              PeriodInfo               `json:"period"`
	Global              FunnelMetrics            `json:"global_metrics"`
	SourcePerformance   map[string]FunnelMetrics `json:"source_performance"`
	PlatformPerformance map[string]FunnelMetrics `json:"platform_performance"`
	DailyTrends         []PeriodMetrics          `json:"daily_trends"`
	TopCampaigns        []CampaignPerformance    `json:"top_campaigns"`
	Insights            []Insight                `json:"insights"`
	GeneratedAt         string                   `json:"generated_at"`
}

// SummaryReport assembles the full report from records and the
// consolidated series built from them.
func (e *Engine) SummaryReport(records []campaign.Record, days []ConsolidatedDay) Report {
	report := Report{
		Global:              funnelMetrics(sumRecords(records)),
		PlatformPerformance: make(map[string]FunnelMetrics),
		DailyTrends:         e.AggregateByPeriod(days, PeriodDaily),
		TopCampaigns:        e.TopPerformers(records, "roas", 5),
		Insights:            e.GenerateInsights(records, days),
		GeneratedAt:         time.Now().UTC().Format(time.RFC3339),
	}

	report.SourcePerformance = SourceTotals(records)
	byPlatform := make(map[string][]campaign.Record)
	for _, r := range records {
		byPlatform[r.Platform] = append(byPlatform[r.Platform], r)
	}
	for platform, recs := range byPlatform {
		report.PlatformPerformance[platform] = funnelMetrics(sumRecords(recs))
	}

	if len(days) > 0 {
		start, end := days[0].Date, days[len(days)-1].Date
		report.Period = PeriodInfo{
			StartDate: string(start),
			EndDate:   string(end),
			TotalDays: daysBetween(start, end) + 1,
		}
	}
	return report
}

// SourceTotals sums records into funnel metrics per source, the raw
// drill-down behind the consolidated view.
func SourceTotals(records []campaign.Record) map[string]FunnelMetrics {
	bySource := make(map[string][]campaign.Record)
	for _, r := range records {
		bySource[string(r.Source)] = append(bySource[string(r.Source)], r)
	}
	out := make(map[string]FunnelMetrics, len(bySource))
	for source, recs := range bySource {
		out[source] = funnelMetrics(sumRecords(recs))
	}
	return out
}

func daysBetween(start, end core.Day) int {
	s, t := start.Time(), end.Time()
	if s.IsZero() || t.IsZero() {
		return 0
	}
	return int(t.Sub(s).Hours() / 24)
}
