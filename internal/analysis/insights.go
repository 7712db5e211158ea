package analysis

import (
	"fmt"

	"spendlens/domain/campaign"
)

// Insight is one automatically generated observation for the dashboard.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

const (
	InsightPositive = "positive"
	InsightSuccess  = "success"
	InsightWarning  = "warning"
	InsightInfo     = "info"
)

// ChannelInsights compares app against web performance: profitability,
// engagement and budget balance.
func (e *Engine) ChannelInsights(summary FunnelSummary) []Insight {
	var insights []Insight
	app, web := summary.App, summary.Web
	if len(app.FunnelValues) == 0 || len(web.FunnelValues) == 0 {
		return insights
	}

	switch {
	case app.ROAS > web.ROAS*1.2:
		insights = append(insights, Insight{
			Type:    InsightPositive,
			Title:   "App more profitable",
			Message: fmt.Sprintf("App generates a ROAS of %.2f vs %.2f for web", app.ROAS, web.ROAS),
		})
	case web.ROAS > app.ROAS*1.2:
		insights = append(insights, Insight{
			Type:    InsightPositive,
			Title:   "Web more profitable",
			Message: fmt.Sprintf("Web generates a ROAS of %.2f vs %.2f for app", web.ROAS, app.ROAS),
		})
	}

	if app.CTR > web.CTR*1.5 {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Title:   "Higher app CTR",
			Message: fmt.Sprintf("App CTR is %.2f%% vs %.2f%% for web", app.CTR, web.CTR),
		})
	}

	totalCost := app.Cost + web.Cost
	if totalCost > 0 {
		appShare := app.Cost / totalCost * 100
		if appShare > 70 {
			insights = append(insights, Insight{
				Type:    InsightWarning,
				Title:   "Budget concentrated on app",
				Message: fmt.Sprintf("App takes %.0f%% of total budget", appShare),
			})
		} else if appShare < 30 {
			insights = append(insights, Insight{
				Type:    InsightWarning,
				Title:   "Budget concentrated on web",
				Message: fmt.Sprintf("Web takes %.0f%% of total budget", 100-appShare),
			})
		}
	}
	return insights
}

// GenerateInsights derives headline observations from the whole data
// set: overall profitability, the best platform and recent CPA drift.
func (e *Engine) GenerateInsights(records []campaign.Record, days []ConsolidatedDay) []Insight {
	var insights []Insight
	if len(records) == 0 {
		return insights
	}

	t := sumRecords(records)
	if t.Cost > 0 {
		roas := t.Revenue / t.Cost
		if roas > 3 {
			insights = append(insights, Insight{
				Type:    InsightPositive,
				Title:   "Excellent ROAS",
				Message: fmt.Sprintf("Overall ROAS of %.2f is excellent", roas),
			})
		} else if roas < 1 {
			insights = append(insights, Insight{
				Type:    InsightWarning,
				Title:   "Low ROAS",
				Message: fmt.Sprintf("Overall ROAS of %.2f needs optimization", roas),
			})
		}
	}

	if best, roas, ok := bestPlatform(records); ok {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Title:   "Best platform",
			Message: fmt.Sprintf("%s performs best with a ROAS of %.2f", best, roas),
		})
	}

	insights = append(insights, e.trendInsights(days)...)
	return insights
}

func bestPlatform(records []campaign.Record) (string, float64, bool) {
	byPlatform := make(map[string]totals)
	for _, r := range records {
		t := byPlatform[r.Platform]
		t.add(r)
		byPlatform[r.Platform] = t
	}

	best, bestROAS, found := "", -1.0, false
	for platform, t := range byPlatform {
		roas := safeDivide(t.Revenue, t.Cost)
		if !found || roas > bestROAS || (roas == bestROAS && platform < best) {
			best, bestROAS, found = platform, roas, true
		}
	}
	return best, bestROAS, found
}

// trendInsights compares the last week's CPA against an earlier window.
func (e *Engine) trendInsights(days []ConsolidatedDay) []Insight {
	var insights []Insight
	if len(days) < 7 {
		return insights
	}

	recent := days[len(days)-7:]
	older := days[:7]
	if len(days) < 14 {
		older = days[:len(days)/2]
	}

	recentCPA := windowCPA(recent)
	olderCPA := windowCPA(older)
	if recentCPA <= 0 || olderCPA <= 0 {
		return insights
	}

	change := (recentCPA - olderCPA) / olderCPA * 100
	if change < -10 {
		insights = append(insights, Insight{
			Type:    InsightPositive,
			Title:   "CPA improving",
			Message: fmt.Sprintf("CPA improved by %.1f%% recently", -change),
		})
	} else if change > 10 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Title:   "CPA degrading",
			Message: fmt.Sprintf("CPA degraded by %.1f%% recently", change),
		})
	}
	return insights
}

func windowCPA(days []ConsolidatedDay) float64 {
	var cost float64
	var installs int64
	for _, d := range days {
		cost += d.Cost
		installs += d.Installs
	}
	return safeDivide(cost, float64(installs))
}
