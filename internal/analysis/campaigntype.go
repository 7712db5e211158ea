package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"spendlens/domain/campaign"
)

// CampaignTypeRow is the aggregated performance of one (campaign type,
// channel) pair. Advertising metrics and conversion metrics come from
// different sources to avoid double counting.
type CampaignTypeRow struct {
	CampaignType campaign.CampaignType `json:"campaign_type"`
	ChannelType  campaign.ChannelType  `json:"channel_type"`

	Cost        float64 `json:"cost"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Campaigns   int     `json:"nb_campaigns"`
	Installs    int64   `json:"installs"`
	Opens       int64   `json:"opens"`
	Logins      int64   `json:"logins"`
	Purchases   int64   `json:"purchases"`
	Revenue     float64 `json:"revenue"`
	AddToCart   int64   `json:"add_to_cart"`

	CTR                float64 `json:"ctr"`
	ConversionRate     float64 `json:"conversion_rate"`
	PurchaseRate       float64 `json:"purchase_rate"`
	OpenRate           float64 `json:"open_rate"`
	LoginRate          float64 `json:"login_rate"`
	CartRate           float64 `json:"cart_rate"`
	CartToPurchaseRate float64 `json:"cart_to_purchase_rate"`
	CPC                float64 `json:"cpc"`
	CPA                float64 `json:"cpa"`
	ROAS               float64 `json:"roas"`
	RevenuePerInstall  float64 `json:"revenue_per_install"`
}

// CampaignTypeAnalyzer aggregates classified campaigns by their
// (type, channel) pair.
type CampaignTypeAnalyzer struct {
	policy EstimationPolicy
}

func NewCampaignTypeAnalyzer(policy EstimationPolicy) *CampaignTypeAnalyzer {
	return &CampaignTypeAnalyzer{policy: policy}
}

type typeChannelKey struct {
	campaignType campaign.CampaignType
	channelType  campaign.ChannelType
}

type typeChannelAgg struct {
	totals
	campaigns map[string]bool
}

// Analyze aggregates classified records per (type, channel). Advertising
// sources contribute cost, impressions, clicks and, for web campaigns,
// purchases and revenue; attribution rows contribute installs, opens,
// logins and the app-channel purchases and revenue.
func (a *CampaignTypeAnalyzer) Analyze(records []campaign.Record) []CampaignTypeRow {
	advertising := make(map[typeChannelKey]*typeChannelAgg)
	conversion := make(map[typeChannelKey]*typeChannelAgg)

	for _, r := range records {
		if !r.IsClassified() {
			continue
		}
		key := typeChannelKey{*r.CampaignType, *r.ChannelType}

		if r.Source.IsAdvertising() {
			agg := advertising[key]
			if agg == nil {
				agg = &typeChannelAgg{campaigns: make(map[string]bool)}
				advertising[key] = agg
			}
			agg.add(r)
			agg.campaigns[r.CampaignName] = true
		}
		if r.Source == campaign.SourceBranch {
			agg := conversion[key]
			if agg == nil {
				agg = &typeChannelAgg{campaigns: make(map[string]bool)}
				conversion[key] = agg
			}
			agg.add(r)
		}
	}

	keys := make(map[typeChannelKey]bool)
	for k := range advertising {
		keys[k] = true
	}
	for k := range conversion {
		keys[k] = true
	}

	rows := make([]CampaignTypeRow, 0, len(keys))
	for key := range keys {
		row := CampaignTypeRow{CampaignType: key.campaignType, ChannelType: key.channelType}
		if adv := advertising[key]; adv != nil {
			row.Cost = adv.Cost
			row.Impressions = adv.Impressions
			row.Clicks = adv.Clicks
			row.Campaigns = len(adv.campaigns)
		}
		if conv := conversion[key]; conv != nil {
			row.Installs = conv.Installs
			row.Opens = conv.Opens
			row.Logins = conv.Logins
		}

		// Web purchases settle on the ad platform; app purchases on
		// attribution.
		if key.channelType == campaign.ChannelWeb {
			if adv := advertising[key]; adv != nil {
				row.Purchases = adv.Purchases
				row.Revenue = adv.Revenue
			}
			row.AddToCart = int64(math.Round(float64(row.Purchases) * a.policy.CartPerPurchase))
		} else if conv := conversion[key]; conv != nil {
			row.Purchases = conv.Purchases
			row.Revenue = conv.Revenue
		}

		row.deriveMetrics()
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CampaignType != rows[j].CampaignType {
			return rows[i].CampaignType < rows[j].CampaignType
		}
		return rows[i].ChannelType < rows[j].ChannelType
	})
	return rows
}

func (r *CampaignTypeRow) deriveMetrics() {
	r.CTR = percentage(float64(r.Clicks), float64(r.Impressions))
	r.CPC = safeDivide(r.Cost, float64(r.Clicks))
	r.ROAS = safeDivide(r.Revenue, r.Cost)
	r.RevenuePerInstall = safeDivide(r.Revenue, float64(r.Installs))

	switch r.ChannelType {
	case campaign.ChannelApp:
		r.ConversionRate = percentage(float64(r.Installs), float64(r.Clicks))
		r.PurchaseRate = percentage(float64(r.Purchases), float64(r.Installs))
		r.OpenRate = percentage(float64(r.Opens), float64(r.Installs))
		r.LoginRate = percentage(float64(r.Logins), float64(r.Installs))
		r.CPA = safeDivide(r.Cost, float64(r.Installs))
	case campaign.ChannelWeb:
		r.ConversionRate = percentage(float64(r.Purchases), float64(r.Clicks))
		r.PurchaseRate = percentage(float64(r.Purchases), float64(r.Clicks))
		r.CartRate = percentage(float64(r.AddToCart), float64(r.Clicks))
		r.CartToPurchaseRate = percentage(float64(r.Purchases), float64(r.AddToCart))
		r.CPA = safeDivide(r.Cost, float64(r.Purchases))
	}
}

// TypeSummary rolls one campaign type up across channels.
type TypeSummary struct {
	CampaignType     campaign.CampaignType `json:"campaign_type"`
	TotalCost        float64               `json:"total_cost"`
	TotalImpressions int64                 `json:"total_impressions"`
	TotalClicks      int64                 `json:"total_clicks"`
	TotalInstalls    int64                 `json:"total_installs"`
	TotalPurchases   int64                 `json:"total_purchases"`
	TotalRevenue     float64               `json:"total_revenue"`
	Campaigns        int                   `json:"nb_campaigns"`

	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	PurchaseRate   float64 `json:"purchase_rate"`
	CPA            float64 `json:"cpa"`
	ROAS           float64 `json:"roas"`
	CostShare      float64 `json:"cost_share"`
}

// Summarize rolls campaign type rows up per type and computes each
// type's share of total spend.
func (a *CampaignTypeAnalyzer) Summarize(rows []CampaignTypeRow) []TypeSummary {
	byType := make(map[campaign.CampaignType]*TypeSummary)
	var order []campaign.CampaignType
	for _, row := range rows {
		s := byType[row.CampaignType]
		if s == nil {
			s = &TypeSummary{CampaignType: row.CampaignType}
			byType[row.CampaignType] = s
			order = append(order, row.CampaignType)
		}
		s.TotalCost += row.Cost
		s.TotalImpressions += row.Impressions
		s.TotalClicks += row.Clicks
		s.TotalInstalls += row.Installs
		s.TotalPurchases += row.Purchases
		s.TotalRevenue += row.Revenue
		s.Campaigns += row.Campaigns
	}

	totalCost := 0.0
	for _, s := range byType {
		totalCost += s.TotalCost
	}

	out := make([]TypeSummary, 0, len(order))
	for _, t := range order {
		s := byType[t]
		s.CTR = percentage(float64(s.TotalClicks), float64(s.TotalImpressions))
		s.ConversionRate = percentage(float64(s.TotalInstalls), float64(s.TotalClicks))
		s.PurchaseRate = percentage(float64(s.TotalPurchases), float64(s.TotalInstalls))
		s.CPA = safeDivide(s.TotalCost, float64(s.TotalInstalls))
		s.ROAS = safeDivide(s.TotalRevenue, s.TotalCost)
		s.CostShare = percentage(s.TotalCost, totalCost)
		out = append(out, *s)
	}
	return out
}

// TypeInsights derives headline observations from the per-type summary:
// ROAS ranking, budget concentration and low performers.
func (a *CampaignTypeAnalyzer) TypeInsights(summaries []TypeSummary) []Insight {
	var insights []Insight
	if len(summaries) == 0 {
		return insights
	}

	ranked := make([]TypeSummary, len(summaries))
	copy(ranked, summaries)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].ROAS > ranked[j].ROAS })

	if len(ranked) >= 2 {
		best, worst := ranked[0], ranked[len(ranked)-1]
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Title:   fmt.Sprintf("Best ROAS: %s", titleCase(string(best.CampaignType))),
			Message: fmt.Sprintf("ROAS of %.2f across %d campaigns", best.ROAS, best.Campaigns),
		})
		if best.ROAS > worst.ROAS*1.5 {
			insights = append(insights, Insight{
				Type:  InsightWarning,
				Title: "Large performance gap",
				Message: fmt.Sprintf("%s performs %.1fx better than %s",
					titleCase(string(best.CampaignType)), safeDivide(best.ROAS, worst.ROAS), titleCase(string(worst.CampaignType))),
			})
		}
	}

	bySpend := make([]TypeSummary, len(summaries))
	copy(bySpend, summaries)
	sort.Slice(bySpend, func(i, j int) bool { return bySpend[i].CostShare > bySpend[j].CostShare })
	top := bySpend[0]
	insights = append(insights, Insight{
		Type:    InsightInfo,
		Title:   "Budget allocation",
		Message: fmt.Sprintf("%s takes %.0f%% of total budget", titleCase(string(top.CampaignType)), top.CostShare),
	})

	for _, s := range summaries {
		if s.ROAS < 1.5 && s.CostShare > 30 {
			insights = append(insights, Insight{
				Type:    InsightWarning,
				Title:   fmt.Sprintf("Optimize %s", titleCase(string(s.CampaignType))),
				Message: fmt.Sprintf("Low ROAS (%.2f) despite %.0f%% of budget", s.ROAS, s.CostShare),
			})
		}
		if s.ConversionRate < 5 && s.TotalClicks > 1000 {
			insights = append(insights, Insight{
				Type:    InsightInfo,
				Title:   fmt.Sprintf("%s conversion", titleCase(string(s.CampaignType))),
				Message: fmt.Sprintf("Conversion rate needs work: %.1f%%", s.ConversionRate),
			})
		}
	}
	return insights
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
