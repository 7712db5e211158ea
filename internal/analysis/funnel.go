package analysis

import (
	"math"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// EstimationPolicy holds the multipliers used where a funnel stage has
// no source column of its own.
type EstimationPolicy struct {
	CartPerPurchase float64
	LoginPerOpen    float64
}

// DefaultEstimationPolicy mirrors the historically observed ratios.
var DefaultEstimationPolicy = EstimationPolicy{CartPerPurchase: 3.0, LoginPerOpen: 0.25}

// AppFunnelDay is one day of the six-stage app acquisition funnel:
// impressions, clicks, installs, opens, logins, purchases.
type AppFunnelDay struct {
	Date        core.Day `json:"date"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Cost        float64  `json:"cost"`
	Installs    int64    `json:"installs"`
	Opens       int64    `json:"opens"`
	Logins      int64    `json:"logins"`
	Purchases   int64    `json:"purchases"`
	Revenue     float64  `json:"revenue"`

	CTR                    float64 `json:"ctr"`
	ClickToInstallRate     float64 `json:"click_to_install_rate"`
	InstallToOpenRate      float64 `json:"install_to_open_rate"`
	OpenToLoginRate        float64 `json:"open_to_login_rate"`
	LoginToPurchaseRate    float64 `json:"login_to_purchase_rate"`
	OverallConversionRate  float64 `json:"overall_conversion_rate"`
	PurchaseConversionRate float64 `json:"purchase_conversion_rate"`
	CPC                    float64 `json:"cpc"`
	CPA                    float64 `json:"cpa"`
	CPM                    float64 `json:"cpm"`
	ROAS                   float64 `json:"roas"`
	RevenuePerInstall      float64 `json:"revenue_per_install"`
}

// WebFunnelDay is one day of the four-stage web funnel: impressions,
// clicks, add-to-cart, purchases.
type WebFunnelDay struct {
	Date        core.Day `json:"date"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Cost        float64  `json:"cost"`
	AddToCart   int64    `json:"add_to_cart"`
	Purchases   int64    `json:"purchases"`
	Revenue     float64  `json:"revenue"`

	CTR                    float64 `json:"ctr"`
	ClickToCartRate        float64 `json:"click_to_cart_rate"`
	CartToPurchaseRate     float64 `json:"cart_to_purchase_rate"`
	OverallConversionRate  float64 `json:"overall_conversion_rate"`
	PurchaseConversionRate float64 `json:"purchase_conversion_rate"`
	CPC                    float64 `json:"cpc"`
	CPA                    float64 `json:"cpa"`
	CPM                    float64 `json:"cpm"`
	ROAS                   float64 `json:"roas"`
	RevenuePerPurchase     float64 `json:"revenue_per_purchase"`
}

// FunnelBuilder assembles the per-channel funnels from a source split.
type FunnelBuilder struct {
	policy EstimationPolicy
}

func NewFunnelBuilder(policy EstimationPolicy) *FunnelBuilder {
	return &FunnelBuilder{policy: policy}
}

// BuildAppFunnel builds the daily app funnel. Conversion stages come
// from attribution rows on app platforms; advertising stages come from
// the app-store network plus ad-platform campaigns classified "app".
// The date axis is the union of both sides.
func (f *FunnelBuilder) BuildAppFunnel(split SourceSplit) []AppFunnelDay {
	var appBranch []campaign.Record
	for _, r := range split.Branch {
		if campaign.IsAppPlatform(r.Platform) {
			appBranch = append(appBranch, r)
		}
	}
	if len(appBranch) == 0 {
		return nil
	}

	var googleApp []campaign.Record
	for _, r := range split.Google {
		if r.ChannelType != nil && *r.ChannelType == campaign.ChannelApp {
			googleApp = append(googleApp, r)
		}
	}

	conversion := sumByDate(appBranch)
	advertising := sumByDate(split.ASA)
	for d, t := range sumByDate(googleApp) {
		acc := advertising[d]
		acc.Impressions += t.Impressions
		acc.Clicks += t.Clicks
		acc.Cost += t.Cost
		advertising[d] = acc
	}

	// Some attribution exports carry no login column at all; estimate
	// from opens when the whole series is empty.
	estimateLogins := true
	for _, t := range conversion {
		if t.Logins > 0 {
			estimateLogins = false
			break
		}
	}

	days := sortedDays(conversion, advertising)
	out := make([]AppFunnelDay, 0, len(days))
	for _, d := range days {
		conv, adv := conversion[d], advertising[d]
		day := AppFunnelDay{
			Date:        d,
			Impressions: adv.Impressions,
			Clicks:      adv.Clicks,
			Cost:        adv.Cost,
			Installs:    conv.Installs,
			Opens:       conv.Opens,
			Logins:      conv.Logins,
			Purchases:   conv.Purchases,
			Revenue:     conv.Revenue,
		}
		if estimateLogins {
			day.Logins = int64(math.Round(float64(day.Opens) * f.policy.LoginPerOpen))
		}
		day.deriveMetrics()
		out = append(out, day)
	}
	return out
}

// BuildWebFunnel builds the daily web funnel from ad-platform campaigns
// classified "web"; unclassified campaigns count as web by default.
// The add-to-cart stage is estimated from purchases.
func (f *FunnelBuilder) BuildWebFunnel(split SourceSplit) []WebFunnelDay {
	var webGoogle []campaign.Record
	for _, r := range split.Google {
		if r.ChannelType == nil || *r.ChannelType == campaign.ChannelWeb {
			webGoogle = append(webGoogle, r)
		}
	}
	if len(webGoogle) == 0 {
		return nil
	}

	byDate := sumByDate(webGoogle)
	days := sortedDays(byDate)
	out := make([]WebFunnelDay, 0, len(days))
	for _, d := range days {
		t := byDate[d]
		day := WebFunnelDay{
			Date:        d,
			Impressions: t.Impressions,
			Clicks:      t.Clicks,
			Cost:        t.Cost,
			Purchases:   t.Purchases,
			Revenue:     t.Revenue,
			AddToCart:   int64(math.Round(float64(t.Purchases) * f.policy.CartPerPurchase)),
		}
		day.deriveMetrics()
		out = append(out, day)
	}
	return out
}

func (d *AppFunnelDay) deriveMetrics() {
	d.CTR = percentage(float64(d.Clicks), float64(d.Impressions))
	d.ClickToInstallRate = percentage(float64(d.Installs), float64(d.Clicks))
	d.InstallToOpenRate = percentage(float64(d.Opens), float64(d.Installs))
	d.OpenToLoginRate = percentage(float64(d.Logins), float64(d.Opens))
	d.LoginToPurchaseRate = percentage(float64(d.Purchases), float64(d.Logins))
	d.OverallConversionRate = percentage(float64(d.Installs), float64(d.Impressions))
	d.PurchaseConversionRate = percentage(float64(d.Purchases), float64(d.Installs))
	d.CPC = safeDivide(d.Cost, float64(d.Clicks))
	d.CPA = safeDivide(d.Cost, float64(d.Installs))
	d.CPM = safeDivide(d.Cost, float64(d.Impressions)) * 1000
	d.ROAS = safeDivide(d.Revenue, d.Cost)
	d.RevenuePerInstall = safeDivide(d.Revenue, float64(d.Installs))
}

func (d *WebFunnelDay) deriveMetrics() {
	d.CTR = percentage(float64(d.Clicks), float64(d.Impressions))
	d.ClickToCartRate = percentage(float64(d.AddToCart), float64(d.Clicks))
	d.CartToPurchaseRate = percentage(float64(d.Purchases), float64(d.AddToCart))
	d.OverallConversionRate = percentage(float64(d.Purchases), float64(d.Impressions))
	d.PurchaseConversionRate = percentage(float64(d.Purchases), float64(d.Clicks))
	d.CPC = safeDivide(d.Cost, float64(d.Clicks))
	d.CPA = safeDivide(d.Cost, float64(d.Purchases))
	d.CPM = safeDivide(d.Cost, float64(d.Impressions)) * 1000
	d.ROAS = safeDivide(d.Revenue, d.Cost)
	d.RevenuePerPurchase = safeDivide(d.Revenue, float64(d.Purchases))
}

// ChannelSummary is the whole-period rollup of one funnel.
type ChannelSummary struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	Purchases   int64   `json:"purchases"`
	Installs    int64   `json:"installs,omitempty"`
	Opens       int64   `json:"opens,omitempty"`
	Logins      int64   `json:"logins,omitempty"`
	AddToCart   int64   `json:"add_to_cart,omitempty"`

	FunnelSteps  []string `json:"funnel_steps"`
	FunnelValues []int64  `json:"funnel_values"`

	CTR            float64 `json:"ctr"`
	ROAS           float64 `json:"roas"`
	CPA            float64 `json:"cpa"`
	ConversionRate float64 `json:"conversion_rate"`
}

// FunnelSummary pairs the app and web rollups for side-by-side display.
type FunnelSummary struct {
	App ChannelSummary `json:"app"`
	Web ChannelSummary `json:"web"`
}

// Summarize rolls both funnels up over the whole period.
func (f *FunnelBuilder) Summarize(app []AppFunnelDay, web []WebFunnelDay) FunnelSummary {
	return FunnelSummary{App: summarizeApp(app), Web: summarizeWeb(web)}
}

func summarizeApp(days []AppFunnelDay) ChannelSummary {
	var s ChannelSummary
	if len(days) == 0 {
		return s
	}
	for _, d := range days {
		s.Impressions += d.Impressions
		s.Clicks += d.Clicks
		s.Cost += d.Cost
		s.Revenue += d.Revenue
		s.Purchases += d.Purchases
		s.Installs += d.Installs
		s.Opens += d.Opens
		s.Logins += d.Logins
	}
	s.FunnelSteps = []string{"Impressions", "Clicks", "Installs", "Opens", "Logins", "Purchases"}
	s.FunnelValues = []int64{s.Impressions, s.Clicks, s.Installs, s.Opens, s.Logins, s.Purchases}
	s.CTR = percentage(float64(s.Clicks), float64(s.Impressions))
	s.ROAS = safeDivide(s.Revenue, s.Cost)
	if s.Installs > 0 {
		s.CPA = s.Cost / float64(s.Installs)
		s.ConversionRate = percentage(float64(s.Installs), float64(s.Clicks))
	}
	return s
}

func summarizeWeb(days []WebFunnelDay) ChannelSummary {
	var s ChannelSummary
	if len(days) == 0 {
		return s
	}
	for _, d := range days {
		s.Impressions += d.Impressions
		s.Clicks += d.Clicks
		s.Cost += d.Cost
		s.Revenue += d.Revenue
		s.Purchases += d.Purchases
		s.AddToCart += d.AddToCart
	}
	s.FunnelSteps = []string{"Impressions", "Clicks", "Add to Cart", "Purchases"}
	s.FunnelValues = []int64{s.Impressions, s.Clicks, s.AddToCart, s.Purchases}
	s.CTR = percentage(float64(s.Clicks), float64(s.Impressions))
	s.ROAS = safeDivide(s.Revenue, s.Cost)
	if s.Purchases > 0 {
		s.CPA = s.Cost / float64(s.Purchases)
		s.ConversionRate = percentage(float64(s.Purchases), float64(s.Clicks))
	}
	return s
}
