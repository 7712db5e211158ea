package analysis

import (
	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// SourceSplit groups records into the three analytical buckets. Google
// covers both the ad platform's own export and attribution rows
// relabeled to its partner name; attribution rows relabeled to the
// app-store network land in ASA.
type SourceSplit struct {
	Google []campaign.Record
	ASA    []campaign.Record
	Branch []campaign.Record
}

// Records returns every record that survived the split's filters.
func (s SourceSplit) Records() []campaign.Record {
	out := make([]campaign.Record, 0, len(s.Google)+len(s.ASA)+len(s.Branch))
	out = append(out, s.Google...)
	out = append(out, s.ASA...)
	out = append(out, s.Branch...)
	return out
}

// DropUnattributed removes the attribution platform's unattributed
// bucket. Callers apply it exactly once, right after records are
// loaded, so every downstream view works from the same population.
func DropUnattributed(records []campaign.Record) []campaign.Record {
	out := make([]campaign.Record, 0, len(records))
	for _, r := range records {
		if r.IsUnattributed() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SplitBySource buckets records by source, optionally restricting to a
// platform set first.
func SplitBySource(records []campaign.Record, platforms []string) SourceSplit {
	allowed := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		allowed[p] = true
	}

	var split SourceSplit
	for _, r := range records {
		if len(platforms) > 0 && !allowed[r.Platform] {
			continue
		}
		switch r.Source {
		case campaign.SourceGoogleAds, campaign.SourceGoogleAdWords:
			split.Google = append(split.Google, r)
		case campaign.SourceAppleSearchAds:
			split.ASA = append(split.ASA, r)
		case campaign.SourceBranch:
			split.Branch = append(split.Branch, r)
		}
	}
	return split
}

// ConsolidatedDay is one day of the cross-source view, with each metric
// taken from its authoritative source.
type ConsolidatedDay struct {
	Date        core.Day `json:"date"`
	Cost        float64  `json:"cost"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Installs    int64    `json:"installs"`
	Opens       int64    `json:"opens"`
	Logins      int64    `json:"logins"`
	Purchases   int64    `json:"purchases"`
	Revenue     float64  `json:"revenue"`

	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	PurchaseRate   float64 `json:"purchase_rate"`
	CPC            float64 `json:"cpc"`
	CPA            float64 `json:"cpa"`
	CPM            float64 `json:"cpm"`
	ROAS           float64 `json:"roas"`
}

// Consolidate builds the daily cross-source series. Authority rules:
// cost, impressions and clicks come from the ad platforms; installs,
// opens and logins from attribution only; purchases and revenue from
// attribution plus the ad platform. Days missing from a source count
// as zero.
func Consolidate(split SourceSplit) []ConsolidatedDay {
	google := sumByDate(split.Google)
	asa := sumByDate(split.ASA)
	branch := sumByDate(split.Branch)

	days := sortedDays(google, asa, branch)
	out := make([]ConsolidatedDay, 0, len(days))
	for _, d := range days {
		g, a, b := google[d], asa[d], branch[d]
		day := ConsolidatedDay{
			Date:        d,
			Cost:        g.Cost + a.Cost,
			Impressions: g.Impressions + a.Impressions,
			Clicks:      g.Clicks + a.Clicks,
			Installs:    b.Installs,
			Opens:       b.Opens,
			Logins:      b.Logins,
			Purchases:   b.Purchases + g.Purchases,
			Revenue:     b.Revenue + g.Revenue,
		}
		day.deriveMetrics()
		out = append(out, day)
	}
	return out
}

func (d *ConsolidatedDay) deriveMetrics() {
	d.CTR = percentage(float64(d.Clicks), float64(d.Impressions))
	d.ConversionRate = percentage(float64(d.Installs), float64(d.Clicks))
	d.PurchaseRate = percentage(float64(d.Purchases), float64(d.Installs))
	d.CPC = safeDivide(d.Cost, float64(d.Clicks))
	d.CPA = safeDivide(d.Cost, float64(d.Installs))
	d.CPM = safeDivide(d.Cost, float64(d.Impressions)) * 1000
	d.ROAS = safeDivide(d.Revenue, d.Cost)
}
