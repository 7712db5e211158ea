// Package analysis computes the consolidated cross-source view, the
// acquisition funnels and the derived performance analytics from
// canonical records.
package analysis

import (
	"sort"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// safeDivide returns a/b, or zero when b is zero.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// percentage returns part/total as a percentage, zero when total is zero.
func percentage(part, total float64) float64 {
	return safeDivide(part, total) * 100
}

// totals is the raw metric sum shared by every aggregation.
type totals struct {
	Impressions int64
	Clicks      int64
	Cost        float64
	Installs    int64
	Purchases   int64
	Revenue     float64
	Opens       int64
	Logins      int64
}

func (t *totals) add(r campaign.Record) {
	t.Impressions += r.Impressions
	t.Clicks += r.Clicks
	t.Cost += r.Cost
	t.Installs += r.Installs
	t.Purchases += r.Purchases
	t.Revenue += r.Revenue
	t.Opens += r.Opens
	t.Logins += r.Logins
}

func sumRecords(records []campaign.Record) totals {
	var t totals
	for _, r := range records {
		t.add(r)
	}
	return t
}

// sumByDate groups records into per-day totals.
func sumByDate(records []campaign.Record) map[core.Day]totals {
	byDate := make(map[core.Day]totals)
	for _, r := range records {
		t := byDate[r.Date]
		t.add(r)
		byDate[r.Date] = t
	}
	return byDate
}

// sortedDays returns the keys of one or more per-day maps as a sorted
// union.
func sortedDays(maps ...map[core.Day]totals) []core.Day {
	seen := make(map[core.Day]bool)
	for _, m := range maps {
		for d := range m {
			seen[d] = true
		}
	}
	days := make([]core.Day, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
