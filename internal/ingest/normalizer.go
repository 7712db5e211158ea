package ingest

import (
	"strings"

	"spendlens/domain/campaign"
	"spendlens/internal/errors"
)

// Canonical field names every parsed table is mapped onto. Downstream
// stages only ever see these keys.
const (
	FieldCampaign    = "campaign"
	FieldDate        = "date"
	FieldCost        = "cost"
	FieldImpressions = "impressions"
	FieldClicks      = "clicks"
	FieldInstalls    = "installs"
	FieldPurchases   = "purchases"
	FieldRevenue     = "revenue"
	FieldOpens       = "opens"
	FieldLogins      = "logins"
	FieldPlatform    = "platform"
	FieldAdPartner   = "ad_partner"
)

// RawRow is one data row keyed by canonical field name. Values are
// still uncleaned strings.
type RawRow map[string]string

// Normalizer maps source-specific column names onto the canonical
// fields. App-store and attribution exports have stable headers and use
// exact synonym tables; generic ad exports vary by account language and
// version and go through keyword matching.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// asaSynonyms maps app-store search-ads export headers to canonical fields.
var asaSynonyms = map[string]string{
	"day":                    FieldDate,
	"campaign":               FieldCampaign,
	"campaign name":          FieldCampaign,
	"spend":                  FieldCost,
	"impressions":            FieldImpressions,
	"taps":                   FieldClicks,
	"installs (tap-through)": FieldInstalls,
}

// branchSynonyms maps attribution export headers to canonical fields.
var branchSynonyms = map[string]string{
	"campaign":          FieldCampaign,
	"day":               FieldDate,
	"platform":          FieldPlatform,
	"ad partner":        FieldAdPartner,
	"unified installs":  FieldInstalls,
	"unified purchases": FieldPurchases,
	"unified revenue":   FieldRevenue,
	"unified opens":     FieldOpens,
	"unified login":     FieldLogins,
	"clicks":            FieldClicks,
	"cost":              FieldCost,
}

// googleKeywords lists canonical fields in claim priority order with the
// header keywords that identify each. Every header column is claimed at
// most once, so e.g. "Conv. value" cannot be taken by both installs and
// revenue.
var googleKeywords = []struct {
	field    string
	keywords []string
}{
	{FieldCampaign, []string{"campaign"}},
	{FieldDate, []string{"day", "date"}},
	{FieldCost, []string{"cost", "coût"}},
	{FieldImpressions, []string{"impression", "impr"}},
	{FieldClicks, []string{"click", "clics"}},
	{FieldInstalls, []string{"conversion", "install"}},
	{FieldPurchases, []string{"purchase", "achats"}},
	{FieldRevenue, []string{"value", "revenue"}},
}

// Normalize maps a parsed table onto canonical rows for the given
// source. Fails when the campaign or date column cannot be located.
func (n *Normalizer) Normalize(table *ParsedTable, source campaign.Source) ([]RawRow, error) {
	var mapping map[int]string
	switch source {
	case campaign.SourceAppleSearchAds:
		mapping = mapBySynonyms(table.Header, asaSynonyms)
	case campaign.SourceBranch:
		mapping = mapBySynonyms(table.Header, branchSynonyms)
	default:
		mapping = mapByKeywords(table.Header)
	}

	mapped := make(map[string]bool, len(mapping))
	for _, field := range mapping {
		mapped[field] = true
	}
	// App-store exports carry no campaign column; the cleaner assigns
	// their synthetic campaign name.
	if !mapped[FieldCampaign] && source != campaign.SourceAppleSearchAds {
		return nil, errors.ValidationError("no campaign column found")
	}
	if !mapped[FieldDate] {
		return nil, errors.ValidationError("no date column found")
	}

	rows := make([]RawRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row := make(RawRow, len(mapping))
		for idx, field := range mapping {
			if idx < len(raw) {
				row[field] = strings.TrimSpace(raw[idx])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mapBySynonyms matches headers against an exact lowercase synonym table.
func mapBySynonyms(header []string, synonyms map[string]string) map[int]string {
	mapping := make(map[int]string)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if field, ok := synonyms[key]; ok {
			mapping[i] = field
		}
	}
	return mapping
}

// mapByKeywords assigns each canonical field the first still-unclaimed
// header column containing one of its keywords.
func mapByKeywords(header []string) map[int]string {
	mapping := make(map[int]string)
	claimed := make(map[int]bool)
	for _, entry := range googleKeywords {
		for i, h := range header {
			if claimed[i] {
				continue
			}
			lower := strings.ToLower(h)
			for _, kw := range entry.keywords {
				if strings.Contains(lower, kw) {
					mapping[i] = entry.field
					claimed[i] = true
					break
				}
			}
			if claimed[i] {
				break
			}
		}
	}
	return mapping
}
