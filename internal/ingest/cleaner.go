package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// asaCampaignName is the synthetic campaign name given to app-store
// search-ads rows, whose exports carry no campaign column.
const asaCampaignName = "Apple Search Ads Campaign"

// thousandsPattern matches a comma used as a thousands separator inside
// an attribution-export number ("1,234" -> "1234").
var thousandsPattern = regexp.MustCompile(`,(\d{3})`)

// currencyStripper removes currency symbols, grouping commas and stray
// quotes from numeric cells.
var currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", `"`, "", ",", "")

// CleanReport summarizes what the cleaner dropped, for the import log.
type CleanReport struct {
	TotalRows    int `json:"total_rows"`
	CleanRows    int `json:"clean_rows"`
	BadDates     int `json:"bad_dates"`
	NegativeRows int `json:"negative_rows"`
}

// Cleaner converts normalized string rows into typed records: numeric
// coercion, date normalization, per-source platform and source labeling,
// and removal of rows that cannot be trusted.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean converts raw rows into canonical records. Rows with unparseable
// dates or any negative metric are dropped and counted in the report;
// invalid numeric cells coerce to zero.
func (c *Cleaner) Clean(rows []RawRow, source campaign.Source, batchID core.BatchID) ([]campaign.Record, CleanReport) {
	report := CleanReport{TotalRows: len(rows)}
	records := make([]campaign.Record, 0, len(rows))

	for _, row := range rows {
		day, ok := parseDay(row[FieldDate], source)
		if !ok {
			report.BadDates++
			continue
		}

		rec := campaign.Record{
			CampaignName: row[FieldCampaign],
			Source:       source,
			Date:         day,
			Impressions:  parseCount(row[FieldImpressions], source),
			Clicks:       parseCount(row[FieldClicks], source),
			Cost:         parseAmount(row[FieldCost], source),
			Installs:     parseCount(row[FieldInstalls], source),
			Purchases:    parseCount(row[FieldPurchases], source),
			Revenue:      parseAmount(row[FieldRevenue], source),
			Opens:        parseCount(row[FieldOpens], source),
			Logins:       parseCount(row[FieldLogins], source),
			BatchID:      batchID,
		}

		if rec.Cost < 0 || rec.Impressions < 0 || rec.Clicks < 0 ||
			rec.Installs < 0 || rec.Purchases < 0 || rec.Revenue < 0 ||
			rec.Opens < 0 || rec.Logins < 0 {
			report.NegativeRows++
			continue
		}

		c.labelRecord(&rec, row)
		records = append(records, rec)
	}

	report.CleanRows = len(records)
	return records, report
}

// labelRecord fills in source-dependent identity fields.
func (c *Cleaner) labelRecord(rec *campaign.Record, row RawRow) {
	switch rec.Source {
	case campaign.SourceAppleSearchAds:
		rec.Platform = campaign.PlatformIOS
		rec.CampaignName = asaCampaignName

	case campaign.SourceBranch:
		rec.Platform = campaign.NormalizePlatform(row[FieldPlatform])
		// Attribution rows carry the ad network that drove them; rows
		// from a known network are relabeled so cross-source joins line
		// up, keeping the partner name for reference.
		partner := strings.TrimSpace(row[FieldAdPartner])
		rec.AdPartner = partner
		switch partner {
		case "Apple Search Ads":
			rec.Source = campaign.SourceAppleSearchAds
		case "Google AdWords":
			rec.Source = campaign.SourceGoogleAdWords
		}

	default:
		rec.Platform = campaign.InferPlatform(rec.CampaignName)
	}
}

// dayLayouts is the fallback ladder tried after the source's primary
// date format fails.
var dayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
}

func primaryLayout(source campaign.Source) string {
	switch source {
	case campaign.SourceBranch:
		return "2006/01/02"
	case campaign.SourceAppleSearchAds:
		return "01/02/2006"
	}
	return "2006-01-02"
}

// parseDay normalizes a date cell to a canonical day, trying the
// source's own format first.
func parseDay(s string, source campaign.Source) (core.Day, bool) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(primaryLayout(source), s); err == nil {
		return core.NewDay(t), true
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDay(t), true
		}
	}
	return "", false
}

// parseAmount coerces a monetary cell to float64, zero when unparseable.
func parseAmount(s string, source campaign.Source) float64 {
	s = cleanNumeric(s, source)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCount coerces a count cell to int64, zero when unparseable.
// Exports sometimes write counts as decimals ("12.0").
func parseCount(s string, source campaign.Source) int64 {
	s = cleanNumeric(s, source)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func cleanNumeric(s string, source campaign.Source) string {
	s = strings.TrimSpace(s)
	if source == campaign.SourceBranch {
		s = thousandsPattern.ReplaceAllString(s, "$1")
	}
	return currencyStripper.Replace(s)
}
