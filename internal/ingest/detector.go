// Package ingest turns raw uploaded files into canonical records. The
// pipeline runs detect -> parse -> normalize -> clean; each stage is a
// separate component so the parts can be tested in isolation.
package ingest

import (
	"strings"

	"spendlens/domain/campaign"
)

// FormatDetector decides which source a file came from before any row
// is parsed. Filename wins when it is unambiguous; otherwise the header
// column signature decides.
type FormatDetector struct{}

func NewFormatDetector() *FormatDetector {
	return &FormatDetector{}
}

// DetectByFilename classifies a file by its name alone. Returns false
// when the name carries no recognizable marker.
func (d *FormatDetector) DetectByFilename(filename string) (campaign.Source, bool) {
	name := strings.ToLower(filename)
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")

	switch {
	case strings.Contains(name, "asa"):
		return campaign.SourceAppleSearchAds, true
	case strings.Contains(name, "apple") && strings.Contains(name, "search"):
		return campaign.SourceAppleSearchAds, true
	case strings.Contains(name, "export"), strings.Contains(name, "branch"), strings.Contains(name, "reporting"):
		return campaign.SourceBranch, true
	case strings.Contains(name, "google"), strings.Contains(name, "ads"), strings.Contains(name, "adwords"):
		return campaign.SourceGoogleAds, true
	}
	return "", false
}

// DetectByColumns classifies a file by its header column signature.
// App-store exports carry no campaign column, so their signature is the
// spend/taps/impressions triple. Anything without a distinctive
// signature is treated as a generic ad platform export; parse-quality
// scoring rejects actual garbage downstream.
func (d *FormatDetector) DetectByColumns(columns []string) campaign.Source {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[strings.ToLower(strings.TrimSpace(c))] = true
	}
	has := func(keys ...string) bool {
		for _, k := range keys {
			if set[k] {
				return true
			}
		}
		return false
	}

	switch {
	case has("spend") && has("taps") && has("impressions"):
		return campaign.SourceAppleSearchAds
	case has("installs", "unified installs") && has("ad partner", "ad partner name"):
		return campaign.SourceBranch
	}
	return campaign.SourceGoogleAds
}

// Detect resolves the source of a file, preferring the filename and
// falling back to the header signature.
func (d *FormatDetector) Detect(filename string, columns []string) campaign.Source {
	if src, ok := d.DetectByFilename(filename); ok {
		return src
	}
	return d.DetectByColumns(columns)
}
