package ingest

import (
	"testing"

	"spendlens/domain/campaign"
)

func TestDetectByFilename(t *testing.T) {
	d := NewFormatDetector()

	tests := []struct {
		filename string
		expected campaign.Source
		ok       bool
	}{
		{"asa_january.csv", campaign.SourceAppleSearchAds, true},
		{"Apple Search Ads 2024.csv", campaign.SourceAppleSearchAds, true},
		{"export-2024-01.csv", campaign.SourceBranch, true},
		{"branch_reporting.csv", campaign.SourceBranch, true},
		{"google-ads-campaigns.csv", campaign.SourceGoogleAds, true},
		{"AdWords Report.csv", campaign.SourceGoogleAds, true},
		{"quarterly_numbers.csv", "", false},
	}

	for _, test := range tests {
		source, ok := d.DetectByFilename(test.filename)
		if ok != test.ok {
			t.Errorf("DetectByFilename(%q): expected ok=%v, got %v", test.filename, test.ok, ok)
			continue
		}
		if source != test.expected {
			t.Errorf("DetectByFilename(%q): expected %q, got %q", test.filename, test.expected, source)
		}
	}
}

func TestDetectByColumns(t *testing.T) {
	d := NewFormatDetector()

	tests := []struct {
		name     string
		columns  []string
		expected campaign.Source
	}{
		{
			// Real app-store exports have no campaign column; the
			// spend/taps/impressions triple is the signature.
			name:     "app store export",
			columns:  []string{"Day", "Spend", "Impressions", "Taps", "Installs (Tap-Through)"},
			expected: campaign.SourceAppleSearchAds,
		},
		{
			name:     "attribution export",
			columns:  []string{"Campaign", "Day", "Ad Partner", "Unified Installs"},
			expected: campaign.SourceBranch,
		},
		{
			name:     "ad platform export",
			columns:  []string{"Campaign", "Day", "Cost", "Impressions", "Clicks"},
			expected: campaign.SourceGoogleAds,
		},
		{
			// No signature defaults to the generic ad platform; parse
			// scoring weeds out files that are not exports at all.
			name:     "no distinctive signature",
			columns:  []string{"Campaign", "Date", "Cost"},
			expected: campaign.SourceGoogleAds,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if source := d.DetectByColumns(test.columns); source != test.expected {
				t.Errorf("expected %q, got %q", test.expected, source)
			}
		})
	}
}

func TestDetectPrefersFilename(t *testing.T) {
	d := NewFormatDetector()

	// Columns look like an ad platform export, but the filename says
	// attribution; the filename wins.
	columns := []string{"Campaign", "Day", "Cost", "Impressions"}
	if source := d.Detect("branch_export.csv", columns); source != campaign.SourceBranch {
		t.Errorf("expected %q, got %q", campaign.SourceBranch, source)
	}

	if source := d.Detect("data.csv", columns); source != campaign.SourceGoogleAds {
		t.Errorf("expected column fallback to %q, got %q", campaign.SourceGoogleAds, source)
	}
}
