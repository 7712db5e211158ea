package analysis

import (
	"testing"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

func rec(name string, source campaign.Source, date core.Day) campaign.Record {
	return campaign.Record{CampaignName: name, Source: source, Date: date}
}

func TestSplitBySource(t *testing.T) {
	records := []campaign.Record{
		rec("A", campaign.SourceGoogleAds, "2024-01-01"),
		rec("B", campaign.SourceGoogleAdWords, "2024-01-01"),
		rec("C", campaign.SourceAppleSearchAds, "2024-01-01"),
		rec("D", campaign.SourceBranch, "2024-01-01"),
	}

	split := SplitBySource(records, nil)
	if len(split.Google) != 2 {
		t.Errorf("expected both ad platform labels in the google bucket, got %d", len(split.Google))
	}
	if len(split.ASA) != 1 {
		t.Errorf("expected 1 ASA record, got %d", len(split.ASA))
	}
	if len(split.Branch) != 1 {
		t.Errorf("expected 1 attribution record, got %d", len(split.Branch))
	}
}

func TestDropUnattributed(t *testing.T) {
	records := []campaign.Record{
		rec(campaign.UnattributedCampaign, campaign.SourceBranch, "2024-01-01"),
		rec("Real Campaign", campaign.SourceBranch, "2024-01-01"),
		// Same name on an ad platform is a real campaign, not the bucket.
		rec(campaign.UnattributedCampaign, campaign.SourceGoogleAds, "2024-01-01"),
	}

	kept := DropUnattributed(records)
	if len(kept) != 2 {
		t.Fatalf("expected unattributed bucket dropped, got %d records", len(kept))
	}
	for _, r := range kept {
		if r.IsUnattributed() {
			t.Errorf("unattributed record %q survived the filter", r.CampaignName)
		}
	}
}

func TestSplitBySourcePlatformFilter(t *testing.T) {
	a := rec("A", campaign.SourceBranch, "2024-01-01")
	a.Platform = campaign.PlatformIOS
	b := rec("B", campaign.SourceBranch, "2024-01-01")
	b.Platform = campaign.PlatformWeb

	split := SplitBySource([]campaign.Record{a, b}, []string{campaign.PlatformIOS})
	if len(split.Branch) != 1 || split.Branch[0].CampaignName != "A" {
		t.Errorf("expected only the iOS record, got %v", split.Branch)
	}
}

func TestConsolidateAuthorityRules(t *testing.T) {
	google := rec("G", campaign.SourceGoogleAds, "2024-01-01")
	google.Cost = 100
	google.Impressions = 10000
	google.Clicks = 200
	google.Installs = 999 // advertising installs are not authoritative
	google.Purchases = 5
	google.Revenue = 400

	asa := rec("ASA", campaign.SourceAppleSearchAds, "2024-01-01")
	asa.Cost = 50
	asa.Impressions = 5000
	asa.Clicks = 80
	asa.Installs = 888

	branch := rec("B", campaign.SourceBranch, "2024-01-01")
	branch.Installs = 60
	branch.Opens = 150
	branch.Logins = 40
	branch.Purchases = 12
	branch.Revenue = 900
	branch.Cost = 777 // attribution cost is not authoritative

	split := SplitBySource([]campaign.Record{google, asa, branch}, nil)
	days := Consolidate(split)
	if len(days) != 1 {
		t.Fatalf("expected 1 consolidated day, got %d", len(days))
	}

	d := days[0]
	if d.Cost != 150 {
		t.Errorf("cost should come from ad platforms only: expected 150, got %f", d.Cost)
	}
	if d.Impressions != 15000 {
		t.Errorf("expected 15000 impressions, got %d", d.Impressions)
	}
	if d.Clicks != 280 {
		t.Errorf("expected 280 clicks, got %d", d.Clicks)
	}
	if d.Installs != 60 {
		t.Errorf("installs should come from attribution only: expected 60, got %d", d.Installs)
	}
	if d.Opens != 150 || d.Logins != 40 {
		t.Errorf("opens/logins should come from attribution: got %d/%d", d.Opens, d.Logins)
	}
	if d.Purchases != 17 {
		t.Errorf("purchases should sum attribution and ad platform: expected 17, got %d", d.Purchases)
	}
	if d.Revenue != 1300 {
		t.Errorf("revenue should sum attribution and ad platform: expected 1300, got %f", d.Revenue)
	}
}

func TestConsolidateDateUnion(t *testing.T) {
	google := rec("G", campaign.SourceGoogleAds, "2024-01-01")
	google.Cost = 100
	branch := rec("B", campaign.SourceBranch, "2024-01-03")
	branch.Installs = 10

	split := SplitBySource([]campaign.Record{google, branch}, nil)
	days := Consolidate(split)
	if len(days) != 2 {
		t.Fatalf("expected union of 2 days, got %d", len(days))
	}
	if days[0].Date != "2024-01-01" || days[1].Date != "2024-01-03" {
		t.Errorf("expected sorted date union, got %v and %v", days[0].Date, days[1].Date)
	}
	if days[0].Installs != 0 {
		t.Errorf("missing source should count as zero, got %d installs", days[0].Installs)
	}
	if days[1].Cost != 0 {
		t.Errorf("missing source should count as zero, got %f cost", days[1].Cost)
	}
}

func TestConsolidateDerivedMetrics(t *testing.T) {
	google := rec("G", campaign.SourceGoogleAds, "2024-01-01")
	google.Cost = 100
	google.Impressions = 10000
	google.Clicks = 200
	branch := rec("B", campaign.SourceBranch, "2024-01-01")
	branch.Installs = 50
	branch.Revenue = 300

	split := SplitBySource([]campaign.Record{google, branch}, nil)
	d := Consolidate(split)[0]

	if d.CTR != 2.0 {
		t.Errorf("expected CTR 2%%, got %f", d.CTR)
	}
	if d.ConversionRate != 25.0 {
		t.Errorf("expected conversion rate 25%%, got %f", d.ConversionRate)
	}
	if d.CPA != 2.0 {
		t.Errorf("expected CPA 2.0, got %f", d.CPA)
	}
	if d.CPM != 10.0 {
		t.Errorf("expected CPM 10.0, got %f", d.CPM)
	}
	if d.ROAS != 3.0 {
		t.Errorf("expected ROAS 3.0, got %f", d.ROAS)
	}
}

func TestConsolidateZeroDenominators(t *testing.T) {
	branch := rec("B", campaign.SourceBranch, "2024-01-01")
	branch.Installs = 10

	split := SplitBySource([]campaign.Record{branch}, nil)
	d := Consolidate(split)[0]
	if d.CTR != 0 || d.CPC != 0 || d.ROAS != 0 {
		t.Errorf("expected zero rates with zero denominators, got CTR=%f CPC=%f ROAS=%f", d.CTR, d.CPC, d.ROAS)
	}
}
