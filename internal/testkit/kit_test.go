package testkit

import (
	"bytes"
	"testing"

	"spendlens/domain/campaign"
)

func TestRecordsDeterministic(t *testing.T) {
	a := NewKit().Records()
	b := NewKit().Records()
	if len(a) != len(b) {
		t.Fatalf("expected identical record counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between seeded runs", i)
		}
	}
}

func TestRecordsCoverAllSources(t *testing.T) {
	sources := make(map[campaign.Source]int)
	for _, r := range NewKit().Records() {
		sources[r.Source]++
	}
	for _, s := range []campaign.Source{campaign.SourceGoogleAds, campaign.SourceAppleSearchAds, campaign.SourceBranch} {
		if sources[s] == 0 {
			t.Errorf("expected records for source %s", s)
		}
	}
}

func TestFixturesDeterministic(t *testing.T) {
	if !bytes.Equal(NewKit().GoogleCSV(), NewKit().GoogleCSV()) {
		t.Error("expected identical ad platform fixtures from the same seed")
	}
	if !bytes.Equal(NewKit().BranchCSV(), NewKit().BranchCSV()) {
		t.Error("expected identical attribution fixtures from the same seed")
	}
}
