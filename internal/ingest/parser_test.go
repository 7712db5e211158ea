package ingest

import (
	"strings"
	"testing"

	"spendlens/domain/campaign"
)

func TestParseSkipsPreamble(t *testing.T) {
	data := []byte(strings.Join([]string{
		"Campaign report",
		"Account currency: EUR",
		"Time zone: (GMT+01:00) Paris",
		"Campaign,Day,Cost,Impressions,Clicks",
		"Search FR,2024-01-01,120.50,10000,250",
		"Search FR,2024-01-02,98.20,9500,210",
	}, "\n"))

	p := NewParser()
	table, err := p.Parse(data, campaign.SourceGoogleAds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Header[0] != "Campaign" {
		t.Errorf("expected header to start at Campaign, got %q", table.Header[0])
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(table.Rows))
	}
}

func TestParseSemicolonDelimiter(t *testing.T) {
	data := []byte(strings.Join([]string{
		"Campaign;Day;Cost;Impressions;Clicks",
		"Display DE;2024-01-01;50,25;8000;120",
		"Display DE;2024-01-02;48,10;7500;110",
	}, "\n"))

	p := NewParser()
	table, err := p.Parse(data, campaign.SourceGoogleAds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Header) != 5 {
		t.Errorf("expected 5 columns, got %d: %v", len(table.Header), table.Header)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	data := []byte("this is not a report\njust some prose text\nwith no structure at all")

	p := NewParser()
	if _, err := p.Parse(data, campaign.SourceGoogleAds); err == nil {
		t.Fatal("expected an error for unstructured input")
	}
}

func TestParseEmptyFile(t *testing.T) {
	p := NewParser()
	if _, err := p.Parse([]byte(""), campaign.SourceGoogleAds); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestParseFromMarker(t *testing.T) {
	data := []byte(strings.Join([]string{
		"Apple Search Ads report",
		"generated 2024-02-01",
		"Day,Spend,Impressions,Taps,Installs (Tap-Through)",
		"01/15/2024,100.00,5000,120,30",
	}, "\n"))

	p := NewParser()
	table, err := p.Parse(data, campaign.SourceAppleSearchAds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Header[0] != "Day" {
		t.Errorf("expected marker header, got %q", table.Header[0])
	}
	if len(table.Rows) != 1 {
		t.Errorf("expected 1 data row, got %d", len(table.Rows))
	}
}

func TestParseMarkerMissingFallsBackToFirstLine(t *testing.T) {
	data := []byte(strings.Join([]string{
		"Campaign,Day,Platform,Ad Partner,Unified Installs",
		"Spring Promo,2024/01/15,IOS_APP,Apple Search Ads,42",
	}, "\n"))

	p := NewParser()
	table, err := p.Parse(data, campaign.SourceBranch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("expected 1 data row, got %d", len(table.Rows))
	}
}

func TestDecodeTextUTF16(t *testing.T) {
	text := "Campaign,Day,Cost\nA,2024-01-01,10"
	data := []byte{0xFF, 0xFE}
	for _, r := range text {
		data = append(data, byte(r), 0x00)
	}

	decoded, err := decodeText(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != text {
		t.Errorf("expected %q, got %q", text, decoded)
	}
}

func TestDecodeTextWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 but invalid as standalone UTF-8.
	data := []byte{'C', 'o', 0xE9, 't'}
	decoded, err := decodeText(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != "Coét" {
		t.Errorf("expected %q, got %q", "Coét", decoded)
	}
}

func TestParseRaggedRows(t *testing.T) {
	data := []byte(strings.Join([]string{
		"Campaign,Day,Cost,Impressions,Clicks",
		"Short Row,2024-01-01,10.0",
		"Long Row,2024-01-02,20.0,5000,100,extra,fields",
	}, "\n"))

	p := NewParser()
	table, err := p.Parse(data, campaign.SourceGoogleAds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Header) {
			t.Errorf("row %d: expected width %d, got %d", i, len(table.Header), len(row))
		}
	}
}
