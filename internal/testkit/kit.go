// Package testkit generates deterministic synthetic campaign data and
// raw export fixtures for tests. Everything is seeded so fixtures stay
// stable across runs.
package testkit

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
)

// Config configures the synthetic data generator
type Config struct {
	CampaignCount int
	Days          int
	StartDate     time.Time
	Seed          int64
}

// DefaultConfig returns sensible defaults for synthetic campaign data
func DefaultConfig() Config {
	return Config{
		CampaignCount: 4,
		Days:          14,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

// Kit generates synthetic campaign records and export files
type Kit struct {
	config Config
	rng    *rand.Rand
}

// NewKit creates a generator with the default configuration
func NewKit() *Kit {
	return NewKitWithConfig(DefaultConfig())
}

// NewKitWithConfig creates a generator with an explicit configuration
func NewKitWithConfig(config Config) *Kit {
	return &Kit{config: config, rng: rand.New(rand.NewSource(config.Seed))}
}

func (k *Kit) campaignName(i int) string {
	kinds := []string{"Search", "Display", "Shopping", "Video"}
	return fmt.Sprintf("%s Campaign %02d", kinds[i%len(kinds)], i+1)
}

func (k *Kit) day(offset int) core.Day {
	return core.NewDay(k.config.StartDate.AddDate(0, 0, offset))
}

// Records generates typed records across all three sources for the
// configured date range. Advertising sources carry spend metrics and
// the attribution source carries conversion metrics, mirroring what
// each export actually contains.
func (k *Kit) Records() []campaign.Record {
	batchID := core.BatchID("testkit-batch")
	var records []campaign.Record

	for d := 0; d < k.config.Days; d++ {
		day := k.day(d)

		for i := 0; i < k.config.CampaignCount; i++ {
			impressions := int64(5000 + k.rng.Intn(5000))
			clicks := int64(100 + k.rng.Intn(400))
			records = append(records, campaign.Record{
				CampaignName: k.campaignName(i),
				Source:       campaign.SourceGoogleAds,
				Platform:     campaign.InferPlatform(k.campaignName(i)),
				Date:         day,
				Impressions:  impressions,
				Clicks:       clicks,
				Cost:         float64(clicks) * (0.5 + k.rng.Float64()),
				Installs:     int64(k.rng.Intn(50)),
				Purchases:    int64(k.rng.Intn(20)),
				Revenue:      float64(k.rng.Intn(2000)),
				BatchID:      batchID,
			})
		}

		records = append(records, campaign.Record{
			CampaignName: "Apple Search Ads Campaign",
			Source:       campaign.SourceAppleSearchAds,
			Platform:     campaign.PlatformIOS,
			Date:         day,
			Impressions:  int64(2000 + k.rng.Intn(2000)),
			Clicks:       int64(50 + k.rng.Intn(150)),
			Cost:         50 + k.rng.Float64()*100,
			Installs:     int64(k.rng.Intn(40)),
			BatchID:      batchID,
		})

		for _, platform := range []string{campaign.PlatformIOS, campaign.PlatformAndroid} {
			installs := int64(20 + k.rng.Intn(80))
			opens := installs * int64(2+k.rng.Intn(3))
			records = append(records, campaign.Record{
				CampaignName: k.campaignName(d % k.config.CampaignCount),
				Source:       campaign.SourceBranch,
				Platform:     platform,
				Date:         day,
				Installs:     installs,
				Opens:        opens,
				Logins:       opens / 4,
				Purchases:    int64(k.rng.Intn(15)),
				Revenue:      float64(k.rng.Intn(1500)),
				BatchID:      batchID,
			})
		}
	}
	return records
}

// GoogleCSV renders an ad platform export with a metadata preamble
// above the header, the way real downloads arrive.
func (k *Kit) GoogleCSV() []byte {
	var b strings.Builder
	b.WriteString("Campaign report\n")
	b.WriteString("Account currency: USD\n")
	b.WriteString("Time zone: (GMT+01:00) Paris\n")
	b.WriteString("Campaign,Day,Cost,Impressions,Clicks,Conversions,Purchases,Conv. value\n")
	for d := 0; d < k.config.Days; d++ {
		day := k.day(d)
		for i := 0; i < k.config.CampaignCount; i++ {
			fmt.Fprintf(&b, "%s,%s,%.2f,%d,%d,%d,%d,%.2f\n",
				k.campaignName(i), day,
				100+k.rng.Float64()*200, 5000+k.rng.Intn(5000), 100+k.rng.Intn(400),
				k.rng.Intn(50), k.rng.Intn(20), float64(k.rng.Intn(2000)))
		}
	}
	return []byte(b.String())
}

// ASACSV renders an app-store search-ads export. Dates use the US
// month-first layout and there is no campaign column.
func (k *Kit) ASACSV() []byte {
	var b strings.Builder
	b.WriteString("Day,Spend,Impressions,Taps,Installs (Tap-Through)\n")
	for d := 0; d < k.config.Days; d++ {
		t := k.config.StartDate.AddDate(0, 0, d)
		fmt.Fprintf(&b, "%s,%.2f,%d,%d,%d\n",
			t.Format("01/02/2006"),
			50+k.rng.Float64()*100, 2000+k.rng.Intn(2000), 50+k.rng.Intn(150), k.rng.Intn(40))
	}
	return []byte(b.String())
}

// BranchCSV renders an attribution export: slash dates, an ad partner
// column and quoted numbers with thousands separators.
func (k *Kit) BranchCSV() []byte {
	partners := []string{"Apple Search Ads", "Google AdWords", "Unattributed"}
	var b strings.Builder
	b.WriteString("Campaign,Day,Platform,Ad Partner,Unified Installs,Unified Opens,Unified Login,Unified Purchases,Unified Revenue\n")
	for d := 0; d < k.config.Days; d++ {
		t := k.config.StartDate.AddDate(0, 0, d)
		for i, platform := range []string{"IOS_APP", "ANDROID_APP"} {
			installs := 20 + k.rng.Intn(80)
			opens := installs * (2 + k.rng.Intn(3))
			fmt.Fprintf(&b, "%s,%s,%s,%s,%d,\"%s\",%d,%d,%.2f\n",
				k.campaignName((d+i)%k.config.CampaignCount),
				t.Format("2006/01/02"), platform, partners[(d+i)%len(partners)],
				installs, formatThousands(1000+opens), opens/4, k.rng.Intn(15), float64(k.rng.Intn(1500)))
		}
	}
	return []byte(b.String())
}

func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	return s[:len(s)-3] + "," + s[len(s)-3:]
}
