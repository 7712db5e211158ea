// Package campaign defines the canonical, source-agnostic record format
// that every downstream component consumes, plus the user-maintained
// campaign classification model.
package campaign

import (
	"strings"

	"spendlens/domain/core"
)

// Source identifies the platform a record was exported from.
type Source string

const (
	// SourceGoogleAds is the generic ad platform export (cost, impressions, clicks).
	SourceGoogleAds Source = "Google Ads"
	// SourceAppleSearchAds is the app-store search-ads export.
	SourceAppleSearchAds Source = "Apple Search Ads"
	// SourceBranch is the mobile-attribution platform export.
	SourceBranch Source = "Branch.io"
	// SourceGoogleAdWords labels attribution rows whose ad partner is
	// Google; kept distinct so attribution rows remain cross-referencable
	// by partner name, but grouped with Google Ads in advertising splits.
	SourceGoogleAdWords Source = "Google AdWords"
)

// IsAdvertising reports whether the source contributes cost/impressions/clicks.
func (s Source) IsAdvertising() bool {
	switch s {
	case SourceGoogleAds, SourceGoogleAdWords, SourceAppleSearchAds:
		return true
	}
	return false
}

// Canonical platform values. Platform is an enum-like string rather than a
// closed type: attribution exports occasionally introduce new codes and an
// unmapped value passes through verbatim.
const (
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
	PlatformWeb     = "Web"
	PlatformTV      = "TV"
	PlatformApp     = "App"
	PlatformUnknown = "Unknown"
)

// CampaignType is the business categorization of a campaign.
type CampaignType string

const (
	TypeBranding    CampaignType = "branding"
	TypeAcquisition CampaignType = "acquisition"
	TypeRetargeting CampaignType = "retargeting"
)

// ValidCampaignType reports whether s is one of the known campaign types.
func ValidCampaignType(s string) bool {
	switch CampaignType(s) {
	case TypeBranding, TypeAcquisition, TypeRetargeting:
		return true
	}
	return false
}

// ChannelType determines which metric-authority rule applies to a campaign.
type ChannelType string

const (
	ChannelApp ChannelType = "app"
	ChannelWeb ChannelType = "web"
)

// ValidChannelType reports whether s is one of the known channel types.
func ValidChannelType(s string) bool {
	switch ChannelType(s) {
	case ChannelApp, ChannelWeb:
		return true
	}
	return false
}

// UnattributedCampaign is the attribution platform's synthetic bucket for
// rows with no resolvable campaign.
const UnattributedCampaign = "Unpopulated"

// Record is one canonical row. All numeric fields are non-negative after
// cleaning and Date is always set for records entering consolidation.
type Record struct {
	CampaignName string       `db:"campaign_name" json:"campaign_name"`
	Source       Source       `db:"source" json:"source"`
	Platform     string       `db:"platform" json:"platform"`
	Date         core.Day     `db:"date" json:"date"`
	Impressions  int64        `db:"impressions" json:"impressions"`
	Clicks       int64        `db:"clicks" json:"clicks"`
	Cost         float64      `db:"cost" json:"cost"`
	Installs     int64        `db:"installs" json:"installs"`
	Purchases    int64        `db:"purchases" json:"purchases"`
	Revenue      float64      `db:"revenue" json:"revenue"`
	Opens        int64        `db:"opens" json:"opens"`
	Logins       int64        `db:"logins" json:"logins"`
	AdPartner    string       `db:"ad_partner" json:"ad_partner,omitempty"`
	BatchID      core.BatchID `db:"batch_id" json:"batch_id,omitempty"`

	// Classification is nil until the campaign name has an entry in the
	// classification store; the store joins it into retrieved records.
	CampaignType *CampaignType `db:"campaign_type" json:"campaign_type,omitempty"`
	ChannelType  *ChannelType  `db:"channel_type" json:"channel_type,omitempty"`
}

// IsUnattributed reports whether the record sits in the attribution
// platform's unattributed bucket.
func (r *Record) IsUnattributed() bool {
	return r.Source == SourceBranch && r.CampaignName == UnattributedCampaign
}

// IsClassified reports whether both classification fields are present.
func (r *Record) IsClassified() bool {
	return r.CampaignType != nil && r.ChannelType != nil
}

// Classification is the user-assigned (type, channel) pair keyed by
// campaign name. Upserts are last-write-wins; there is no versioning.
type Classification struct {
	CampaignName string       `db:"campaign_name" json:"campaign_name"`
	CampaignType CampaignType `db:"campaign_type" json:"campaign_type"`
	ChannelType  ChannelType  `db:"channel_type" json:"channel_type"`
}

// UnclassifiedCampaign is a campaign name seen in ingested data that has
// no classification entry yet.
type UnclassifiedCampaign struct {
	CampaignName string `db:"campaign_name" json:"campaign_name"`
	Source       Source `db:"source" json:"source"`
}

// CampaignOverview is one campaign with its classification state, used by
// the configuration UI.
type CampaignOverview struct {
	CampaignName string        `db:"campaign_name" json:"campaign_name"`
	Source       Source        `db:"source" json:"source"`
	CampaignType *CampaignType `db:"campaign_type" json:"campaign_type,omitempty"`
	ChannelType  *ChannelType  `db:"channel_type" json:"channel_type,omitempty"`
	TotalCost    float64       `db:"total_cost" json:"total_cost"`
	TotalClicks  int64         `db:"total_clicks" json:"total_clicks"`
}

// ImportEntry is one line of the import history log.
type ImportEntry struct {
	ID          core.ImportID `db:"id" json:"id"`
	Filename    string        `db:"filename" json:"filename"`
	Source      Source        `db:"source" json:"source"`
	RecordCount int           `db:"record_count" json:"record_count"`
	Success     bool          `db:"success" json:"success"`
	Error       string        `db:"error_message" json:"error_message,omitempty"`
	ImportedAt  string        `db:"imported_at" json:"imported_at"`
}

// InferPlatform maps a generic ad-platform campaign name to a canonical
// platform via keyword match. Campaigns with no app keyword are Web.
func InferPlatform(campaignName string) string {
	name := strings.ToLower(campaignName)
	switch {
	case strings.Contains(name, "ios"), strings.Contains(name, "iphone"), strings.Contains(name, "app store"):
		return PlatformIOS
	case strings.Contains(name, "android"), strings.Contains(name, "google play"):
		return PlatformAndroid
	case strings.Contains(name, "app"):
		return PlatformApp
	default:
		return PlatformWeb
	}
}

// NormalizePlatform maps attribution-platform internal codes to canonical
// platform values. Unknown codes pass through unchanged.
func NormalizePlatform(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "IOS_APP", "IOS":
		return PlatformIOS
	case "ANDROID_APP", "ANDROID":
		return PlatformAndroid
	case "WEB":
		return PlatformWeb
	case "TV_APP", "TV":
		return PlatformTV
	case "":
		return PlatformUnknown
	}
	return strings.TrimSpace(code)
}

// IsAppPlatform reports whether a platform value belongs to the app
// channel (anything except explicit Web).
func IsAppPlatform(platform string) bool {
	return !strings.EqualFold(platform, PlatformWeb)
}
