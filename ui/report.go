package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"spendlens/internal/analysis"
)

// renderReportHTML renders the summary report as a standalone HTML
// document via its markdown form.
func renderReportHTML(report *analysis.Report) []byte {
	md := buildReportMarkdown(report)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage, Title: "Performance Report"})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func buildReportMarkdown(report *analysis.Report) string {
	var b strings.Builder

	b.WriteString("# Marketing Performance Report\n\n")
	fmt.Fprintf(&b, "Period: **%s** to **%s** (%d days)\n\n",
		report.Period.StartDate, report.Period.EndDate, report.Period.TotalDays)

	b.WriteString("## Global Metrics\n\n")
	writeMetricsTable(&b, report.Global)

	if len(report.SourcePerformance) > 0 {
		b.WriteString("## Performance by Source\n\n")
		b.WriteString("| Source | Cost | Impressions | Clicks | Installs | Purchases | Revenue | ROAS |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, source := range sortedKeys(report.SourcePerformance) {
			m := report.SourcePerformance[source]
			fmt.Fprintf(&b, "| %s | %.2f | %d | %d | %d | %d | %.2f | %.2f |\n",
				source, m.Cost, m.Impressions, m.Clicks, m.Installs, m.Purchases, m.Revenue, m.ROAS)
		}
		b.WriteString("\n")
	}

	if len(report.PlatformPerformance) > 0 {
		b.WriteString("## Performance by Platform\n\n")
		b.WriteString("| Platform | Cost | Installs | Purchases | Revenue | ROAS |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, platform := range sortedKeys(report.PlatformPerformance) {
			m := report.PlatformPerformance[platform]
			fmt.Fprintf(&b, "| %s | %.2f | %d | %d | %.2f | %.2f |\n",
				platform, m.Cost, m.Installs, m.Purchases, m.Revenue, m.ROAS)
		}
		b.WriteString("\n")
	}

	if len(report.TopCampaigns) > 0 {
		b.WriteString("## Top Campaigns by ROAS\n\n")
		b.WriteString("| Campaign | Cost | Revenue | ROAS | CPA |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, c := range report.TopCampaigns {
			fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f |\n",
				c.CampaignName, c.Cost, c.Revenue, c.ROAS, c.CPA)
		}
		b.WriteString("\n")
	}

	if len(report.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, insight := range report.Insights {
			fmt.Fprintf(&b, "- **%s**: %s\n", insight.Title, insight.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\nGenerated at %s\n", report.GeneratedAt)
	return b.String()
}

func writeMetricsTable(b *strings.Builder, m analysis.FunnelMetrics) {
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Cost | %.2f |\n", m.Cost)
	fmt.Fprintf(b, "| Impressions | %d |\n", m.Impressions)
	fmt.Fprintf(b, "| Clicks | %d |\n", m.Clicks)
	fmt.Fprintf(b, "| Installs | %d |\n", m.Installs)
	fmt.Fprintf(b, "| Purchases | %d |\n", m.Purchases)
	fmt.Fprintf(b, "| Revenue | %.2f |\n", m.Revenue)
	fmt.Fprintf(b, "| CTR | %.2f%% |\n", m.ImpressionToClickRate)
	fmt.Fprintf(b, "| Conversion Rate | %.2f%% |\n", m.ClickToInstallRate)
	fmt.Fprintf(b, "| CPA | %.2f |\n", m.CPA)
	fmt.Fprintf(b, "| ROAS | %.2f |\n\n", m.ROAS)
}

func sortedKeys(m map[string]analysis.FunnelMetrics) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
