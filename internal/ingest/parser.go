package ingest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"spendlens/domain/campaign"
	"spendlens/internal/errors"
)

// acceptScore is the minimum parse-quality score a candidate table must
// reach before it is accepted. Tables below it are treated as garbage.
const acceptScore = 15

// ParsedTable is the raw tabular output of a successful parse: a header
// row plus data rows, all still strings.
type ParsedTable struct {
	Header []string
	Rows   [][]string
}

type quoteMode int

const (
	quoteStrict quoteMode = iota
	quoteLazy
	quoteNone
)

type parseConfig struct {
	delimiter rune
	quoting   quoteMode
}

// Parser extracts a tabular payload from an uploaded file body. Ad
// platform exports arrive with inconsistent encodings, preamble lines
// above the header and regional delimiter/quoting conventions, so the
// parser tries candidate configurations and keeps the best-scoring one.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data and extracts the table for the given source.
// Attribution and app-store exports have fixed header markers; generic
// ad platform exports go through full configuration scoring.
func (p *Parser) Parse(data []byte, source campaign.Source) (*ParsedTable, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode file")
	}
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, errors.ParseFailed("file is empty")
	}

	switch source {
	case campaign.SourceAppleSearchAds:
		return p.parseFromMarker(lines, "day,")
	case campaign.SourceBranch:
		return p.parseFromMarker(lines, "campaign,")
	default:
		return p.parseScored(lines)
	}
}

// parseFromMarker parses a CSV whose header is the first line starting
// with the given prefix; lines above it are a preamble and are skipped.
func (p *Parser) parseFromMarker(lines []string, prefix string) (*ParsedTable, error) {
	start := 0
	found := false
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), prefix) {
			start = i
			found = true
			break
		}
	}
	if !found {
		// Some exports trim the preamble already; assume the first
		// line is the header and let normalization reject mismatches.
		start = 0
	}

	table := parseWithConfig(lines[start:], parseConfig{delimiter: ',', quoting: quoteLazy})
	if table == nil || len(table.Rows) == 0 {
		return nil, errors.ParseFailed("no data rows found")
	}
	return table, nil
}

// parseScored locates the most plausible header line, then tries every
// delimiter and quoting combination and keeps the highest-scoring table.
func (p *Parser) parseScored(lines []string) (*ParsedTable, error) {
	start := locateHeader(lines)
	candidate := lines[start:]

	delimiters := []rune{'\t', ',', ';', '|'}
	quotings := []quoteMode{quoteStrict, quoteNone, quoteLazy}

	var best *ParsedTable
	bestScore := 0
	for _, delim := range delimiters {
		for _, quoting := range quotings {
			table := parseWithConfig(candidate, parseConfig{delimiter: delim, quoting: quoting})
			if table == nil {
				continue
			}
			if score := scoreTable(table); score > bestScore {
				best, bestScore = table, score
			}
		}
	}

	if best == nil || bestScore <= acceptScore {
		return nil, errors.ParseFailed("no parse configuration produced a usable table")
	}
	return best, nil
}

// headerKeywords are the column names a real ad platform header contains.
var headerKeywords = []string{"campaign", "cost", "impressions", "clicks", "day", "date"}

// preambleMarkers identify metadata lines platforms prepend above the
// header, which must never be mistaken for it.
var preambleMarkers = []string{"account currency", "time zone", "downloaded"}

// locateHeader returns the index of the most plausible header line: the
// first of the top 50 lines matching at least three header keywords.
// When nothing matches, the line with the most field separators among
// the first 20 wins.
func locateHeader(lines []string) int {
	limit := len(lines)
	if limit > 50 {
		limit = 50
	}
scan:
	for i := 0; i < limit; i++ {
		line := strings.ToLower(lines[i])
		for _, marker := range preambleMarkers {
			if strings.Contains(line, marker) {
				continue scan
			}
		}
		hits := 0
		for _, kw := range headerKeywords {
			if strings.Contains(line, kw) {
				hits++
			}
		}
		if hits >= 3 {
			return i
		}
	}

	limit = len(lines)
	if limit > 20 {
		limit = 20
	}
	best, bestSeps := 0, 0
	for i := 0; i < limit; i++ {
		seps := strings.Count(lines[i], ",") + strings.Count(lines[i], "\t") + strings.Count(lines[i], ";")
		if seps > bestSeps {
			best, bestSeps = i, seps
		}
	}
	return best
}

// parseWithConfig parses lines using one candidate configuration.
// Returns nil when the configuration cannot produce a coherent table.
func parseWithConfig(lines []string, cfg parseConfig) *ParsedTable {
	var rows [][]string
	if cfg.quoting == quoteNone {
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rows = append(rows, strings.Split(line, string(cfg.delimiter)))
		}
	} else {
		reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
		reader.Comma = cfg.delimiter
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = cfg.quoting == quoteLazy
		parsed, err := reader.ReadAll()
		if err != nil {
			return nil
		}
		rows = parsed
	}
	if len(rows) < 2 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	width := len(header)
	if width < 2 {
		return nil
	}

	var data [][]string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		// Tolerate ragged rows: pad short ones, truncate long ones.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		data = append(data, row)
	}
	return &ParsedTable{Header: header, Rows: data}
}

// scoreTable rates how much a candidate table looks like a real ad
// platform export. Expected columns, reasonable shape and the presence
// of actual numeric data all add points.
func scoreTable(t *ParsedTable) int {
	score := 0
	hasCol := func(keyword string) bool {
		for _, h := range t.Header {
			if strings.Contains(strings.ToLower(h), keyword) {
				return true
			}
		}
		return false
	}

	if hasCol("campaign") {
		score += 10
	}
	if hasCol("cost") || hasCol("spend") {
		score += 10
	}
	if hasCol("impression") {
		score += 10
	}
	if hasCol("click") || hasCol("tap") {
		score += 5
	}
	if hasCol("day") || hasCol("date") {
		score += 5
	}

	if len(t.Rows) > 10 {
		score += 5
	}
	if len(t.Rows) > 50 {
		score += 5
	}
	if len(t.Header) >= 5 && len(t.Header) <= 30 {
		score += 3
	}
	if numericSum(t) > 0 {
		score += 15
	}
	return score
}

// numericSum totals every parseable numeric cell in the table. A table
// parsed with the wrong delimiter collapses to unparseable strings and
// sums to zero.
func numericSum(t *ParsedTable) float64 {
	sum := 0.0
	for _, row := range t.Rows {
		for _, cell := range row {
			cell = strings.TrimSpace(strings.Trim(cell, `"`))
			cell = strings.ReplaceAll(cell, ",", "")
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				sum += v
			}
		}
	}
	return sum
}

// decodeText converts raw bytes to a string, walking down an encoding
// ladder: BOM-declared UTF-16, plain UTF-8, Windows-1252, then Latin-1
// as the never-failing last step.
func decodeText(data []byte) (string, error) {
	if len(data) >= 2 {
		if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
			dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
			out, err := dec.Bytes(data)
			if err == nil {
				return string(out), nil
			}
		}
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return string(data), nil
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(out), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.ParseFailed("undecodable file contents")
	}
	return string(out), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
