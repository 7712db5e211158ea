package ingest

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlens/domain/campaign"
	"spendlens/domain/core"
	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/errors"
	"spendlens/ports"
)

// SheetConverter turns a spreadsheet upload into CSV bytes so the rest
// of the pipeline only ever sees text.
type SheetConverter interface {
	ToCSV(data []byte) ([]byte, error)
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename string
	Data     []byte
}

// ImportResult is the per-file outcome of an ingestion run.
type ImportResult struct {
	ImportID core.ImportID   `json:"import_id"`
	Filename string          `json:"filename"`
	Source   campaign.Source `json:"source,omitempty"`
	Inserted int             `json:"inserted"`
	Report   CleanReport     `json:"report"`
	Error    string          `json:"error,omitempty"`
}

// Service runs the full ingestion pipeline and records every attempt in
// the import log, successful or not.
type Service struct {
	store      ports.RecordStore
	imports    ports.ImportLog
	sheets     SheetConverter
	detector   *FormatDetector
	parser     *Parser
	normalizer *Normalizer
	cleaner    *Cleaner
	logger     *internal.Logger

	maxBytes    int64
	concurrency int
}

func NewService(store ports.RecordStore, imports ports.ImportLog, sheets SheetConverter, cfg config.IngestConfig, logger *internal.Logger) *Service {
	return &Service{
		store:       store,
		imports:     imports,
		sheets:      sheets,
		detector:    NewFormatDetector(),
		parser:      NewParser(),
		normalizer:  NewNormalizer(),
		cleaner:     NewCleaner(),
		logger:      logger,
		maxBytes:    int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		concurrency: cfg.Concurrency,
	}
}

// IngestBatch processes an upload batch with bounded concurrency. A
// failing file does not abort the batch; its failure is recorded in its
// result and the import log.
func (s *Service) IngestBatch(ctx context.Context, files []UploadFile) []ImportResult {
	results := make([]ImportResult, len(files))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			result := s.ingestOne(ctx, file)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Service) ingestOne(ctx context.Context, file UploadFile) ImportResult {
	result := ImportResult{
		ImportID: core.NewImportID(),
		Filename: file.Filename,
	}

	records, report, source, err := s.process(file)
	result.Source = source
	result.Report = report
	if err == nil {
		var inserted int
		inserted, err = s.store.InsertRecords(ctx, records)
		result.Inserted = inserted
	}

	entry := campaign.ImportEntry{
		ID:          result.ImportID,
		Filename:    file.Filename,
		Source:      source,
		RecordCount: result.Inserted,
		Success:     err == nil,
		ImportedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		result.Error = err.Error()
		entry.Error = err.Error()
		s.logger.Error("[ingest] %s failed: %v", file.Filename, err)
	} else {
		s.logger.Info("[ingest] %s: %d records from %s (%d rows dropped)",
			file.Filename, result.Inserted, source, report.BadDates+report.NegativeRows)
	}
	if logErr := s.imports.LogImport(ctx, entry); logErr != nil {
		s.logger.Warn("[ingest] could not log import of %s: %v", file.Filename, logErr)
	}
	return result
}

// process runs detect -> parse -> normalize -> clean for one file.
func (s *Service) process(file UploadFile) ([]campaign.Record, CleanReport, campaign.Source, error) {
	var report CleanReport

	if s.maxBytes > 0 && int64(len(file.Data)) > s.maxBytes {
		return nil, report, "", errors.InvalidInput("file exceeds maximum size")
	}

	data := file.Data
	if isSpreadsheet(file.Filename) {
		converted, err := s.sheets.ToCSV(data)
		if err != nil {
			return nil, report, "", errors.Wrap(err, "could not read spreadsheet")
		}
		data = converted
	}

	source, byName := s.detector.DetectByFilename(file.Filename)
	if !byName {
		// Parse once assuming a generic export, then let the header
		// signature decide.
		probe, err := s.parser.Parse(data, campaign.SourceGoogleAds)
		if err != nil {
			return nil, report, "", err
		}
		source = s.detector.DetectByColumns(probe.Header)
	}

	table, err := s.parser.Parse(data, source)
	if err != nil {
		return nil, report, source, err
	}
	rows, err := s.normalizer.Normalize(table, source)
	if err != nil {
		return nil, report, source, err
	}

	records, report := s.cleaner.Clean(rows, source, core.NewBatchID())
	if len(records) == 0 {
		return nil, report, source, errors.ValidationError("no valid rows after cleaning")
	}
	return records, report, source, nil
}

func isSpreadsheet(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}
