package csvfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
)

// RawStore persists the scraped records before cleaning and reads them back
// so a later run can skip the scrape. It implements both pipeline.RawLoader
// and pipeline.Extractor.
type RawStore struct {
	path   string
	logger *slog.Logger
}

// NewRawStore creates a raw dump at path.
func NewRawStore(path string, logger *slog.Logger) *RawStore {
	return &RawStore{path: path, logger: logger}
}

// LoadRaw writes records to the dump, replacing any previous one.
func (s *RawStore) LoadRaw(_ context.Context, records []domain.RawRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = rawRow(r)
	}
	if err := writeFile(s.path, RawHeader, rows); err != nil {
		return err
	}
	s.logger.Info("raw dump written", "path", s.path, "records", len(records))
	return nil
}

// Extract reads the dump written by a previous run.
func (s *RawStore) Extract(_ context.Context) ([]domain.RawRecord, error) {
	rows, err := readAll(s.path, RawHeader)
	if err != nil {
		return nil, fmt.Errorf("raw cache: %w: %w", domain.ErrSourceUnavailable, err)
	}
	records := make([]domain.RawRecord, len(rows))
	for i, row := range rows {
		records[i] = parseRawRow(row)
	}
	s.logger.Info("raw cache read", "path", s.path, "records", len(records))
	return records, nil
}
