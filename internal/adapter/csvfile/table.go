package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
)

// TableWriter writes the cleaned table and the exclusion subsets into a
// directory. It implements pipeline.Loader.
type TableWriter struct {
	dir    string
	logger *slog.Logger
}

// NewTableWriter creates a writer for dir. The directory is created on the
// first Load if it does not exist.
func NewTableWriter(dir string, logger *slog.Logger) *TableWriter {
	return &TableWriter{dir: dir, logger: logger}
}

// Load writes ufo_data.csv and one file per exclusion subset. Subset rows are
// the raw records as scraped, summary included. Identical datasets produce
// byte-identical files.
func (w *TableWriter) Load(_ context.Context, ds domain.Dataset) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rows := make([][]string, len(ds.Records))
	for i, r := range ds.Records {
		rows[i] = cleanRow(r)
	}
	path := filepath.Join(w.dir, CleanFile)
	if err := writeFile(path, CleanHeader, rows); err != nil {
		return err
	}
	w.logger.Info("clean table written", "path", path, "records", len(rows))

	for _, sub := range ds.Subsets() {
		rows := make([][]string, len(sub.Sightings))
		for i, s := range sub.Sightings {
			rows[i] = rawRow(s.Raw)
		}
		path := filepath.Join(w.dir, SubsetFile(sub.Name))
		if err := writeFile(path, RawHeader, rows); err != nil {
			return err
		}
		w.logger.Debug("subset written", "subset", sub.Name, "path", path, "records", len(rows))
	}
	return nil
}
