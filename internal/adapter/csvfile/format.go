// Package csvfile reads and writes the CSV tables of a run: the raw dump,
// the cleaned output table and the exclusion subsets.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
)

// TimestampLayout is how Date/Time is written in the cleaned table.
const TimestampLayout = "2006-01-02T15:04:05"

// File names written into the output directory.
const (
	CleanFile = "ufo_data.csv"
)

// RawHeader is the column order of the raw dump and the subset files.
var RawHeader = []string{"Date/Time", "City", "State", "Shape", "Duration", "Summary", "Posted", "Source"}

// CleanHeader is the column order of the cleaned table.
var CleanHeader = []string{"Date/Time", "Duration", "Shape", "City", "State", "Country", "Summary", "MUFON Report"}

// SubsetFile returns the file name an exclusion subset is written to.
func SubsetFile(s domain.Subset) string {
	return "ufo_" + string(s) + ".csv"
}

func rawRow(r domain.RawRecord) []string {
	return []string{r.DateTime, r.City, r.State, r.Shape, r.Duration, r.Summary, r.Posted, r.Source}
}

func parseRawRow(row []string) domain.RawRecord {
	return domain.RawRecord{
		DateTime: row[0],
		City:     row[1],
		State:    row[2],
		Shape:    row[3],
		Duration: row[4],
		Summary:  row[5],
		Posted:   row[6],
		Source:   row[7],
	}
}

func cleanRow(r domain.CleanRecord) []string {
	return []string{
		r.Timestamp.Format(TimestampLayout),
		strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64),
		r.Shape,
		r.City,
		r.State,
		r.Country,
		r.Summary,
		strconv.FormatBool(r.MUFONReport),
	}
}

// ParseCleanRow decodes one data row of the cleaned table.
func ParseCleanRow(row []string) (domain.CleanRecord, error) {
	if len(row) != len(CleanHeader) {
		return domain.CleanRecord{}, fmt.Errorf("got %d columns, want %d: %w", len(row), len(CleanHeader), domain.ErrMalformedValue)
	}
	ts, err := time.ParseInLocation(TimestampLayout, row[0], time.UTC)
	if err != nil {
		return domain.CleanRecord{}, fmt.Errorf("date/time %q: %w", row[0], domain.ErrMalformedValue)
	}
	dur, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return domain.CleanRecord{}, fmt.Errorf("duration %q: %w", row[1], domain.ErrMalformedValue)
	}
	mufon, err := strconv.ParseBool(row[7])
	if err != nil {
		return domain.CleanRecord{}, fmt.Errorf("mufon report %q: %w", row[7], domain.ErrMalformedValue)
	}
	return domain.CleanRecord{
		Timestamp:       ts,
		DurationSeconds: dur,
		Shape:           row[2],
		City:            row[3],
		State:           row[4],
		Country:         row[5],
		Summary:         row[6],
		MUFONReport:     mufon,
	}, nil
}

// ReadClean reads a cleaned table written by [TableWriter].
func ReadClean(path string) ([]domain.CleanRecord, error) {
	rows, err := readAll(path, CleanHeader)
	if err != nil {
		return nil, err
	}
	records := make([]domain.CleanRecord, 0, len(rows))
	for i, row := range rows {
		r, err := ParseCleanRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// readAll reads every data row of path after checking its header.
func readAll(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty: %w", path, domain.ErrMalformedValue)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, fmt.Errorf("%s column %d is %q, want %q: %w", path, i+1, got[i], header[i], domain.ErrMalformedValue)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// writeFile writes header and rows to path through a temp file in the same
// directory, so readers never see a partial table.
func writeFile(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s header: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
