// Command genmock turns a raw NUFORC dump into JSON fixtures for consumers of
// the sightings topic. It runs the actual cleaning pipeline so the cleaned
// fixture matches what a real run would publish.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw nuforc_data.csv \
//	  -limit 500 \
//	  -raw-out data/mock/nuforc_raw.json \
//	  -clean-out data/mock/ufo_clean.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/observability"
	"github.com/couchcryptid/ufo-sightings-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawPath := flag.String("raw", "", "raw dump written by sightings-etl --write-raw")
	limit := flag.Int("limit", 0, "keep only the first N raw records (0 keeps all)")
	isoURL := flag.String("iso-url", "", "ISO 3166-2 reference page; without it only US and Canadian locations resolve")
	rawOut := flag.String("raw-out", "", "output path for the raw JSON fixture")
	cleanOut := flag.String("clean-out", "", "output path for the cleaned JSON fixture")
	flag.Parse()

	if *rawPath == "" || *rawOut == "" || *cleanOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw, -raw-out, -clean-out")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	raw, err := csvfile.NewRawStore(*rawPath, logger).Extract(ctx)
	if err != nil {
		return err
	}
	if *limit > 0 && len(raw) > *limit {
		raw = raw[:*limit]
	}
	log.Printf("raw: %d records", len(raw))

	var entries []domain.CountryEntry
	if *isoURL != "" {
		r := wikipedia.NewResolver(*isoURL, 30*time.Second, observability.NewUnregisteredMetrics(), logger)
		if entries, err = r.Countries(ctx); err != nil {
			return err
		}
	}

	ds, err := pipeline.Normalize(raw, domain.NewCountryTable(entries))
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*cleanOut, ds.Records); err != nil {
		return fmt.Errorf("writing clean fixture: %w", err)
	}
	log.Printf("wrote clean fixture: %s", *cleanOut)

	printStats(ds)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	shapeCounts   map[string]int
	countryCounts map[string]int
	mufon         int
}

func collectStats(records []domain.CleanRecord) statsResult {
	s := statsResult{
		shapeCounts:   make(map[string]int),
		countryCounts: make(map[string]int),
	}
	for _, r := range records {
		s.shapeCounts[r.Shape]++
		country := r.Country
		if country == "" {
			country = "(unresolved)"
		}
		s.countryCounts[country]++
		if r.MUFONReport {
			s.mufon++
		}
	}
	return s
}

func printStats(ds domain.Dataset) {
	s := collectStats(ds.Records)

	fmt.Println()
	fmt.Printf("Clean records: %d (annotated %d, hoaxes %d, madar %d set aside)\n",
		len(ds.Records), len(ds.Annotated), len(ds.Hoaxes), len(ds.Madar))
	fmt.Printf("Median duration: %gs, imputed: %d, MUFON referrals: %d\n",
		ds.MedianDuration, ds.ImputedDurations, s.mufon)

	fmt.Println("\nShapes:")
	printCounts(s.shapeCounts, 10)
	fmt.Println("\nCountries:")
	printCounts(s.countryCounts, 10)
}

// printCounts prints the top n keys by count, ties broken alphabetically.
func printCounts(counts map[string]int, n int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	for _, k := range keys {
		fmt.Printf("  %-32s %d\n", k, counts[k])
	}
}
