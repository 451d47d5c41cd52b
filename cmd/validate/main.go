// Command validate checks a cleaned sightings table against the guarantees
// of the cleaning pipeline: credible dates, positive durations, merged
// shapes, consistent locations and scrubbed summaries. With -dir it also
// checks the exclusion subsets, and with -compare it checks that two runs
// produced byte-identical tables.
//
// Usage:
//
//	go run ./cmd/validate -dir out
//	go run ./cmd/validate -csv out/ufo_data.csv -compare previous/ufo_data.csv
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/couchcryptid/ufo-sightings-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	csvPath     string
	dir         string
	comparePath string
}

func main() {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "path to the cleaned table (default <dir>/ufo_data.csv)")
	flag.StringVar(&opts.dir, "dir", "", "output directory holding the cleaned table and the subset files")
	flag.StringVar(&opts.comparePath, "compare", "", "cleaned table from another run that must be byte-identical")
	flag.Parse()

	if opts.csvPath == "" && opts.dir == "" {
		flag.Usage()
		os.Exit(1)
	}
	if opts.csvPath == "" {
		opts.csvPath = filepath.Join(opts.dir, csvfile.CleanFile)
	}

	os.Exit(run(opts, os.Stdout))
}

func run(opts options, out io.Writer) int {
	fmt.Fprintln(out, "=== UFO Sightings Integrity Validation ===")
	fmt.Fprintln(out)

	records, err := csvfile.ReadClean(opts.csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load cleaned table: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTemporal(records),
		validateDurations(records),
		validateShapes(records),
		validateLocations(records),
		validateSummaries(records),
	}
	if opts.dir != "" {
		phases = append(phases, validateSubsets(opts.dir))
	}
	if opts.comparePath != "" {
		phases = append(phases, validateReproducible(opts.csvPath, opts.comparePath))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d cleaned\n", len(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// line is the CSV line of the i-th data row.
func line(i int) int { return i + 2 }

func validateTemporal(records []domain.CleanRecord) *phase {
	p := &phase{name: "Phase 1: Dates on or after 1947"}
	for i, r := range records {
		if r.Timestamp.Year() < domain.EarliestYear {
			p.errorf("line %d: date %s predates %d", line(i), r.Timestamp.Format(csvfile.TimestampLayout), domain.EarliestYear)
		}
	}
	return p
}

func validateDurations(records []domain.CleanRecord) *phase {
	p := &phase{name: "Phase 2: Durations positive"}
	for i, r := range records {
		if r.DurationSeconds <= 0 {
			p.errorf("line %d: duration %v", line(i), r.DurationSeconds)
		}
	}
	return p
}

func validateShapes(records []domain.CleanRecord) *phase {
	p := &phase{name: "Phase 3: Shapes merged"}
	for i, r := range records {
		if domain.IsShapeCategory(r.Shape) {
			continue
		}
		switch {
		case r.Shape == "":
			p.errorf("line %d: empty shape", line(i))
		case domain.NormalizeShape(r.Shape) != r.Shape:
			p.errorf("line %d: shape %q should be %q", line(i), r.Shape, domain.NormalizeShape(r.Shape))
		}
	}
	return p
}

func validateLocations(records []domain.CleanRecord) *phase {
	p := &phase{name: "Phase 4: Locations consistent"}
	for i, r := range records {
		if strings.ContainsAny(r.City, "()") {
			p.errorf("line %d: city %q keeps its parenthetical", line(i), r.City)
		}
		if _, ok := domain.USStates[r.State]; ok && r.Country != domain.CountryUSA {
			p.errorf("line %d: state %s but country %q", line(i), r.State, r.Country)
		}
		if _, ok := domain.CanadianProvinces[r.State]; ok && r.Country != domain.CountryCanada {
			p.errorf("line %d: province %s but country %q", line(i), r.State, r.Country)
		}
	}
	return p
}

var (
	excludedSummaryRe = regexp.MustCompile(`(?i)hoax|madar|ufo note`)
	noInfoRe          = regexp.MustCompile(`(?i)^\W*no\s+info(?:rmation)?(?:\s+available)?\W*$`)
	mufonRe           = regexp.MustCompile(`(?i)mufon`)
)

func validateSummaries(records []domain.CleanRecord) *phase {
	p := &phase{name: "Phase 5: Summaries scrubbed"}
	for i, r := range records {
		switch {
		case excludedSummaryRe.MatchString(r.Summary):
			p.errorf("line %d: summary %q belongs in an exclusion subset", line(i), r.Summary)
		case noInfoRe.MatchString(r.Summary):
			p.errorf("line %d: placeholder summary %q", line(i), r.Summary)
		case mufonRe.MatchString(r.Summary):
			p.errorf("line %d: MUFON mention left in %q", line(i), r.Summary)
		case strings.ContainsAny(r.Summary, "()"):
			p.errorf("line %d: parentheses left in %q", line(i), r.Summary)
		}
	}
	return p
}

func validateSubsets(dir string) *phase {
	p := &phase{name: "Phase 6: Exclusion subsets"}
	patterns := map[domain.Subset]*regexp.Regexp{
		domain.SubsetAnnotated: regexp.MustCompile(`(?i)ufo note`),
		domain.SubsetHoaxes:    regexp.MustCompile(`(?i)hoax`),
		domain.SubsetMadar:     regexp.MustCompile(`(?i)madar`),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, sub := range (domain.Dataset{}).Subsets() {
		path := filepath.Join(dir, csvfile.SubsetFile(sub.Name))
		rows, err := csvfile.NewRawStore(path, logger).Extract(context.Background())
		if err != nil {
			p.errorf("%s: %v", sub.Name, err)
			continue
		}
		for i, r := range rows {
			if !patterns[sub.Name].MatchString(r.Summary) {
				p.errorf("%s line %d: summary %q does not match the subset", sub.Name, line(i), r.Summary)
			}
		}
	}
	return p
}

func validateReproducible(path, other string) *phase {
	p := &phase{name: "Phase 7: Byte-identical rerun"}
	a, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	b, err := os.ReadFile(other)
	if err != nil {
		p.errorf("read %s: %v", other, err)
		return p
	}
	if !bytes.Equal(a, b) {
		p.errorf("%s and %s differ", path, other)
	}
	return p
}
