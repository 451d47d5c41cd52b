package pipeline

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
)

// Stage names for the timestamp filters. Summary stages are named by
// [domain.SummaryRules].
const (
	stageMissingDate = "missing-date-fields"
	stageBefore1947  = "before-1947"
	stageInvalidDate = "invalid-date"
	stageImpute      = "impute-duration"
)

// Normalize runs the fixed cleaning sequence over one scrape:
//
//  1. rebuild timestamps, dropping reports without a usable date
//  2. apply the summary rule table (drops, partitions, rewrites, MUFON flag)
//  3. parse durations, then impute the rest with the median of the survivors
//  4. resolve location and shape, producing the output rows
//
// It is deterministic: the same input always yields the same Dataset.
func Normalize(raw []domain.RawRecord, countries *domain.CountryTable) (domain.Dataset, error) {
	var ds domain.Dataset

	sightings, retention := parseTimestamps(raw)
	ds.Retention = append(ds.Retention, retention...)

	summaries := domain.ApplySummaryRules(sightings, domain.SummaryRules)
	ds.Retention = append(ds.Retention, summaries.Retention...)
	ds.Annotated = summaries.Subsets[domain.SubsetAnnotated]
	ds.Hoaxes = summaries.Subsets[domain.SubsetHoaxes]
	ds.Madar = summaries.Subsets[domain.SubsetMadar]
	sightings = summaries.Kept

	median, imputed, err := fillDurations(sightings)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds.MedianDuration = median
	ds.ImputedDurations = imputed
	ds.Retention = append(ds.Retention, domain.StageStat{Stage: stageImpute, In: len(sightings), Out: len(sightings)})

	ds.Records = make([]domain.CleanRecord, len(sightings))
	for i, s := range sightings {
		ds.Records[i] = toCleanRecord(s, countries)
	}
	return ds, nil
}

// parseTimestamps keeps the reports with a complete, credible date. Each
// exclusion reason is reported as its own stage, in a fixed order.
func parseTimestamps(raw []domain.RawRecord) ([]domain.Sighting, []domain.StageStat) {
	out := make([]domain.Sighting, 0, len(raw))
	var missing, early, invalid int

	for _, r := range raw {
		ts, err := domain.ParseTimestamp(r.DateTime, r.Source)
		switch {
		case errors.Is(err, domain.ErrMissingField):
			missing++
			continue
		case errors.Is(err, domain.ErrBeforeEarliestYear):
			early++
			continue
		case err != nil:
			invalid++
			continue
		}
		out = append(out, domain.Sighting{Raw: r, Timestamp: ts, Summary: r.Summary})
	}

	in := len(raw)
	stats := make([]domain.StageStat, 0, 3)
	for _, st := range []struct {
		stage string
		n     int
	}{{stageMissingDate, missing}, {stageBefore1947, early}, {stageInvalidDate, invalid}} {
		stats = append(stats, domain.StageStat{Stage: st.stage, In: in, Out: in - st.n, Excluded: st.n})
		in -= st.n
	}
	return out, stats
}

// fillDurations is the two-phase duration stage: parse every report first,
// then compute the median over the parsed values and impute the rest.
func fillDurations(sightings []domain.Sighting) (float64, int, error) {
	for i := range sightings {
		if v, ok := domain.ParseDurationSeconds(sightings[i].Raw.Duration); ok {
			sightings[i].Duration = &v
		}
	}

	median, ok := domain.MedianDuration(sightings)
	if !ok {
		if len(sightings) == 0 {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("impute %d durations: %w", len(sightings), domain.ErrNoDurationSample)
	}
	return median, domain.ImputeDurations(sightings, median), nil
}

func toCleanRecord(s domain.Sighting, countries *domain.CountryTable) domain.CleanRecord {
	loc := domain.ResolveLocation(s.Raw.City, s.Raw.State, countries)
	return domain.CleanRecord{
		Timestamp:       s.Timestamp,
		DurationSeconds: *s.Duration,
		Shape:           domain.NormalizeShape(s.Raw.Shape),
		City:            loc.City,
		State:           loc.State,
		Country:         loc.Country,
		Summary:         s.Summary,
		MUFONReport:     s.MUFON,
	}
}
