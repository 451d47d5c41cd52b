package pipeline_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/couchcryptid/ufo-sightings-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	page201904 = "http://www.nuforc.org/webreports/ndxe201904.html"
	page194506 = "http://www.nuforc.org/webreports/ndxe194506.html"
)

func testCountries() *domain.CountryTable {
	return domain.NewCountryTable([]domain.CountryEntry{
		{Code: "AU", Name: "Australia"},
		{Code: "GB", Name: "United Kingdom of Great Britain and Northern Ireland"},
		{Code: "MX", Name: "Mexico"},
	})
}

func rawRecord(dateTime, city, state, shape, duration, summary string) domain.RawRecord {
	return domain.RawRecord{
		DateTime: dateTime,
		City:     city,
		State:    state,
		Shape:    shape,
		Duration: duration,
		Summary:  summary,
		Posted:   "4/26/19",
		Source:   page201904,
	}
}

// mockRawRecords covers every stage of the cleaning sequence.
func mockRawRecords() []domain.RawRecord {
	early := rawRecord("6/24/45 14:00", "Roswell", "NM", "Disk", "5 minutes", "Silver disc")
	early.Source = page194506

	return []domain.RawRecord{
		rawRecord("4/21/19 21:30", "San Diego", "CA", "Circle", "approximately 5 minutes", "Bright orb over the bay"),
		rawRecord("4/20/19 03:15", "Montreal", "PQ", "changing", "2 hours", "MUFON Report #1234"),
		rawRecord("4/19/19 22:05", "Sydney (Australia)", "", "Triangle", "three seconds", "Three lights in formation"),
		rawRecord("4/18/19 20:00", "Leeds (UK/England)", "", "", "a while", "Anonymous report (lights) hovering"),
		rawRecord("4/17/19", "Austin", "TX", "Light", "1 minute", "No time given"),
		early,
		rawRecord("4/16/19 19:00", "Tulsa", "OK", "Fireball", "10 min", ""),
		rawRecord("4/15/19 18:00", "Reno", "NV", "Light", "1 min", "UFO Note: probably Venus"),
		rawRecord("4/14/19 17:00", "Boise", "ID", "Light", "1 min", "Confirmed HOAX"),
		rawRecord("4/13/19 16:00", "Provo", "UT", "Light", "1 min", "MADAR report logged"),
		rawRecord("4/12/19 15:00", "Ogden", "UT", "Light", "1 min", "NO INFO"),
		rawRecord("2/30/19 15:00", "Ogden", "UT", "Light", "1 min", "Impossible date"),
	}
}

func TestNormalize_MockRecords(t *testing.T) {
	ds, err := pipeline.Normalize(mockRawRecords(), testCountries())
	require.NoError(t, err)

	expected := []domain.CleanRecord{
		{
			Timestamp:       time.Date(2019, 4, 21, 21, 30, 0, 0, time.UTC),
			DurationSeconds: 300,
			Shape:           domain.ShapeRound,
			City:            "San Diego",
			State:           "CA",
			Country:         domain.CountryUSA,
			Summary:         "Bright orb over the bay",
		},
		{
			Timestamp:       time.Date(2019, 4, 20, 3, 15, 0, 0, time.UTC),
			DurationSeconds: 7200,
			Shape:           domain.ShapeVariable,
			City:            "Montreal",
			State:           "PQ",
			Country:         domain.CountryCanada,
			Summary:         "#1234",
			MUFONReport:     true,
		},
		{
			Timestamp:       time.Date(2019, 4, 19, 22, 5, 0, 0, time.UTC),
			DurationSeconds: 3,
			Shape:           domain.ShapeTriangular,
			City:            "Sydney",
			Country:         "Australia",
			Summary:         "Three lights in formation",
		},
		{
			Timestamp:       time.Date(2019, 4, 18, 20, 0, 0, 0, time.UTC),
			DurationSeconds: 300, // median of 300, 7200, 3
			Shape:           domain.ShapeOther,
			City:            "Leeds",
			Summary:         "lights hovering",
		},
	}

	if diff := cmp.Diff(expected, ds.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 300.0, ds.MedianDuration)
	assert.Equal(t, 1, ds.ImputedDurations)

	require.Len(t, ds.Annotated, 1)
	assert.Equal(t, "Reno", ds.Annotated[0].Raw.City)
	require.Len(t, ds.Hoaxes, 1)
	assert.Equal(t, "Boise", ds.Hoaxes[0].Raw.City)
	require.Len(t, ds.Madar, 1)
	assert.Equal(t, "Provo", ds.Madar[0].Raw.City)
}

func TestNormalize_Retention(t *testing.T) {
	ds, err := pipeline.Normalize(mockRawRecords(), testCountries())
	require.NoError(t, err)

	excluded := map[string]int{}
	for _, st := range ds.Retention {
		excluded[st.Stage] += st.Excluded
		assert.LessOrEqual(t, st.Out, st.In, st.Stage)
	}

	assert.Equal(t, 1, excluded["missing-date-fields"])
	assert.Equal(t, 1, excluded["before-1947"])
	assert.Equal(t, 1, excluded["invalid-date"])
	assert.Equal(t, 1, excluded["missing-summary"])
	assert.Equal(t, 1, excluded["ufo-note"])
	assert.Equal(t, 2, excluded["hoax-madar"])
	assert.Equal(t, 1, excluded["no-info"])

	first := ds.Retention[0]
	last := ds.Retention[len(ds.Retention)-1]
	assert.Equal(t, 12, first.In)
	assert.Equal(t, len(ds.Records), last.Out)
}

func TestNormalize_Invariants(t *testing.T) {
	ds, err := pipeline.Normalize(mockRawRecords(), testCountries())
	require.NoError(t, err)

	for _, r := range ds.Records {
		assert.GreaterOrEqual(t, r.Timestamp.Year(), domain.EarliestYear)
		assert.Positive(t, r.DurationSeconds)
		if !domain.IsShapeCategory(r.Shape) {
			assert.NotEmpty(t, r.Shape)
		}
		assert.NotContains(t, r.Summary, "hoax")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := pipeline.Normalize(mockRawRecords(), testCountries())
	require.NoError(t, err)
	second, err := pipeline.Normalize(mockRawRecords(), testCountries())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestNormalize_NoDurationSample(t *testing.T) {
	raw := []domain.RawRecord{
		rawRecord("4/21/19 21:30", "San Diego", "CA", "Circle", "a while", "Bright orb"),
	}

	_, err := pipeline.Normalize(raw, testCountries())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDurationSample)
}

func TestNormalize_Empty(t *testing.T) {
	ds, err := pipeline.Normalize(nil, testCountries())
	require.NoError(t, err)
	assert.Empty(t, ds.Records)
	assert.Zero(t, ds.ImputedDurations)
}
