package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ufo.db")
	s, err := Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testDataset() domain.Dataset {
	return domain.Dataset{
		Records: []domain.CleanRecord{
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
				Timestamp:       time.Date(2019, 4, 18, 20, 0, 0, 0, time.UTC),
				DurationSeconds: 12.5,
				Shape:           domain.ShapeOther,
				City:            "Leeds",
				Summary:         "lights hovering",
				MUFONReport:     true,
			},
		},
		Hoaxes: []domain.Sighting{{Raw: domain.RawRecord{
			DateTime: "4/14/19 17:00",
			City:     "Boise",
			State:    "ID",
			Shape:    "Light",
			Duration: "1 min",
			Summary:  "Confirmed HOAX",
			Posted:   "4/26/19",
			Source:   "http://www.nuforc.org/webreports/ndxe201904.html",
		}, Summary: "Confirmed"}},
	}
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestStore_Load(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx, testDataset()))

	assert.Equal(t, 2, count(t, s.db, "sightings"))
	assert.Equal(t, 1, count(t, s.db, "hoaxes"))
	assert.Equal(t, 0, count(t, s.db, "annotated"))
	assert.Equal(t, 0, count(t, s.db, "madar"))

	var (
		dateTime string
		duration float64
		state    sql.NullString
		country  sql.NullString
		mufon    bool
	)
	err := s.db.QueryRow(`SELECT date_time, duration_seconds, state, country, mufon_report FROM sightings WHERE id = 2`).
		Scan(&dateTime, &duration, &state, &country, &mufon)
	require.NoError(t, err)
	assert.Equal(t, "2019-04-18T20:00:00", dateTime)
	assert.Equal(t, 12.5, duration)
	assert.False(t, state.Valid)
	assert.False(t, country.Valid)
	assert.True(t, mufon)

	var summary string
	require.NoError(t, s.db.QueryRow(`SELECT summary FROM hoaxes WHERE id = 1`).Scan(&summary))
	assert.Equal(t, "Confirmed HOAX", summary, "subset rows keep the summary as submitted")
}

func TestStore_LoadReplacesPreviousRun(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx, testDataset()))

	next := testDataset()
	next.Records = next.Records[:1]
	next.Hoaxes = nil
	require.NoError(t, s.Load(ctx, next))

	assert.Equal(t, 1, count(t, s.db, "sightings"))
	assert.Equal(t, 0, count(t, s.db, "hoaxes"))
}

func TestStore_ReopenKeepsRows(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx, testDataset()))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, count(t, reopened.db, "sightings"))
}

func TestStore_LoadCancelledContext(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Load(context.Background(), testDataset()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, s.Load(ctx, domain.Dataset{}))
	assert.Equal(t, 2, count(t, s.db, "sightings"), "failed load must leave the previous run intact")
}
