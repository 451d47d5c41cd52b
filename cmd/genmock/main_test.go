package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/ufo-sightings-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	s := collectStats([]domain.CleanRecord{
		{Shape: domain.ShapeRound, Country: domain.CountryUSA},
		{Shape: domain.ShapeRound, Country: domain.CountryCanada, MUFONReport: true},
		{Shape: "Light"},
	})

	assert.Equal(t, map[string]int{domain.ShapeRound: 2, "Light": 1}, s.shapeCounts)
	assert.Equal(t, map[string]int{
		domain.CountryUSA:    1,
		domain.CountryCanada: 1,
		"(unresolved)":       1,
	}, s.countryCounts)
	assert.Equal(t, 1, s.mufon)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fixture.json")
	require.NoError(t, writeJSON(path, []domain.RawRecord{{City: "Reno", State: "NV"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var got []domain.RawRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Reno", got[0].City)
}
