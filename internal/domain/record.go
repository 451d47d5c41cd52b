package domain

import (
	"context"
	"time"
)

// RawRecord is one report row exactly as the source delivered it.
type RawRecord struct {
	DateTime string `json:"date_time"`
	City     string `json:"city"`
	State    string `json:"state"`
	Shape    string `json:"shape"`
	Duration string `json:"duration"`
	Summary  string `json:"summary"`
	Posted   string `json:"posted"`
	Source   string `json:"source"` // month page URL, carries the ndxeYYYYMM token
}

// Sighting is a report in flight through the pipeline.
type Sighting struct {
	Raw       RawRecord
	Timestamp time.Time
	Summary   string
	MUFON     bool

	// Duration is nil until parsed or imputed.
	Duration *float64
}

// CleanRecord is one row of the output table.
type CleanRecord struct {
	Timestamp       time.Time `json:"date_time"`
	DurationSeconds float64   `json:"duration"`
	Shape           string    `json:"shape"`
	City            string    `json:"city"`
	State           string    `json:"state,omitempty"`
	Country         string    `json:"country,omitempty"`
	Summary         string    `json:"summary"`
	MUFONReport     bool      `json:"mufon_report"`
}

// Subset names a collection of reports set aside from the main table.
type Subset string

const (
	SubsetAnnotated Subset = "annotated"
	SubsetHoaxes    Subset = "hoaxes"
	SubsetMadar     Subset = "madar"
)

// StageStat records how many reports entered and left one pipeline stage.
type StageStat struct {
	Stage    string `json:"stage"`
	In       int    `json:"in"`
	Out      int    `json:"out"`
	Subset   Subset `json:"subset,omitempty"` // set when the removed reports were kept aside
	Excluded int    `json:"excluded"`
}

// Dataset is the result of one normalization run.
type Dataset struct {
	Records   []CleanRecord
	Annotated []Sighting
	Hoaxes    []Sighting
	Madar     []Sighting
	Retention []StageStat

	MedianDuration   float64
	ImputedDurations int
}

// Subsets returns the exclusion collections keyed by name, in a fixed order.
func (d Dataset) Subsets() []NamedSubset {
	return []NamedSubset{
		{Name: SubsetAnnotated, Sightings: d.Annotated},
		{Name: SubsetHoaxes, Sightings: d.Hoaxes},
		{Name: SubsetMadar, Sightings: d.Madar},
	}
}

// NamedSubset pairs an exclusion collection with its name.
type NamedSubset struct {
	Name      Subset
	Sightings []Sighting
}

// CountryResolver supplies ISO 3166 country entries from a reference source.
type CountryResolver interface {
	// Countries returns the upstream (code, name) pairs before alias correction.
	Countries(ctx context.Context) ([]CountryEntry, error)
}
