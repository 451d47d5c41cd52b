package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type numberWord struct {
	word  string
	value float64
}

// numberWords is checked in order and the first contained word wins. Teens
// come first so "fourteen" reads as 14 rather than 4.
var numberWords = []numberWord{
	{"fifteen", 15}, {"fourteen", 14}, {"thirteen", 13}, {"twelve", 12},
	{"eleven", 11}, {"ten", 10}, {"nine", 9}, {"eight", 8},
	{"seven", 7}, {"six", 6}, {"five", 5}, {"four", 4},
	{"three", 3}, {"two", 2}, {"one", 1},
}

type durationUnit struct {
	pattern *regexp.Regexp
	seconds float64
}

// durationUnits tolerates partial spellings and plurals ("hr", "hrs", "mins",
// "sec"). Each pattern must start the word so "three" never reads as "hr".
var durationUnits = []durationUnit{
	{regexp.MustCompile(`(?:^|[^a-z])ho?u?r`), 3600},
	{regexp.MustCompile(`(?:^|[^a-z])minu?t?e?s?`), 60},
	{regexp.MustCompile(`(?:^|[^a-z])seco?n?d?s?`), 1},
}

var magnitudeRe = regexp.MustCompile(`(\d+)`)

// ParseDurationSeconds converts free-text durations such as "approximately
// 5 minutes" or "~2 hrs" into seconds. It reports false when either the
// magnitude or the unit cannot be found, or the product is not positive.
func ParseDurationSeconds(text string) (float64, bool) {
	text = strings.ToLower(text)

	magnitude, ok := durationMagnitude(text)
	if !ok {
		return 0, false
	}
	unit, ok := durationMultiplier(text)
	if !ok {
		return 0, false
	}

	seconds := magnitude * unit
	if seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

func durationMagnitude(text string) (float64, bool) {
	if m := magnitudeRe.FindString(text); m != "" {
		v, err := strconv.ParseFloat(m, 64)
		if err == nil {
			return v, true
		}
	}
	for _, nw := range numberWords {
		if strings.Contains(text, nw.word) {
			return nw.value, true
		}
	}
	return 0, false
}

func durationMultiplier(text string) (float64, bool) {
	for _, u := range durationUnits {
		if u.pattern.MatchString(text) {
			return u.seconds, true
		}
	}
	return 0, false
}

// MedianDuration returns the median of the parsed durations. Even-sized
// samples average the two middle values. It reports false for an empty sample.
func MedianDuration(sightings []Sighting) (float64, bool) {
	values := make([]float64, 0, len(sightings))
	for _, s := range sightings {
		if s.Duration != nil {
			values = append(values, *s.Duration)
		}
	}
	if len(values) == 0 {
		return 0, false
	}

	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid], true
	}
	return (values[mid-1] + values[mid]) / 2, true
}

// ImputeDurations fills every unset duration with median and returns the
// number of values filled. The input slice is modified in place.
func ImputeDurations(sightings []Sighting, median float64) int {
	filled := 0
	for i := range sightings {
		if sightings[i].Duration != nil {
			continue
		}
		v := median
		sightings[i].Duration = &v
		filled++
	}
	return filled
}
