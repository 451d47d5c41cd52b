package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// cityParenRe removes the parenthetical from "London (UK/England)".
	cityParenRe = regexp.MustCompile(`\(.+\)`)
	// cityHintRe captures what sits inside it.
	cityHintRe  = regexp.MustCompile(`\((.+)\)`)
	nonLetterRe = regexp.MustCompile(`[^A-Za-z]`)
)

// titleCase builds a fresh Caser per call since Casers are stateful.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Location is the resolved place of a report.
type Location struct {
	City    string
	State   string
	Country string
	Hint    string // title-cased parenthetical from the raw city
}

// ResolveLocation cleans the raw city and state and infers the country.
// Precedence: a US state code, then a Canadian province code, then a
// canonical country named in the city's parenthetical.
func ResolveLocation(city, state string, countries *CountryTable) Location {
	loc := Location{
		City:  strings.TrimSpace(cityParenRe.ReplaceAllString(city, "")),
		State: NormalizeState(state),
		Hint:  CountryHint(city),
	}

	if _, ok := USStates[loc.State]; ok {
		loc.Country = CountryUSA
		return loc
	}
	if _, ok := CanadianProvinces[loc.State]; ok {
		loc.Country = CountryCanada
		return loc
	}
	if name, ok := countries.Match(loc.Hint); ok {
		loc.Country = name
	}
	return loc
}

// CountryHint returns the title-cased text inside the city's parentheses,
// or "" when there is none.
func CountryHint(city string) string {
	m := cityHintRe.FindStringSubmatch(city)
	if m == nil {
		return ""
	}
	return titleCase(strings.TrimSpace(m[1]))
}

// NormalizeState upper-cases state and drops everything but letters.
func NormalizeState(state string) string {
	return nonLetterRe.ReplaceAllString(strings.ToUpper(state), "")
}
