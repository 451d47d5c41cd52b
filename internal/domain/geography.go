package domain

import (
	"regexp"
	"sort"
	"strings"
)

const (
	CountryUSA    = "United States of America"
	CountryCanada = "Canada"
)

// CountryEntry is one row of the ISO 3166 reference table.
type CountryEntry struct {
	Code string
	Name string
}

// countryCorrections overrides upstream labels that NUFORC submitters, mostly
// American and Canadian, are unlikely to use.
var countryCorrections = map[string]string{
	"BO": "Bolivia",
	"CC": "Cocos Islands",
	"FK": "Falkland Islands",
	"FM": "Micronesia",
	"IR": "Iran",
	"KP": "North Korea",
	"MF": "Saint Martin",
	"SX": "Sint Maarten",
	"VE": "Venezuela",
	"VG": "British Virgin Islands",
	"VI": "US Virgin Islands",
	"CD": "Democratic Republic of the Congo",
	"KR": "South Korea",
	"MD": "Moldova",
	"PS": "Palestine",
	"TW": "Taiwan",
	"TZ": "Tanzania",
}

// CorrectCountryName returns the manual alias for code when one exists,
// otherwise the upstream name unchanged.
func CorrectCountryName(code, name string) string {
	if alias, ok := countryCorrections[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return alias
	}
	return name
}

// USStates maps USPS two-letter codes, territories included, to names.
var USStates = map[string]string{
	"AK": "Alaska", "AL": "Alabama", "AR": "Arkansas", "AS": "American Samoa",
	"AZ": "Arizona", "CA": "California", "CO": "Colorado", "CT": "Connecticut",
	"DC": "District of Columbia", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"GU": "Guam", "HI": "Hawaii", "IA": "Iowa", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "KS": "Kansas", "KY": "Kentucky",
	"LA": "Louisiana", "MA": "Massachusetts", "MD": "Maryland", "ME": "Maine",
	"MI": "Michigan", "MN": "Minnesota", "MO": "Missouri", "MP": "Northern Mariana Islands",
	"MS": "Mississippi", "MT": "Montana", "NC": "North Carolina", "ND": "North Dakota",
	"NE": "Nebraska", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NV": "Nevada", "NY": "New York", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "PR": "Puerto Rico", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VA": "Virginia", "VI": "Virgin Islands", "VT": "Vermont",
	"WA": "Washington", "WI": "Wisconsin", "WV": "West Virginia", "WY": "Wyoming",
}

// CanadianProvinces maps province and territory codes to names. Legacy codes
// (NF, PQ, YK) still appear in older reports and map to the same province.
var CanadianProvinces = map[string]string{
	"AB": "Alberta",
	"BC": "British Columbia",
	"MB": "Manitoba",
	"NB": "New Brunswick",
	"NL": "Newfoundland and Labrador",
	"NF": "Newfoundland and Labrador",
	"NT": "Northwest Territories",
	"NS": "Nova Scotia",
	"NU": "Nunavut",
	"ON": "Ontario",
	"PE": "Prince Edward Island",
	"PQ": "Quebec",
	"QC": "Quebec",
	"SK": "Saskatchewan",
	"YT": "Yukon",
	"YK": "Yukon",
}

// CountryTable is the canonical country set after alias correction.
type CountryTable struct {
	names   []string          // sorted longest first
	byLower map[string]string // lower-cased name -> canonical spelling
	re      *regexp.Regexp
}

// NewCountryTable applies [CorrectCountryName] to every entry and compiles a
// single alternation over the resulting names. Longer names come first so
// "Democratic Republic of the Congo" wins over "Congo" at the same position.
func NewCountryTable(entries []CountryEntry) *CountryTable {
	t := &CountryTable{byLower: make(map[string]string, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(CorrectCountryName(e.Code, e.Name))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := t.byLower[key]; dup {
			continue
		}
		t.byLower[key] = name
		t.names = append(t.names, name)
	}

	sort.Slice(t.names, func(i, j int) bool {
		if len(t.names[i]) != len(t.names[j]) {
			return len(t.names[i]) > len(t.names[j])
		}
		return t.names[i] < t.names[j]
	})

	if len(t.names) > 0 {
		quoted := make([]string, len(t.names))
		for i, n := range t.names {
			quoted[i] = regexp.QuoteMeta(n)
		}
		t.re = regexp.MustCompile(`(?i)(?:^|[^\pL])(` + strings.Join(quoted, "|") + `)(?:[^\pL]|$)`)
	}
	return t
}

// Len returns the number of canonical names.
func (t *CountryTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Contains reports whether name is a canonical country, ignoring case.
func (t *CountryTable) Contains(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byLower[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Match finds the first canonical country mentioned in hint.
func (t *CountryTable) Match(hint string) (string, bool) {
	if t == nil || t.re == nil || hint == "" {
		return "", false
	}
	m := t.re.FindStringSubmatch(hint)
	if len(m) != 2 {
		return "", false
	}
	return t.byLower[strings.ToLower(m[1])], true
}

// Names returns the canonical names, longest first.
func (t *CountryTable) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
