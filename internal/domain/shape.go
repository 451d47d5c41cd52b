package domain

import "strings"

// Shape categories merged from near-duplicate submitter labels.
const (
	ShapeRound       = "Round"
	ShapeCylindrical = "Cylindrical"
	ShapeOther       = "Other"
	ShapeFlashing    = "Flashing"
	ShapeVariable    = "Variable"
	ShapeTriangular  = "Triangular"
)

type shapeRule struct {
	category string
	match    func(lower string) bool
}

func oneOf(labels ...string) func(string) bool {
	return func(lower string) bool {
		for _, l := range labels {
			if lower == l {
				return true
			}
		}
		return false
	}
}

func containing(sub string) func(string) bool {
	return func(lower string) bool { return strings.Contains(lower, sub) }
}

// shapeRules is evaluated in order; the first match wins.
var shapeRules = []shapeRule{
	{ShapeRound, oneOf("circle", "round", "sphere")},
	{ShapeCylindrical, oneOf("cigar", "cylinder")},
	{ShapeOther, oneOf("", "unknown", "other")},
	{ShapeFlashing, oneOf("flash", "flare")},
	{ShapeVariable, containing("chang")},
	{ShapeTriangular, containing("triang")},
}

// NormalizeShape maps a raw shape label to its category. Unrecognized labels
// pass through trimmed and title-cased.
func NormalizeShape(raw string) string {
	label := titleCase(strings.TrimSpace(raw))
	lower := strings.ToLower(label)
	for _, r := range shapeRules {
		if r.match(lower) {
			return r.category
		}
	}
	return label
}

// IsShapeCategory reports whether s is one of the merged categories.
func IsShapeCategory(s string) bool {
	switch s {
	case ShapeRound, ShapeCylindrical, ShapeOther, ShapeFlashing, ShapeVariable, ShapeTriangular:
		return true
	}
	return false
}
