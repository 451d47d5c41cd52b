package domain

import (
	"regexp"
	"strings"
)

// RuleKind says what a summary rule does to the reports it matches.
type RuleKind int

const (
	// RuleDrop discards matching reports.
	RuleDrop RuleKind = iota
	// RulePartition moves matching reports into a named subset.
	RulePartition
	// RuleRewrite deletes every match from the summary text.
	RuleRewrite
	// RuleFlag marks matching reports as MUFON referrals.
	RuleFlag
)

// SummaryRule is one entry of the ordered summary rule table.
type SummaryRule struct {
	Stage   string
	Kind    RuleKind
	Pattern *regexp.Regexp
	Subset  Subset // RulePartition only

	// Blank, when set, replaces Pattern as the drop predicate.
	Blank bool
}

// Matches reports whether the rule selects summary.
func (r SummaryRule) Matches(summary string) bool {
	if r.Blank {
		return strings.TrimSpace(summary) == ""
	}
	return r.Pattern.MatchString(summary)
}

// Rewrite removes every match of the rule pattern and tidies whitespace.
func (r SummaryRule) Rewrite(summary string) string {
	return tidySummary(r.Pattern.ReplaceAllString(summary, ""))
}

var whitespaceRunRe = regexp.MustCompile(`\s{2,}`)

func tidySummary(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}

// SummaryRules is the fixed, ordered rule table applied to report summaries.
// Order matters: the MUFON flag is read from the summary as submitted, filler
// words are stripped before the hoax and MADAR checks, and the MUFON mention
// is stripped last.
// Consecutive partition rules sharing a Stage are evaluated against the same
// input, so a report may land in more than one subset.
var SummaryRules = []SummaryRule{
	{Stage: "missing-summary", Kind: RuleDrop, Blank: true},
	{Stage: "mufon-flag", Kind: RuleFlag, Pattern: regexp.MustCompile(`(?i)mufon`)},
	{Stage: "ufo-note", Kind: RulePartition, Pattern: regexp.MustCompile(`(?i)ufo note`), Subset: SubsetAnnotated},
	{Stage: "strip-filler", Kind: RuleRewrite, Pattern: regexp.MustCompile(`(?i)anonymous|report`)},
	{Stage: "strip-parens", Kind: RuleRewrite, Pattern: regexp.MustCompile(`[()]`)},
	{Stage: "hoax-madar", Kind: RulePartition, Pattern: regexp.MustCompile(`(?i)hoax`), Subset: SubsetHoaxes},
	{Stage: "hoax-madar", Kind: RulePartition, Pattern: regexp.MustCompile(`(?i)madar`), Subset: SubsetMadar},
	{Stage: "no-info", Kind: RuleDrop, Pattern: regexp.MustCompile(`(?i)^\W*no\s+info(?:rmation)?(?:\s+available)?\W*$`)},
	{Stage: "strip-nuforc-note", Kind: RuleRewrite, Pattern: regexp.MustCompile(`(?i)nuforc note.+pd`)},
	{Stage: "strip-mufon", Kind: RuleRewrite, Pattern: regexp.MustCompile(`(?i)mufon(?:\s+report)?`)},
}

// SummaryResult is the outcome of applying [SummaryRules].
type SummaryResult struct {
	Kept      []Sighting
	Subsets   map[Subset][]Sighting
	Retention []StageStat
}

// ApplySummaryRules runs rules over sightings in order. Sightings must have
// Summary populated from the raw record; the input slice is not modified.
func ApplySummaryRules(sightings []Sighting, rules []SummaryRule) SummaryResult {
	res := SummaryResult{Subsets: make(map[Subset][]Sighting)}
	current := append([]Sighting(nil), sightings...)

	for i := 0; i < len(rules); {
		rule := rules[i]

		if rule.Kind == RulePartition {
			// Gather the run of partition rules sharing this stage.
			j := i
			for j < len(rules) && rules[j].Kind == RulePartition && rules[j].Stage == rule.Stage {
				j++
			}
			current = res.partition(current, rules[i:j])
			i = j
			continue
		}

		in := len(current)
		switch rule.Kind {
		case RuleDrop:
			kept := current[:0]
			for _, s := range current {
				if !rule.Matches(s.Summary) {
					kept = append(kept, s)
				}
			}
			current = kept
		case RuleRewrite:
			for k := range current {
				current[k].Summary = rule.Rewrite(current[k].Summary)
			}
		case RuleFlag:
			for k := range current {
				if rule.Matches(current[k].Summary) {
					current[k].MUFON = true
				}
			}
		}
		res.Retention = append(res.Retention, StageStat{
			Stage: rule.Stage, In: in, Out: len(current), Excluded: in - len(current),
		})
		i++
	}

	res.Kept = current
	return res
}

// partition moves every sighting matched by any of rules into the matching
// subsets. One StageStat is recorded per subset.
func (res *SummaryResult) partition(current []Sighting, rules []SummaryRule) []Sighting {
	in := len(current)
	matched := make([]bool, len(current))
	counts := make([]int, len(rules))

	for k, s := range current {
		for r, rule := range rules {
			if rule.Matches(s.Summary) {
				res.Subsets[rule.Subset] = append(res.Subsets[rule.Subset], s)
				matched[k] = true
				counts[r]++
			}
		}
	}

	kept := make([]Sighting, 0, len(current))
	for k, s := range current {
		if !matched[k] {
			kept = append(kept, s)
		}
	}

	for r, rule := range rules {
		res.Retention = append(res.Retention, StageStat{
			Stage: rule.Stage, In: in, Out: len(kept), Subset: rule.Subset, Excluded: counts[r],
		})
	}
	return kept
}
