package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sightingsWithSummaries(summaries ...string) []Sighting {
	out := make([]Sighting, len(summaries))
	for i, s := range summaries {
		out[i] = Sighting{Raw: RawRecord{Summary: s}, Summary: s}
	}
	return out
}

func summaries(sightings []Sighting) []string {
	out := make([]string, len(sightings))
	for i, s := range sightings {
		out[i] = s.Summary
	}
	return out
}

func TestApplySummaryRules_Partitions(t *testing.T) {
	in := sightingsWithSummaries(
		"Bright light over the lake",
		"",
		"UFO Note: possibly a satellite flare",
		"Obvious HOAX",
		"MADAR alert at the node",
		"hoax flagged by MADAR",
		"NO INFO",
		"Orange orb, no information about its origin",
	)

	res := ApplySummaryRules(in, SummaryRules)

	assert.Equal(t, []string{"Bright light over the lake", "Orange orb, no information about its origin"}, summaries(res.Kept))
	require.Len(t, res.Subsets[SubsetAnnotated], 1)
	assert.Equal(t, []string{"Obvious HOAX", "hoax flagged by MADAR"}, summaries(res.Subsets[SubsetHoaxes]))
	assert.Equal(t, []string{"MADAR alert at the node", "hoax flagged by MADAR"}, summaries(res.Subsets[SubsetMadar]))
}

func TestApplySummaryRules_HoaxNeverInMainFlow(t *testing.T) {
	res := ApplySummaryRules(sightingsWithSummaries("this was a hoax", "a real sighting"), SummaryRules)

	assert.Equal(t, []string{"a real sighting"}, summaries(res.Kept))
	assert.Equal(t, []string{"this was a hoax"}, summaries(res.Subsets[SubsetHoaxes]))
}

func TestApplySummaryRules_Rewrites(t *testing.T) {
	tests := []struct {
		name     string
		summary  string
		expected string
		mufon    bool
	}{
		{"mufon referral", "MUFON Report #1234", "#1234", true},
		{"mufon lower case", "Reported to mufon, saw a disc", "ed to , saw a disc", true},
		{"filler and parens", "Anonymous report (lights) over town", "lights over town", false},
		{"mufon inside nuforc note", "Bright light hovering ((NUFORC Note:  Witness also reported sighting to MUFON.  PD))", "Bright light hovering", true},
		{"nuforc note tail", "Three lights in a row. NUFORC Note: Source elects to remain totally anon. PD", "Three lights in a row.", false},
		{"untouched", "Silver disc hovering", "Silver disc hovering", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ApplySummaryRules(sightingsWithSummaries(tt.summary), SummaryRules)
			require.Len(t, res.Kept, 1)
			assert.Equal(t, tt.expected, res.Kept[0].Summary)
			assert.Equal(t, tt.mufon, res.Kept[0].MUFON)
			assert.NotContains(t, res.Kept[0].Summary, "MUFON")
		})
	}
}

func TestApplySummaryRules_MUFONFlagCarriedIntoSubsets(t *testing.T) {
	res := ApplySummaryRules(sightingsWithSummaries("Confirmed hoax, forwarded to MUFON"), SummaryRules)

	assert.Empty(t, res.Kept)
	require.Len(t, res.Subsets[SubsetHoaxes], 1)
	assert.True(t, res.Subsets[SubsetHoaxes][0].MUFON)
}

func TestApplySummaryRules_DoesNotMutateInput(t *testing.T) {
	in := sightingsWithSummaries("Anonymous report of a light")

	_ = ApplySummaryRules(in, SummaryRules)

	assert.Equal(t, "Anonymous report of a light", in[0].Summary)
}

func TestApplySummaryRules_Retention(t *testing.T) {
	in := sightingsWithSummaries("ok", "", "a hoax", "no info", "madar hoax")

	res := ApplySummaryRules(in, SummaryRules)

	byStage := map[string][]StageStat{}
	for _, st := range res.Retention {
		byStage[st.Stage] = append(byStage[st.Stage], st)
	}

	assert.Equal(t, StageStat{Stage: "missing-summary", In: 5, Out: 4, Excluded: 1}, byStage["missing-summary"][0])
	require.Len(t, byStage["hoax-madar"], 2)
	assert.Equal(t, StageStat{Stage: "hoax-madar", In: 4, Out: 2, Subset: SubsetHoaxes, Excluded: 2}, byStage["hoax-madar"][0])
	assert.Equal(t, StageStat{Stage: "hoax-madar", In: 4, Out: 2, Subset: SubsetMadar, Excluded: 1}, byStage["hoax-madar"][1])
	assert.Equal(t, StageStat{Stage: "no-info", In: 2, Out: 1, Excluded: 1}, byStage["no-info"][0])
	assert.Len(t, res.Kept, 1)
}

func TestSummaryRules_NoInfoIsPlaceholderOnly(t *testing.T) {
	var rule SummaryRule
	for _, r := range SummaryRules {
		if r.Stage == "no-info" {
			rule = r
		}
	}
	require.NotNil(t, rule.Pattern)

	assert.True(t, rule.Matches("NO INFO"))
	assert.True(t, rule.Matches("no information available."))
	assert.True(t, rule.Matches("  No Info  "))
	assert.False(t, rule.Matches("no info on the object's speed, but it was fast"))
}
