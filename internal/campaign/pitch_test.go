package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagespeed-campaign/internal/analysis"
)

func TestImpactOf(t *testing.T) {
	cases := []struct {
		name    string
		summary Summary
		want    PotentialImpact
	}{
		{name: "four_high", summary: Summary{TotalIssues: 4, HighPriorityIssues: 4}, want: PotentialImpactHigh},
		{name: "three_high_many_total", summary: Summary{TotalIssues: 6, HighPriorityIssues: 3}, want: PotentialImpactMedium},
		{name: "three_high_five_total", summary: Summary{TotalIssues: 5, HighPriorityIssues: 3}, want: PotentialImpactLow},
		{name: "empty", summary: Summary{}, want: PotentialImpactLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ImpactOf(tc.summary))
		})
	}
}

func TestFormatPitch(t *testing.T) {
	engine, _ := newTestEngine(t)
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 65,
			analysis.Issue{ID: "server-response-time", Score: 0.3},
			analysis.Issue{ID: "unused-css-rules", Score: 0.5},
		),
	}})

	pitch := FormatPitch(data, "https://www.example.com")
	assert.Equal(t, "https://www.example.com", pitch.ExecutiveSummary.Website)
	assert.Equal(t, 2, pitch.ExecutiveSummary.IssuesFound)
	assert.Equal(t, 1, pitch.ExecutiveSummary.CriticalIssues)
	assert.Equal(t, PotentialImpactLow, pitch.ExecutiveSummary.PotentialImpact)
	assert.Equal(t, 5, pitch.ExecutiveSummary.RecommendedSolutions)
	assert.Equal(t, "Up to 40% faster loading times", pitch.ValueProposition.PerformanceImprovement)
	assert.Equal(t, "Reduce bandwidth costs by 30-60%", pitch.ValueProposition.CostReduction)
	assert.Len(t, pitch.NextSteps, 5)
	assert.Equal(t, "Schedule a technical consultation", pitch.NextSteps[0])

	require.Len(t, pitch.SolutionHighlights, 5)
	first := pitch.SolutionHighlights[0]
	assert.Equal(t, "Cache", first.Name)
	assert.Len(t, first.KeyBenefits, 3)
	assert.Equal(t, "Reduces server response time (TTFB)", first.KeyBenefits[0])
	assert.Equal(t, "Best Practices Review", pitch.SolutionHighlights[4].Name)
}

func TestFormatPitchShortBenefits(t *testing.T) {
	data := newCampaignData()
	data.SolutionsOverview = SolutionIndex{{ID: "x", Name: "X", Benefits: []string{"only"}}}
	pitch := FormatPitch(data, "")
	require.Len(t, pitch.SolutionHighlights, 1)
	assert.Equal(t, []string{"only"}, pitch.SolutionHighlights[0].KeyBenefits)
	assert.Equal(t, PotentialImpactLow, pitch.ExecutiveSummary.PotentialImpact)
}

func TestFormatPitchDoesNotShareNextSteps(t *testing.T) {
	p := FormatPitch(newCampaignData(), "")
	p.NextSteps[0] = "changed"
	assert.Equal(t, "Schedule a technical consultation", FormatPitch(newCampaignData(), "").NextSteps[0])
}
