package campaign

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/catalog"
)

func newTestEngine(t *testing.T) (*Engine, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewEngine(c), c
}

func category(name analysis.Category, score float64, issues ...analysis.Issue) analysis.CategoryAnalysis {
	return analysis.CategoryAnalysis{Name: name, Score: score, Issues: issues}
}

func TestAggregateEmptyInput(t *testing.T) {
	engine, _ := newTestEngine(t)

	var fromNull analysis.Analysis
	require.NoError(t, json.Unmarshal([]byte(`null`), &fromNull))

	for name, in := range map[string]analysis.Analysis{"zero": {}, "null": fromNull, "no_issues": {Categories: []analysis.CategoryAnalysis{category(analysis.CategoryPerformance, 100)}}} {
		t.Run(name, func(t *testing.T) {
			data := engine.Aggregate(in)
			assert.Equal(t, 0, data.Summary.TotalIssues)
			assert.Empty(t, data.Summary.PotentialSolutions)
			assert.Empty(t, data.ActionPlan)
			assert.Empty(t, data.Categories)
			assert.Equal(t, EstimatedImpact, data.Summary.EstimatedImpact)

			out, err := json.Marshal(data)
			require.NoError(t, err)
			var generic map[string]any
			require.NoError(t, json.Unmarshal(out, &generic))
			assert.Equal(t, map[string]any{}, generic["categories"])
			assert.Equal(t, map[string]any{}, generic["solutionsOverview"])
			assert.Equal(t, []any{}, generic["actionPlan"])
		})
	}
}

func TestAggregateServerResponseTimeScenario(t *testing.T) {
	engine, _ := newTestEngine(t)
	issue := analysis.Issue{
		ID:           "server-response-time",
		Title:        "Reduce initial server response time",
		Score:        0.3,
		DisplayValue: "1,240 ms",
		Impact:       analysis.ImpactHigh,
	}

	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 65, issue),
	}})

	assert.Equal(t, 1, data.Summary.TotalIssues)
	assert.Equal(t, 1, data.Summary.HighPriorityIssues)
	assert.ElementsMatch(t, []string{"cache", "tiered_cache", "load_balancer", "functions"}, data.Summary.PotentialSolutions)
	require.Len(t, data.ActionPlan, 1)

	item := data.ActionPlan[0]
	assert.Equal(t, issue.Title, item.Title)
	assert.Equal(t, catalog.PriorityHigh, item.Priority)
	assert.Equal(t, analysis.CategoryPerformance, item.Category)
	assert.Equal(t, "1,240 ms", item.PotentialSavings)
	assert.Equal(t, []string{"Cache", "Tiered Cache", "Load Balancer", "Functions"}, item.RecommendedSolutions)
	assert.Equal(t, ComplexityMedium, item.ImplementationComplexity)
	assert.Equal(t, "1,240 ms", item.PagespeedContext.CurrentValue)
	assert.Equal(t, 0.3, item.PagespeedContext.Score)
	assert.NotNil(t, item.PagespeedContext.Warnings)

	perf, ok := data.Categories.Get(analysis.CategoryPerformance)
	require.True(t, ok)
	assert.Equal(t, 65.0, perf.Score)
	assert.Equal(t, 1, perf.IssueCount)
	assert.Equal(t, analysis.ImpactHigh, perf.Issues[0].Severity)

	ids := make([]string, 0, len(data.SolutionsOverview))
	for _, s := range data.SolutionsOverview {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff(data.Summary.PotentialSolutions, ids); diff != "" {
		t.Fatalf("solutions overview mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateCountConservation(t *testing.T) {
	engine, _ := newTestEngine(t)
	in := analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 40,
			analysis.Issue{ID: "server-response-time", Score: 0.2},
			analysis.Issue{ID: "not-a-real-audit", Score: 0.1},
			analysis.Issue{ID: "unused-css-rules", Score: 0.6},
			analysis.Issue{ID: "user-timings", Score: 0.7},
		),
		category(analysis.CategorySEO, 80,
			analysis.Issue{ID: "http-status-code", Score: 0},
			analysis.Issue{ID: "another-unknown", Score: 0},
		),
	}}

	data := engine.Aggregate(in)
	s := data.Summary
	assert.Equal(t, s.TotalIssues, s.HighPriorityIssues+s.MediumPriorityIssues+s.LowPriorityIssues)
	assert.Equal(t, 4, s.TotalIssues)
	assert.Equal(t, 1, s.LowPriorityIssues)
	assert.Equal(t, []string{"not-a-real-audit", "another-unknown"}, data.UnmappedAudits)
}

func TestAggregateActionPlanBound(t *testing.T) {
	engine, cat := newTestEngine(t)
	for _, n := range []int{0, 4, 10, 12, 30} {
		t.Run(fmt.Sprintf("issues_%d", n), func(t *testing.T) {
			var issues []analysis.Issue
			for _, m := range cat.Mappings()[:n] {
				issues = append(issues, analysis.Issue{ID: m.AuditID, Score: 0.4})
			}
			data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
				category(analysis.CategoryPerformance, 50, issues...),
			}})
			assert.Equal(t, n, data.Summary.TotalIssues)
			assert.Len(t, data.ActionPlan, min(10, n))
		})
	}
}

func TestAggregateRanking(t *testing.T) {
	engine, _ := newTestEngine(t)

	t.Run("high_before_low_regardless_of_input_order", func(t *testing.T) {
		data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
			category(analysis.CategoryPerformance, 50,
				analysis.Issue{ID: "user-timings", Title: "low", Score: 0.1},
				analysis.Issue{ID: "server-response-time", Title: "high", Score: 0.8},
			),
		}})
		require.Len(t, data.ActionPlan, 2)
		assert.Equal(t, "high", data.ActionPlan[0].Title)
		assert.Equal(t, "low", data.ActionPlan[1].Title)
	})

	t.Run("lower_score_first_within_priority", func(t *testing.T) {
		data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
			category(analysis.CategoryPerformance, 50,
				analysis.Issue{ID: "unused-css-rules", Title: "medium", Score: 0.1},
				analysis.Issue{ID: "server-response-time", Title: "worse", Score: 0.8},
			),
			category(analysis.CategorySEO, 50,
				analysis.Issue{ID: "is-on-https", Title: "worst", Score: 0},
			),
		}})
		got := make([]string, 0, len(data.ActionPlan))
		for _, item := range data.ActionPlan {
			got = append(got, item.Title)
		}
		assert.Equal(t, []string{"worst", "worse", "medium"}, got)
		assert.Equal(t, analysis.CategorySEO, data.ActionPlan[0].Category)
	})

	t.Run("ties_keep_input_order", func(t *testing.T) {
		data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
			category(analysis.CategoryPerformance, 50,
				analysis.Issue{ID: "render-blocking-resources", Title: "first", Score: 0.5},
				analysis.Issue{ID: "server-response-time", Title: "second", Score: 0.5},
			),
		}})
		assert.Equal(t, "first", data.ActionPlan[0].Title)
		assert.Equal(t, "second", data.ActionPlan[1].Title)
	})
}

func TestAggregateConsoleErrors(t *testing.T) {
	engine, _ := newTestEngine(t)
	issue := analysis.Issue{
		ID:    analysis.ConsoleErrorsAuditID,
		Title: "Browser errors were logged to the console",
		Score: 0,
		ConsoleErrors: []analysis.ConsoleError{
			{Description: "a", Source: "console.error"},
			{Description: "b", Source: "console.warn"},
			{Description: "c", Source: "console.error"},
			{Description: "d"},
		},
	}

	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryBestPractices, 70, issue),
	}})

	summary := data.Summary.ConsoleErrors
	assert.True(t, summary.HasConsoleErrors)
	assert.Equal(t, 4, summary.TotalConsoleErrors)
	assert.ElementsMatch(t, []string{"console.error", "console.warn"}, summary.ErrorTypes)
	assert.Len(t, summary.SampleErrors, 3)

	require.Len(t, data.ActionPlan, 1)
	details := data.ActionPlan[0].ConsoleErrorDetails
	require.NotNil(t, details)
	assert.Equal(t, 4, details.TotalErrors)
	assert.Len(t, details.SampleErrors, 3)
}

func TestAggregateConsoleErrorsLastWriteWins(t *testing.T) {
	engine, _ := newTestEngine(t)
	first := analysis.Issue{ID: analysis.ConsoleErrorsAuditID, ConsoleErrors: []analysis.ConsoleError{{Source: "console.warn"}, {Source: "network"}}}
	second := analysis.Issue{ID: analysis.ConsoleErrorsAuditID, ConsoleErrors: []analysis.ConsoleError{{Source: "console.error"}}}

	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 50, first),
		category(analysis.CategoryBestPractices, 50, second),
	}})

	assert.Equal(t, 1, data.Summary.ConsoleErrors.TotalConsoleErrors)
	assert.Equal(t, []string{"console.error"}, data.Summary.ConsoleErrors.ErrorTypes)
	assert.Equal(t, 2, data.Summary.TotalIssues)
}

func TestAggregateCategoriesMirrorInputOrder(t *testing.T) {
	engine, _ := newTestEngine(t)
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategorySEO, 90, analysis.Issue{ID: "http-status-code", Score: 0}),
		category(analysis.CategoryAccessibility, 100, analysis.Issue{ID: "unknown", Score: 0}),
		category(analysis.CategoryPerformance, 30, analysis.Issue{ID: "server-response-time", Score: 0.1}),
	}})

	require.Len(t, data.Categories, 2)
	assert.Equal(t, analysis.CategorySEO, data.Categories[0].Name)
	assert.Equal(t, analysis.CategoryPerformance, data.Categories[1].Name)

	out, err := json.Marshal(data.Categories)
	require.NoError(t, err)
	var back CategoryReports
	require.NoError(t, json.Unmarshal(out, &back))
	require.Len(t, back, 2)
	assert.Equal(t, analysis.CategorySEO, back[0].Name)
}

func TestAggregateSeverityAndComplexity(t *testing.T) {
	engine, _ := newTestEngine(t)
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 50,
			analysis.Issue{ID: "unused-css-rules", Score: 0.6},
		),
	}})

	perf, ok := data.Categories.Get(analysis.CategoryPerformance)
	require.True(t, ok)
	assert.Equal(t, analysis.ImpactMedium, perf.Issues[0].Severity)
	assert.Equal(t, ComplexityLow, data.ActionPlan[0].ImplementationComplexity)
	assert.Equal(t, "Performance Issue", data.ActionPlan[0].Title)
	assert.Equal(t, []string{"Best Practices Review"}, data.ActionPlan[0].RecommendedSolutions)
}

func TestAggregateUserTimingsIsLowComplexity(t *testing.T) {
	engine, _ := newTestEngine(t)
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 90,
			analysis.Issue{ID: "user-timings", Title: "User Timing marks and measures", Score: 0.5},
		),
	}})

	require.Len(t, data.ActionPlan, 1)
	assert.Equal(t, ComplexityLow, data.ActionPlan[0].ImplementationComplexity)
	assert.Equal(t, []string{"Functions"}, data.ActionPlan[0].RecommendedSolutions)
	assert.Equal(t, []string{"functions"}, data.Summary.PotentialSolutions)
}

func TestAggregateSkipsIssuesWithoutID(t *testing.T) {
	engine, _ := newTestEngine(t)
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 40,
			analysis.Issue{ID: "", Title: "Anonymous", Score: 0.1},
			analysis.Issue{ID: "  ", Title: "Blank", Score: 0.1},
			analysis.Issue{ID: "server-response-time", Score: 0.2},
			analysis.Issue{ID: "not-a-real-audit", Score: 0.1},
		),
	}})

	assert.Equal(t, []string{"not-a-real-audit"}, data.UnmappedAudits)
	assert.Equal(t, 1, data.Summary.TotalIssues)
	require.Len(t, data.ActionPlan, 1)
	perf, ok := data.Categories.Get(analysis.CategoryPerformance)
	require.True(t, ok)
	assert.Equal(t, 1, perf.IssueCount)
}

func TestAggregatePageSpeedContextFromSource(t *testing.T) {
	engine, _ := newTestEngine(t)
	value := 1240.5
	data := engine.Aggregate(analysis.Analysis{Categories: []analysis.CategoryAnalysis{
		category(analysis.CategoryPerformance, 50, analysis.Issue{
			ID:          "server-response-time",
			Description: "short",
			Score:       0.3,
			Source: &analysis.SourceData{
				Description:  "Keep the server response time for the main document short.",
				NumericValue: &value,
				NumericUnit:  "millisecond",
				Warnings:     []string{"redirected"},
			},
		}),
	}})

	ctx := data.ActionPlan[0].PagespeedContext
	assert.Equal(t, "Keep the server response time for the main document short.", ctx.OriginalDescription)
	require.NotNil(t, ctx.NumericValue)
	assert.Equal(t, 1240.5, *ctx.NumericValue)
	assert.Equal(t, "millisecond", ctx.NumericUnit)
	assert.Equal(t, []string{"redirected"}, ctx.Warnings)
}

func TestAggregateIsDeterministic(t *testing.T) {
	engine, cat := newTestEngine(t)
	var issues []analysis.Issue
	for i, m := range cat.Mappings() {
		issues = append(issues, analysis.Issue{ID: m.AuditID, Score: float64(i%9) / 10})
	}
	in := analysis.Analysis{Categories: []analysis.CategoryAnalysis{category(analysis.CategoryPerformance, 10, issues...)}}

	first, err := json.Marshal(engine.Aggregate(in))
	require.NoError(t, err)
	second, err := json.Marshal(engine.Aggregate(in))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
