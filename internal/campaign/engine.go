package campaign

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/catalog"
)

const (
	actionPlanLimit  = 10
	sampleErrorLimit = 3
	defaultErrorType = "console.error"
	untitledIssue    = "Performance Issue"
)

// Resolver maps audit ids to recommendations. *catalog.Catalog implements it.
type Resolver interface {
	Resolve(auditID string, auditData *analysis.Issue) (catalog.Recommendation, error)
	Solution(id string) (catalog.Solution, bool)
}

// Engine aggregates analyses into campaign data. It holds no per-call state.
type Engine struct {
	resolver Resolver
}

// NewEngine returns an Engine backed by r.
func NewEngine(r Resolver) *Engine {
	return &Engine{resolver: r}
}

type resolvedIssue struct {
	issue    analysis.Issue
	rec      catalog.Recommendation
	category analysis.Category
}

// Aggregate resolves every issue of a and builds the campaign view. Category
// order in the result follows a. Unmapped audits contribute to no count and
// are listed in UnmappedAudits.
func (e *Engine) Aggregate(a analysis.Analysis) CampaignData {
	data := newCampaignData()
	seen := make(map[string]struct{})
	var resolved []resolvedIssue

	for _, cat := range a.Categories {
		report := CategoryReport{Name: cat.Name, Score: cat.Score}
		for _, issue := range cat.Issues {
			if strings.TrimSpace(issue.ID) == "" {
				continue
			}
			rec, err := e.resolver.Resolve(issue.ID, &issue)
			if err != nil {
				data.UnmappedAudits = append(data.UnmappedAudits, issue.ID)
				continue
			}

			if issue.HasConsoleErrors() {
				data.Summary.ConsoleErrors = summarizeConsoleErrors(issue.ConsoleErrors)
			}

			data.Summary.TotalIssues++
			switch rec.Priority {
			case catalog.PriorityHigh:
				data.Summary.HighPriorityIssues++
			case catalog.PriorityMedium:
				data.Summary.MediumPriorityIssues++
			case catalog.PriorityLow:
				data.Summary.LowPriorityIssues++
			}

			for _, id := range rec.SolutionIDs() {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				data.Summary.PotentialSolutions = append(data.Summary.PotentialSolutions, id)
			}

			report.Issues = append(report.Issues, CategoryIssue{
				Audit:          issue,
				Recommendation: rec,
				Severity:       severityOf(issue),
			})
			resolved = append(resolved, resolvedIssue{issue: issue, rec: rec, category: cat.Name})
		}
		if len(report.Issues) == 0 {
			continue
		}
		report.IssueCount = len(report.Issues)
		data.Categories = append(data.Categories, report)
	}

	for _, id := range data.Summary.PotentialSolutions {
		if s, ok := e.resolver.Solution(id); ok {
			data.SolutionsOverview = append(data.SolutionsOverview, s)
		}
	}

	rankIssues(resolved)
	if len(resolved) > actionPlanLimit {
		resolved = resolved[:actionPlanLimit]
	}
	for _, r := range resolved {
		data.ActionPlan = append(data.ActionPlan, buildActionItem(r))
	}
	data.UnmappedAudits = lo.Uniq(data.UnmappedAudits)
	return data
}

// rankIssues orders by priority weight, then by ascending score. Ties keep
// their input order.
func rankIssues(items []resolvedIssue) {
	sort.SliceStable(items, func(i, j int) bool {
		wi, wj := items[i].rec.Priority.Weight(), items[j].rec.Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return items[i].issue.Score < items[j].issue.Score
	})
}

func severityOf(issue analysis.Issue) analysis.Impact {
	if issue.Impact == "" {
		return analysis.ImpactMedium
	}
	return issue.Impact
}

func errorTypes(errs []analysis.ConsoleError) []string {
	return lo.Uniq(lo.Map(errs, func(e analysis.ConsoleError, _ int) string {
		if e.Source == "" {
			return defaultErrorType
		}
		return e.Source
	}))
}

func sampleErrors(errs []analysis.ConsoleError) []analysis.ConsoleError {
	n := min(len(errs), sampleErrorLimit)
	out := make([]analysis.ConsoleError, n)
	copy(out, errs[:n])
	return out
}

func summarizeConsoleErrors(errs []analysis.ConsoleError) ConsoleErrorSummary {
	return ConsoleErrorSummary{
		HasConsoleErrors:   len(errs) > 0,
		TotalConsoleErrors: len(errs),
		ErrorTypes:         errorTypes(errs),
		SampleErrors:       sampleErrors(errs),
	}
}

func buildActionItem(r resolvedIssue) ActionItem {
	title := r.issue.Title
	if title == "" {
		title = untitledIssue
	}
	complexity := ComplexityMedium
	if len(r.rec.Solutions) == 1 {
		complexity = ComplexityLow
	}
	item := ActionItem{
		Title:                    title,
		Description:              r.rec.Description,
		Priority:                 r.rec.Priority,
		Category:                 r.category,
		PotentialSavings:         r.issue.DisplayValue,
		RecommendedSolutions:     solutionNames(r.rec.Solutions),
		ImplementationComplexity: complexity,
		PagespeedContext:         pageSpeedContext(r.issue),
	}
	if r.issue.HasConsoleErrors() {
		item.ConsoleErrorDetails = &ConsoleErrorDetails{
			TotalErrors:  len(r.issue.ConsoleErrors),
			ErrorTypes:   errorTypes(r.issue.ConsoleErrors),
			SampleErrors: sampleErrors(r.issue.ConsoleErrors),
		}
	}
	return item
}

func solutionNames(solutions []catalog.Solution) []string {
	return lo.Map(solutions, func(s catalog.Solution, _ int) string {
		return s.Name
	})
}

func pageSpeedContext(issue analysis.Issue) PageSpeedContext {
	ctx := PageSpeedContext{
		OriginalDescription: issue.Description,
		CurrentValue:        issue.DisplayValue,
		Score:               issue.Score,
		Warnings:            []string{},
	}
	if src := issue.Source; src != nil {
		if src.Description != "" {
			ctx.OriginalDescription = src.Description
		}
		ctx.NumericValue = src.NumericValue
		ctx.NumericUnit = src.NumericUnit
		if len(src.Warnings) > 0 {
			ctx.Warnings = src.Warnings
		}
	}
	return ctx
}
