package pagespeed

import (
	"encoding/json"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/crux"
)

// Extract turns a Lighthouse result into an Analysis. Audits that pass or
// are not scored are left out.
func Extract(r *Result) analysis.Analysis {
	out := analysis.Analysis{Categories: make([]analysis.CategoryAnalysis, 0, len(analysis.Categories))}
	if r == nil {
		return out
	}
	lh := r.LighthouseResult

	index := make(map[analysis.Category]int, len(analysis.Categories))
	for i, name := range analysis.Categories {
		score := 0.0
		if cat, ok := lh.Categories[lighthouseCategory[name]]; ok && cat.Score != nil {
			score = *cat.Score * 100
		}
		out.Categories = append(out.Categories, analysis.CategoryAnalysis{
			Name:   name,
			Score:  score,
			Issues: []analysis.Issue{},
		})
		index[name] = i
	}

	for _, audit := range lh.Audits {
		if audit.Score == nil || *audit.Score >= analysis.PassingScore {
			continue
		}
		issue := issueFromAudit(audit)
		i := index[issue.Category]
		out.Categories[i].Issues = append(out.Categories[i].Issues, issue)
	}
	return out
}

func issueFromAudit(a Audit) analysis.Issue {
	score := *a.Score
	issue := analysis.Issue{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Score:        score,
		DisplayValue: a.DisplayValue,
		Impact:       analysis.ImpactForScore(score),
		Category:     CategoryFor(a.ID),
		Source: &analysis.SourceData{
			Description:      a.Description,
			Explanation:      a.Explanation,
			ScoreDisplayMode: a.ScoreDisplayMode,
			NumericValue:     a.NumericValue,
			NumericUnit:      a.NumericUnit,
			Warnings:         a.Warnings,
		},
	}
	if a.ID == analysis.ConsoleErrorsAuditID {
		issue.ConsoleErrors = consoleErrors(a.Details)
	}
	return issue
}

func consoleErrors(details json.RawMessage) []analysis.ConsoleError {
	if len(details) == 0 {
		return []analysis.ConsoleError{}
	}
	var d consoleDetails
	if err := json.Unmarshal(details, &d); err != nil {
		return []analysis.ConsoleError{}
	}
	out := make([]analysis.ConsoleError, 0, len(d.Items))
	for _, item := range d.Items {
		ce := analysis.ConsoleError{Description: item.Description, Source: item.Source}
		if loc := item.SourceLocation; loc != nil {
			ce.SourceLocation = &analysis.SourceLocation{URL: loc.URL, Line: loc.Line, Column: loc.Column}
		}
		out = append(out, ce)
	}
	return out
}

var vitalAudits = []struct {
	audit  string
	metric crux.Metric
}{
	{"largest-contentful-paint", crux.LargestContentfulPaint},
	{"first-contentful-paint", crux.FirstContentfulPaint},
	{"cumulative-layout-shift", crux.CumulativeLayoutShift},
	{"interaction-to-next-paint", crux.InteractionToNextPaint},
	{"server-response-time", crux.TimeToFirstByte},
}

// CoreVitals returns the lab values of the metrics CrUX also reports.
// It returns nil when none are present.
func CoreVitals(r *Result) map[crux.Metric]float64 {
	if r == nil {
		return nil
	}
	out := make(map[crux.Metric]float64, len(vitalAudits))
	for _, v := range vitalAudits {
		audit, ok := r.LighthouseResult.Audits.Get(v.audit)
		if !ok || audit.NumericValue == nil {
			continue
		}
		out[v.metric] = *audit.NumericValue
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
