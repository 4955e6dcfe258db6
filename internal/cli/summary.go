package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/crux"
)

const topActions = 3

var categoryLabels = map[analysis.Category]string{
	analysis.CategoryPerformance:   "Performance",
	analysis.CategoryAccessibility: "Accessibility",
	analysis.CategoryBestPractices: "Best Practices",
	analysis.CategorySEO:           "SEO",
}

// Azion brand palette.
var (
	colorAccent = lipgloss.Color("#F3652B")
	colorMuted  = lipgloss.Color("#8B8B8B")
	colorGood   = lipgloss.Color("#2E7D32")
	colorWarn   = lipgloss.Color("#F9A825")
	colorBad    = lipgloss.Color("#C62828")
)

type styles struct {
	plain  lipgloss.Style
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
}

// newStyles binds styles to w so color is only emitted on terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		plain:  r.NewStyle(),
		title:  r.NewStyle().Bold(true).Foreground(colorAccent),
		header: r.NewStyle().Bold(true).Underline(true),
		label:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(colorMuted),
		good:   r.NewStyle().Foreground(colorGood),
		warn:   r.NewStyle().Foreground(colorWarn),
		bad:    r.NewStyle().Foreground(colorBad).Bold(true),
	}
}

func (s styles) priority(p catalog.Priority) lipgloss.Style {
	switch p {
	case catalog.PriorityHigh:
		return s.bad
	case catalog.PriorityMedium:
		return s.warn
	default:
		return s.good
	}
}

func (s styles) score(score float64) lipgloss.Style {
	switch {
	case score >= 90:
		return s.good
	case score >= 50:
		return s.warn
	default:
		return s.bad
	}
}

func (s styles) status(st crux.Status) lipgloss.Style {
	switch st {
	case crux.StatusGood:
		return s.good
	case crux.StatusNeedsImprovement:
		return s.warn
	default:
		return s.bad
	}
}

// printSummary writes the end-of-run digest of an analysis.
func printSummary(w io.Writer, res *analyses.Result, files []string) {
	st := newStyles(w)
	doc := res.Document
	sum := doc.Campaign.Summary

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render("Analysis complete"))
	for _, f := range files {
		fmt.Fprintf(w, "  %s %s\n", st.muted.Render("wrote"), f)
	}

	if len(doc.Analysis.Categories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render("Scores"))
		for _, c := range doc.Analysis.Categories {
			label := categoryLabels[c.Name]
			if label == "" {
				label = string(c.Name)
			}
			fmt.Fprintf(w, "  %-16s %s\n", label, st.score(c.Score).Render(fmt.Sprintf("%.0f", c.Score)))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render("Campaign"))
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("Issues found:"), sum.TotalIssues)
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("High priority:"), sum.HighPriorityIssues)
	fmt.Fprintf(w, "  %s %d\n", st.label.Render("Azion solutions:"), len(sum.PotentialSolutions))
	fmt.Fprintf(w, "  %s %s\n", st.label.Render("Potential impact:"), doc.Pitch.ExecutiveSummary.PotentialImpact)

	if n := min(topActions, len(doc.Campaign.ActionPlan)); n > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render("Top actions"))
		for i, item := range doc.Campaign.ActionPlan[:n] {
			prio := st.priority(item.Priority).Render(strings.ToUpper(string(item.Priority)))
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, prio, item.Title)
			if len(item.RecommendedSolutions) > 0 {
				fmt.Fprintf(w, "     %s\n", st.muted.Render(strings.Join(item.RecommendedSolutions, ", ")))
			}
		}
	}

	switch {
	case doc.CrUXAssessment != nil:
		a := doc.CrUXAssessment
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", st.header.Render("Field data (CrUX)"), st.score(a.OverallScore).Render(fmt.Sprintf("%.0f/100", a.OverallScore)))
		for _, m := range a.Metrics {
			fmt.Fprintf(w, "  %-28s %10.2f %-3s %s\n", m.DisplayName, m.Value, m.Unit, st.status(m.Status).Render(string(m.Status)))
		}
	case res.CrUXError != "":
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", st.warn.Render("CrUX unavailable:"), res.CrUXError)
	}

	if n := len(doc.Campaign.UnmappedAudits); n > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.muted.Render(fmt.Sprintf("%d audits have no Azion mapping: %s", n, strings.Join(doc.Campaign.UnmappedAudits, ", "))))
	}
}
