package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/crux"
)

const (
	maxIssuesPerCategory   = 8
	maxSolutionsPerIssue   = 3
	maxConsoleErrorsShown  = 10
	maxSourceURLLen        = 60
	speedGainLabel         = "40%"
	timestampDisplayLayout = "2006-01-02 15:04:05 MST"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var (
	titleCaser = cases.Title(language.English)

	reportTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
		"score": func(v float64) string { return fmt.Sprintf("%.0f", v) },
		"title": humanize,
		"upper": strings.ToUpper,
		"minus": func(a, b int) int { return a - b },
	}).ParseFS(templateFS, "templates/report.html.tmpl"))
)

type categoryStyle struct {
	Heading     string
	Color       string
	Description string
	Focus       string
}

var categoryStyles = map[analysis.Category]categoryStyle{
	analysis.CategoryPerformance: {
		Heading:     "Performance Optimization",
		Color:       "#F3652B",
		Description: "Core Web Vitals and loading performance optimizations",
		Focus:       "Edge Cache, Image Processor, Edge Functions, and Tiered Cache for maximum performance gains",
	},
	analysis.CategoryAccessibility: {
		Heading:     "Accessibility Enhancement",
		Color:       "#34A853",
		Description: "WCAG compliance and inclusive user experience improvements",
		Focus:       "Edge Functions and AI Inference for dynamic accessibility enhancements",
	},
	analysis.CategoryBestPractices: {
		Heading:     "Security & Best Practices",
		Color:       "#4285F4",
		Description: "Security, privacy, and modern web standards compliance",
		Focus:       "Edge Firewall, Edge Functions, and security headers for comprehensive protection",
	},
	analysis.CategorySEO: {
		Heading:     "SEO Optimization",
		Color:       "#FBBC04",
		Description: "Search engine visibility and discoverability improvements",
		Focus:       "Edge Functions, Edge DNS, and dynamic content optimization for better rankings",
	},
}

type htmlView struct {
	URL           string
	Device        string
	Generated     string
	Overall       scoreCard
	Scores        []scoreCard
	Summary       campaign.Summary
	SolutionCount int
	SpeedGain     string
	CrUX          *cruxView
	Categories    []categoryView
	Pitch         campaign.Pitch
}

type scoreCard struct {
	Label string
	Score float64
	Class string
}

type categoryView struct {
	Style      categoryStyle
	Score      float64
	IssueCount int
	Issues     []issueView
	High       int
	Medium     int
	Solutions  int
}

type issueView struct {
	Title         string
	Priority      catalog.Priority
	Rationale     string
	DisplayValue  string
	Description   string
	Solutions     []catalog.Solution
	ConsoleErrors []consoleErrorView
	ConsoleTotal  int
}

type consoleErrorView struct {
	Source      string
	Description string
	URL         string
	ShortURL    string
	Line        int
	Column      int
}

type cruxView struct {
	Score     float64
	Class     string
	Dates     []string
	Metrics   []crux.MetricAssessment
	Issues    []crux.Finding
	Strengths []string
	LabData   bool
}

type htmlRenderer struct{}

func (htmlRenderer) Format() Format      { return FormatHTML }
func (htmlRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (htmlRenderer) Render(doc Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, buildView(doc)); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func buildView(doc Document) htmlView {
	overall := doc.OverallScore()
	v := htmlView{
		URL:           doc.URL,
		Device:        doc.Device,
		Generated:     doc.Timestamp.Format(timestampDisplayLayout),
		Overall:       scoreCard{Label: "Overall Score", Score: overall, Class: ScoreClass(overall)},
		Summary:       doc.Campaign.Summary,
		SolutionCount: len(doc.Campaign.SolutionsOverview),
		SpeedGain:     speedGainLabel,
		Pitch:         doc.Pitch,
	}
	for _, c := range doc.Analysis.Categories {
		v.Scores = append(v.Scores, scoreCard{Label: humanize(string(c.Name)), Score: c.Score, Class: ScoreClass(c.Score)})
	}
	for _, c := range doc.Campaign.Categories {
		style, ok := categoryStyles[c.Name]
		if !ok || len(c.Issues) == 0 {
			continue
		}
		v.Categories = append(v.Categories, buildCategory(style, c))
	}
	v.CrUX = buildCrUX(doc.CrUX, doc.CrUXAssessment)
	return v
}

func buildCategory(style categoryStyle, c campaign.CategoryReport) categoryView {
	cv := categoryView{Style: style, Score: c.Score, IssueCount: c.IssueCount}
	solutionIDs := map[string]struct{}{}
	for _, ci := range c.Issues {
		switch ci.Recommendation.Priority {
		case catalog.PriorityHigh:
			cv.High++
		case catalog.PriorityMedium:
			cv.Medium++
		}
		for _, s := range ci.Recommendation.Solutions {
			solutionIDs[s.ID] = struct{}{}
		}
	}
	cv.Solutions = len(solutionIDs)

	for _, ci := range c.Issues[:min(len(c.Issues), maxIssuesPerCategory)] {
		iv := issueView{
			Title:        ci.Audit.Title,
			Priority:     ci.Recommendation.Priority,
			Rationale:    ci.Recommendation.Description,
			DisplayValue: ci.Audit.DisplayValue,
			Description:  ci.Audit.Description,
			Solutions:    ci.Recommendation.Solutions[:min(len(ci.Recommendation.Solutions), maxSolutionsPerIssue)],
			ConsoleTotal: len(ci.Audit.ConsoleErrors),
		}
		if ci.Audit.Source != nil && ci.Audit.Source.Description != "" {
			iv.Description = ci.Audit.Source.Description
		}
		if ci.Audit.HasConsoleErrors() {
			shown := ci.Audit.ConsoleErrors[:min(len(ci.Audit.ConsoleErrors), maxConsoleErrorsShown)]
			iv.ConsoleErrors = lo.Map(shown, func(e analysis.ConsoleError, _ int) consoleErrorView {
				return consoleError(e)
			})
		}
		cv.Issues = append(cv.Issues, iv)
	}
	return cv
}

func consoleError(e analysis.ConsoleError) consoleErrorView {
	cv := consoleErrorView{
		Source:      e.Source,
		Description: e.Description,
		URL:         "Unknown source",
	}
	if cv.Source == "" {
		cv.Source = "console.error"
	}
	if cv.Description == "" {
		cv.Description = "No description"
	}
	if loc := e.SourceLocation; loc != nil {
		if loc.URL != "" {
			cv.URL = loc.URL
		}
		cv.Line = loc.Line
		cv.Column = loc.Column
	}
	cv.ShortURL = cv.URL
	if len(cv.URL) > maxSourceURLLen {
		cv.ShortURL = "..." + cv.URL[len(cv.URL)-(maxSourceURLLen-3):]
	}
	return cv
}

func buildCrUX(p *crux.Processed, a *crux.Assessment) *cruxView {
	if a == nil {
		return nil
	}
	cv := &cruxView{
		Score:     a.OverallScore,
		Class:     cruxClass(a.OverallScore),
		Metrics:   a.Metrics,
		Issues:    append([]crux.Finding(nil), a.Issues...),
		Strengths: a.Strengths,
	}
	sort.SliceStable(cv.Issues, func(i, j int) bool {
		return cv.Issues[i].Severity == crux.SeverityHigh && cv.Issues[j].Severity != crux.SeverityHigh
	})
	if p != nil {
		cv.Dates = p.Dates
		cv.LabData = p.HasPageSpeedData
	}
	return cv
}

func cruxClass(score float64) string {
	switch {
	case score >= 75:
		return "good"
	case score >= 25:
		return "average"
	default:
		return "poor"
	}
}

// humanize turns snake_case keys into title case words.
func humanize(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}
