package analysis

import "strings"

// Category names a Lighthouse category as it appears in an Analysis.
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
	CategoryBestPractices Category = "best_practices"
	CategorySEO           Category = "seo"
)

// Categories lists the four categories in the order every producer emits them.
var Categories = []Category{CategoryPerformance, CategoryAccessibility, CategoryBestPractices, CategorySEO}

// Impact is the severity derived from an audit's raw score.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
)

// PassingScore is the audit score at or above which an audit is not reported as an issue.
const PassingScore = 0.9

// ConsoleErrorsAuditID is the audit that carries browser console errors.
const ConsoleErrorsAuditID = "errors-in-console"

// ImpactForScore returns high for scores below 0.5 and medium otherwise.
func ImpactForScore(score float64) Impact {
	if score < 0.5 {
		return ImpactHigh
	}
	return ImpactMedium
}

// SourceLocation points at the script position a console error came from.
type SourceLocation struct {
	URL    string `json:"url,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// ConsoleError is one entry of the errors-in-console audit.
type ConsoleError struct {
	Description    string          `json:"description"`
	Source         string          `json:"source,omitempty"`
	SourceLocation *SourceLocation `json:"sourceLocation,omitempty"`
}

// SourceData keeps the audit fields copied from the PageSpeed response.
type SourceData struct {
	Description      string   `json:"description,omitempty"`
	Explanation      string   `json:"explanation,omitempty"`
	ScoreDisplayMode string   `json:"scoreDisplayMode,omitempty"`
	NumericValue     *float64 `json:"numericValue,omitempty"`
	NumericUnit      string   `json:"numericUnit,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Issue is a failing audit detected on the analyzed page.
type Issue struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Score         float64        `json:"score"`
	DisplayValue  string         `json:"displayValue"`
	Impact        Impact         `json:"impact"`
	Category      Category       `json:"category,omitempty"`
	Source        *SourceData    `json:"source,omitempty"`
	ConsoleErrors []ConsoleError `json:"consoleErrors,omitempty"`
}

// HasConsoleErrors reports whether the issue is the console audit with at least one entry.
func (i Issue) HasConsoleErrors() bool {
	return i.ID == ConsoleErrorsAuditID && len(i.ConsoleErrors) > 0
}

// CategoryAnalysis is the score and failing audits of one category.
type CategoryAnalysis struct {
	Name   Category `json:"-"`
	Score  float64  `json:"score"`
	Issues []Issue  `json:"issues"`
}

func normalizeCategory(value string) Category {
	v := strings.ToLower(strings.TrimSpace(value))
	return Category(strings.ReplaceAll(v, "-", "_"))
}
