package campaign

import (
	"encoding/json"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/shared/util"
)

// EstimatedImpact is reported for every campaign.
const EstimatedImpact = "high"

// Complexity is the effort label of an action item.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
)

// ConsoleErrorSummary describes the console errors found during the run.
type ConsoleErrorSummary struct {
	HasConsoleErrors   bool                    `json:"hasConsoleErrors"`
	TotalConsoleErrors int                     `json:"totalConsoleErrors"`
	ErrorTypes         []string                `json:"errorTypes"`
	SampleErrors       []analysis.ConsoleError `json:"sampleErrors"`
}

// Summary holds the campaign-wide counters.
type Summary struct {
	TotalIssues          int                 `json:"totalIssues"`
	HighPriorityIssues   int                 `json:"highPriorityIssues"`
	MediumPriorityIssues int                 `json:"mediumPriorityIssues"`
	LowPriorityIssues    int                 `json:"lowPriorityIssues"`
	PotentialSolutions   []string            `json:"potentialSolutions"`
	EstimatedImpact      string              `json:"estimatedImpact"`
	ConsoleErrors        ConsoleErrorSummary `json:"consoleErrors"`
}

// CategoryIssue pairs a resolved issue with its recommendation.
type CategoryIssue struct {
	Audit          analysis.Issue         `json:"audit"`
	Recommendation catalog.Recommendation `json:"recommendation"`
	Severity       analysis.Impact        `json:"severity"`
}

// CategoryReport is the per-category breakdown of resolved issues.
type CategoryReport struct {
	Name       analysis.Category `json:"-"`
	Score      float64           `json:"score"`
	Issues     []CategoryIssue   `json:"issues"`
	IssueCount int               `json:"issueCount"`
}

// CategoryReports serializes as an object keyed by category name, in order.
type CategoryReports []CategoryReport

// Get returns the report for a category.
func (r CategoryReports) Get(name analysis.Category) (CategoryReport, bool) {
	for _, c := range r {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryReport{}, false
}

func (r CategoryReports) MarshalJSON() ([]byte, error) {
	return util.EncodeObject(len(r), func(i int) (string, any) {
		return string(r[i].Name), r[i]
	})
}

func (r *CategoryReports) UnmarshalJSON(data []byte) error {
	*r = CategoryReports{}
	return util.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var c CategoryReport
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		c.Name = analysis.Category(key)
		*r = append(*r, c)
		return nil
	})
}

// SolutionIndex serializes as an object keyed by solution id, in order.
type SolutionIndex []catalog.Solution

func (s SolutionIndex) MarshalJSON() ([]byte, error) {
	return util.EncodeObject(len(s), func(i int) (string, any) {
		return s[i].ID, s[i]
	})
}

func (s *SolutionIndex) UnmarshalJSON(data []byte) error {
	*s = SolutionIndex{}
	return util.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var sol catalog.Solution
		if err := json.Unmarshal(raw, &sol); err != nil {
			return err
		}
		if sol.ID == "" {
			sol.ID = key
		}
		*s = append(*s, sol)
		return nil
	})
}

// PageSpeedContext carries the raw audit values behind an action item.
type PageSpeedContext struct {
	OriginalDescription string   `json:"originalDescription"`
	CurrentValue        string   `json:"currentValue"`
	Score               float64  `json:"score"`
	NumericValue        *float64 `json:"numericValue"`
	NumericUnit         string   `json:"numericUnit"`
	Warnings            []string `json:"warnings"`
}

// ConsoleErrorDetails is attached to the action item of the console audit.
type ConsoleErrorDetails struct {
	TotalErrors  int                     `json:"totalErrors"`
	ErrorTypes   []string                `json:"errorTypes"`
	SampleErrors []analysis.ConsoleError `json:"sampleErrors"`
}

// ActionItem is one ranked entry of the action plan.
type ActionItem struct {
	Title                    string               `json:"title"`
	Description              string               `json:"description"`
	Priority                 catalog.Priority     `json:"priority"`
	Category                 analysis.Category    `json:"category"`
	PotentialSavings         string               `json:"potentialSavings"`
	RecommendedSolutions     []string             `json:"recommendedSolutions"`
	ImplementationComplexity Complexity           `json:"implementationComplexity"`
	PagespeedContext         PageSpeedContext     `json:"pagespeedContext"`
	ConsoleErrorDetails      *ConsoleErrorDetails `json:"consoleErrorDetails,omitempty"`
}

// CampaignData is the aggregated view of an analysis.
type CampaignData struct {
	Summary           Summary         `json:"summary"`
	Categories        CategoryReports `json:"categories"`
	SolutionsOverview SolutionIndex   `json:"solutionsOverview"`
	ActionPlan        []ActionItem    `json:"actionPlan"`
	UnmappedAudits    []string        `json:"unmappedAudits,omitempty"`
}

func newCampaignData() CampaignData {
	return CampaignData{
		Summary: Summary{
			PotentialSolutions: []string{},
			EstimatedImpact:    EstimatedImpact,
			ConsoleErrors: ConsoleErrorSummary{
				ErrorTypes:   []string{},
				SampleErrors: []analysis.ConsoleError{},
			},
		},
		Categories:        CategoryReports{},
		SolutionsOverview: SolutionIndex{},
		ActionPlan:        []ActionItem{},
	}
}
