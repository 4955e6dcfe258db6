package catalog

import (
	"strings"

	"pagespeed-campaign/internal/analysis"
)

// Priority is the editorial tier assigned to an audit type.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight orders priorities for ranking. Unknown values weigh zero.
func (p Priority) Weight() int {
	switch Priority(strings.ToLower(strings.TrimSpace(string(p)))) {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Solution is a product entry of the catalog.
type Solution struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Features    []string `yaml:"features" json:"features"`
	Benefits    []string `yaml:"benefits" json:"benefits"`
	URL         string   `yaml:"url" json:"url"`
}

// AuditMapping ties a Lighthouse audit id to the products that remediate it.
type AuditMapping struct {
	AuditID     string   `yaml:"audit" json:"auditId"`
	Priority    Priority `yaml:"priority" json:"priority"`
	SolutionIDs []string `yaml:"solutions" json:"solutionIds"`
	Description string   `yaml:"description" json:"description"`
}

// Recommendation is the resolved form of an AuditMapping.
type Recommendation struct {
	AuditID     string          `json:"auditId"`
	Priority    Priority        `json:"priority"`
	Description string          `json:"description"`
	Solutions   []Solution      `json:"solutions"`
	AuditData   *analysis.Issue `json:"auditData,omitempty"`
}

// SolutionIDs returns the ids of the resolved solutions in order.
func (r Recommendation) SolutionIDs() []string {
	ids := make([]string, 0, len(r.Solutions))
	for _, s := range r.Solutions {
		ids = append(ids, s.ID)
	}
	return ids
}
