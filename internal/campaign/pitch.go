package campaign

// PotentialImpact grades the business impact of a campaign.
type PotentialImpact string

const (
	PotentialImpactHigh   PotentialImpact = "High"
	PotentialImpactMedium PotentialImpact = "Medium"
	PotentialImpactLow    PotentialImpact = "Low"
)

const highlightBenefits = 3

// ExecutiveSummary is the headline block of a pitch.
type ExecutiveSummary struct {
	Website              string          `json:"website"`
	IssuesFound          int             `json:"issuesFound"`
	CriticalIssues       int             `json:"criticalIssues"`
	PotentialImpact      PotentialImpact `json:"potentialImpact"`
	RecommendedSolutions int             `json:"recommendedSolutions"`
}

// ValueProposition is static marketing copy.
type ValueProposition struct {
	PerformanceImprovement string `json:"performanceImprovement"`
	CostReduction          string `json:"costReduction"`
	SecurityEnhancement    string `json:"securityEnhancement"`
	Scalability            string `json:"scalability"`
}

// SolutionHighlight presents one recommended product.
type SolutionHighlight struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	KeyBenefits []string `json:"keyBenefits"`
	URL         string   `json:"url"`
}

// Pitch is the presentation-ready summary of a campaign.
type Pitch struct {
	ExecutiveSummary   ExecutiveSummary    `json:"executiveSummary"`
	ValueProposition   ValueProposition    `json:"valueProposition"`
	SolutionHighlights []SolutionHighlight `json:"solutionHighlights"`
	NextSteps          []string            `json:"nextSteps"`
}

var defaultValueProposition = ValueProposition{
	PerformanceImprovement: "Up to 40% faster loading times",
	CostReduction:          "Reduce bandwidth costs by 30-60%",
	SecurityEnhancement:    "Enterprise-grade security protection",
	Scalability:            "Handle 10x traffic spikes without issues",
}

var defaultNextSteps = []string{
	"Schedule a technical consultation",
	"Conduct a detailed performance audit",
	"Design a custom optimization strategy",
	"Implement Azion Edge Platform",
	"Monitor and optimize performance",
}

// ImpactOf grades a summary: High above 3 high-priority issues, Medium above
// 5 issues in total, Low otherwise.
func ImpactOf(s Summary) PotentialImpact {
	switch {
	case s.HighPriorityIssues > 3:
		return PotentialImpactHigh
	case s.TotalIssues > 5:
		return PotentialImpactMedium
	default:
		return PotentialImpactLow
	}
}

// FormatPitch builds the pitch for url from aggregated campaign data.
func FormatPitch(data CampaignData, url string) Pitch {
	highlights := make([]SolutionHighlight, 0, len(data.SolutionsOverview))
	for _, s := range data.SolutionsOverview {
		n := min(len(s.Benefits), highlightBenefits)
		benefits := make([]string, n)
		copy(benefits, s.Benefits[:n])
		highlights = append(highlights, SolutionHighlight{
			Name:        s.Name,
			Description: s.Description,
			KeyBenefits: benefits,
			URL:         s.URL,
		})
	}
	return Pitch{
		ExecutiveSummary: ExecutiveSummary{
			Website:              url,
			IssuesFound:          data.Summary.TotalIssues,
			CriticalIssues:       data.Summary.HighPriorityIssues,
			PotentialImpact:      ImpactOf(data.Summary),
			RecommendedSolutions: len(data.Summary.PotentialSolutions),
		},
		ValueProposition:   defaultValueProposition,
		SolutionHighlights: highlights,
		NextSteps:          append([]string(nil), defaultNextSteps...),
	}
}
