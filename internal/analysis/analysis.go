package analysis

import (
	"encoding/json"

	"pagespeed-campaign/internal/shared/util"
)

// Analysis is the per-category result of one page analysis. Category order is
// significant and survives a JSON round trip.
type Analysis struct {
	Categories []CategoryAnalysis
}

// Category returns the named category.
func (a Analysis) Category(name Category) (CategoryAnalysis, bool) {
	for _, c := range a.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryAnalysis{}, false
}

// IssueCount returns the number of issues across all categories.
func (a Analysis) IssueCount() int {
	n := 0
	for _, c := range a.Categories {
		n += len(c.Issues)
	}
	return n
}

// Normalize drops passing audits and fills a missing impact from the score.
// It is applied to analyses that arrive from outside the process.
func (a Analysis) Normalize() Analysis {
	out := Analysis{Categories: make([]CategoryAnalysis, 0, len(a.Categories))}
	for _, c := range a.Categories {
		issues := make([]Issue, 0, len(c.Issues))
		for _, issue := range c.Issues {
			if issue.Score >= PassingScore {
				continue
			}
			if issue.Impact == "" {
				issue.Impact = ImpactForScore(issue.Score)
			}
			if issue.Category == "" {
				issue.Category = c.Name
			}
			issues = append(issues, issue)
		}
		out.Categories = append(out.Categories, CategoryAnalysis{Name: c.Name, Score: c.Score, Issues: issues})
	}
	return out
}

// MarshalJSON writes categories as an object keyed by name, in order.
func (a Analysis) MarshalJSON() ([]byte, error) {
	return util.EncodeObject(len(a.Categories), func(i int) (string, any) {
		c := a.Categories[i]
		if c.Issues == nil {
			c.Issues = []Issue{}
		}
		return string(c.Name), c
	})
}

// UnmarshalJSON reads an object of categories in document order. Entries
// that are not objects or that lack a numeric score are skipped.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	a.Categories = nil
	return util.DecodeObject(data, func(key string, raw json.RawMessage) error {
		entry, ok := decodeCategory(raw)
		if ok {
			entry.Name = normalizeCategory(key)
			a.Categories = append(a.Categories, entry)
		}
		return nil
	})
}

func decodeCategory(raw json.RawMessage) (CategoryAnalysis, bool) {
	var probe struct {
		Score  *float64 `json:"score"`
		Issues []Issue  `json:"issues"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Score == nil {
		return CategoryAnalysis{}, false
	}
	return CategoryAnalysis{Score: *probe.Score, Issues: probe.Issues}, true
}
