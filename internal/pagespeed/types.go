package pagespeed

import (
	"encoding/json"

	"pagespeed-campaign/internal/shared/util"
)

// Result is the subset of a runPagespeed response the analyzer reads.
type Result struct {
	ID               string           `json:"id"`
	AnalysisUTC      string           `json:"analysisUTCTimestamp"`
	LighthouseResult LighthouseResult `json:"lighthouseResult"`
}

// LighthouseResult holds category scores and audits.
type LighthouseResult struct {
	RequestedURL string                    `json:"requestedUrl"`
	FinalURL     string                    `json:"finalUrl"`
	Categories   map[string]CategoryResult `json:"categories"`
	Audits       Audits                    `json:"audits"`
}

// CategoryResult is a Lighthouse category score in the 0..1 range.
type CategoryResult struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Score *float64 `json:"score"`
}

// Audit is a single Lighthouse audit.
type Audit struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Score            *float64        `json:"score"`
	ScoreDisplayMode string          `json:"scoreDisplayMode"`
	DisplayValue     string          `json:"displayValue"`
	Explanation      string          `json:"explanation"`
	NumericValue     *float64        `json:"numericValue"`
	NumericUnit      string          `json:"numericUnit"`
	Warnings         []string        `json:"warnings"`
	Details          json.RawMessage `json:"details"`
}

// Audits keeps audits in response order.
type Audits []Audit

// Get returns the audit with id.
func (a Audits) Get(id string) (Audit, bool) {
	for _, audit := range a {
		if audit.ID == id {
			return audit, true
		}
	}
	return Audit{}, false
}

func (a Audits) MarshalJSON() ([]byte, error) {
	return util.EncodeObject(len(a), func(i int) (string, any) {
		return a[i].ID, a[i]
	})
}

func (a *Audits) UnmarshalJSON(data []byte) error {
	*a = Audits{}
	return util.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var audit Audit
		if err := json.Unmarshal(raw, &audit); err != nil {
			return err
		}
		audit.ID = key
		*a = append(*a, audit)
		return nil
	})
}

type consoleDetails struct {
	Items []struct {
		Description    string `json:"description"`
		Source         string `json:"source"`
		SourceLocation *struct {
			URL    string `json:"url"`
			Line   int    `json:"line"`
			Column int    `json:"column"`
		} `json:"sourceLocation"`
	} `json:"items"`
}
