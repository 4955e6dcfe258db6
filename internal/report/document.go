package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/crux"
)

// ErrInvalidDocument is returned when a document lacks the fields every
// renderer needs.
var ErrInvalidDocument = errors.New("invalid report document")

// Document is everything produced by one analysis run. It is also the
// on-disk marketing data format, so a saved JSON document can be rendered
// again without network calls.
type Document struct {
	URL            string                `json:"url"`
	Device         string                `json:"device"`
	Timestamp      time.Time             `json:"timestamp"`
	Analysis       analysis.Analysis     `json:"analysis"`
	Campaign       campaign.CampaignData `json:"campaign"`
	Pitch          campaign.Pitch        `json:"pitch"`
	CrUX           *crux.Processed       `json:"crux,omitempty"`
	CrUXAssessment *crux.Assessment      `json:"cruxAssessment,omitempty"`
}

// Validate checks the fields renderers rely on.
func (d Document) Validate() error {
	if strings.TrimSpace(d.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidDocument)
	}
	if d.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidDocument)
	}
	return nil
}

// OverallScore is the mean of the category scores, 0 when there are none.
func (d Document) OverallScore() float64 {
	if len(d.Analysis.Categories) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range d.Analysis.Categories {
		total += c.Score
	}
	return total / float64(len(d.Analysis.Categories))
}

// ScoreClass buckets a 0-100 score for display.
func ScoreClass(score float64) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 50:
		return "average"
	default:
		return "poor"
	}
}
