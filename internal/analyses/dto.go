package analyses

import (
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/report"
)

type analyzeRequest struct {
	URL     string `json:"url"`
	Device  string `json:"device"`
	UseCrUX bool   `json:"useCrux"`
	Weeks   int    `json:"weeks"`
	APIKey  string `json:"apiKey"`
}

func (r analyzeRequest) toRequest() Request {
	return Request{
		URL:     r.URL,
		Device:  r.Device,
		UseCrUX: r.UseCrUX,
		Weeks:   r.Weeks,
		APIKey:  r.APIKey,
	}
}

type analyzeResponse struct {
	RunID     string          `json:"runId"`
	Reports   []SavedReport   `json:"reports"`
	CrUXError string          `json:"cruxError,omitempty"`
	Document  report.Document `json:"document"`
}

type campaignResponse struct {
	Campaign campaign.CampaignData `json:"campaign"`
	Pitch    campaign.Pitch        `json:"pitch"`
}
