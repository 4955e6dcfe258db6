package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// Endpoint is the PageSpeed Insights v5 runPagespeed method.
	Endpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	// DefaultTimeout bounds one Lighthouse run.
	DefaultTimeout = 120 * time.Second
)

// Strategy is the Lighthouse emulation mode.
type Strategy string

const (
	StrategyMobile  Strategy = "mobile"
	StrategyDesktop Strategy = "desktop"
)

// StrategyForDevice maps a device name to a strategy. Tablets are analyzed
// with the mobile strategy.
func StrategyForDevice(device string) Strategy {
	if strings.EqualFold(strings.TrimSpace(device), "desktop") {
		return StrategyDesktop
	}
	return StrategyMobile
}

// APIError is a non-success answer from PageSpeed Insights.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pagespeed: http %d", e.Status)
	}
	return fmt.Sprintf("pagespeed: %s (http %d)", e.Message, e.Status)
}

// Client runs PageSpeed Insights analyses.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a client with the given timeout. A zero timeout uses
// DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   Endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithEndpoint returns a copy of c that targets endpoint.
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.endpoint = endpoint
	return &cp
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Run analyzes pageURL with every category enabled.
func (c *Client) Run(ctx context.Context, apiKey, pageURL string, strategy Strategy) (*Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("pagespeed: api key is required")
	}
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("key", apiKey)
	q.Set("strategy", string(strategy))
	for _, cat := range requestCategories {
		q.Add("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("pagespeed request timeout: %w", err)
		}
		return nil, fmt.Errorf("pagespeed request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pagespeed read: %w", err)
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("pagespeed response parse: %w", err)
	}
	return &result, nil
}
