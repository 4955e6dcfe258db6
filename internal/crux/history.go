package crux

import (
	"bytes"
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
	// HistoryEndpoint is the CrUX History API method.
	HistoryEndpoint = "https://chromeuxreport.googleapis.com/v1/records:queryHistoryRecord"
	// DefaultTimeout bounds one History call.
	DefaultTimeout = 30 * time.Second

	minPeriods     = 1
	maxPeriods     = 40
	DefaultPeriods = 25
)

// Query selects a History record.
type Query struct {
	URL        string
	FormFactor FormFactor
	Weeks      int
}

// APIError is a non-success answer from the CrUX API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("crux: http %d", e.Status)
	}
	return fmt.Sprintf("crux: %s (http %d)", e.Message, e.Status)
}

// Date is a CrUX calendar date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String formats the date as YYYY-MM-DD, or N/A when unset.
func (d Date) String() string {
	if d.Year == 0 {
		return "N/A"
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, month, day)
}

// CollectionPeriod is the 28-day window behind one data point.
type CollectionPeriod struct {
	FirstDate Date `json:"firstDate"`
	LastDate  Date `json:"lastDate"`
}

// Bin is one histogram bucket across collection periods.
type Bin struct {
	Start     Value   `json:"start"`
	End       *Value  `json:"end,omitempty"`
	Densities []Value `json:"densities"`
}

// Timeseries is the per-metric History payload.
type Timeseries struct {
	HistogramTimeseries   []Bin `json:"histogramTimeseries"`
	PercentilesTimeseries struct {
		P75s []Value `json:"p75s"`
	} `json:"percentilesTimeseries"`
}

// RecordKey identifies the record that was returned.
type RecordKey struct {
	FormFactor FormFactor `json:"formFactor,omitempty"`
	URL        string     `json:"url,omitempty"`
	Origin     string     `json:"origin,omitempty"`
}

// Record is the History record body.
type Record struct {
	Key               RecordKey             `json:"key"`
	Metrics           map[Metric]Timeseries `json:"metrics"`
	CollectionPeriods []CollectionPeriod    `json:"collectionPeriods"`
}

// History is a CrUX History response. Err is set on fallback records.
type History struct {
	Record Record `json:"record"`
	Err    string `json:"error,omitempty"`
}

// Empty reports whether the record carries no metric data.
func (h *History) Empty() bool {
	return h == nil || len(h.Record.Metrics) == 0
}

// EmptyHistory is the record used when CrUX data cannot be fetched.
func EmptyHistory(rawURL string, ff FormFactor, reason string) *History {
	if reason == "" {
		reason = "CrUX data not available"
	}
	return &History{
		Record: Record{
			Key:     RecordKey{URL: rawURL, FormFactor: ff},
			Metrics: map[Metric]Timeseries{},
		},
		Err: reason,
	}
}

// ClampWeeks bounds the collection period count to what the API accepts.
func ClampWeeks(weeks int) int {
	return min(max(weeks, minPeriods), maxPeriods)
}

// IsOrigin reports whether rawURL names an origin rather than a page: a
// scheme and host with no path, query or trailing slash.
func IsOrigin(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Path == "" && u.RawQuery == "" && u.Fragment == ""
}

// Client calls the CrUX History API.
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
		endpoint:   HistoryEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithEndpoint returns a copy of c that targets endpoint.
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.endpoint = endpoint
	return &cp
}

type historyRequest struct {
	FormFactor            FormFactor `json:"formFactor"`
	Metrics               []Metric   `json:"metrics"`
	CollectionPeriodCount int        `json:"collectionPeriodCount"`
	Origin                string     `json:"origin,omitempty"`
	URL                   string     `json:"url,omitempty"`
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// History fetches the History record for q.
func (c *Client) History(ctx context.Context, apiKey string, q Query) (*History, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("crux: api key is required")
	}
	body := historyRequest{
		FormFactor:            q.FormFactor,
		Metrics:               Metrics,
		CollectionPeriodCount: ClampWeeks(q.Weeks),
	}
	if body.FormFactor == "" {
		body.FormFactor = FormFactorPhone
	}
	if IsOrigin(q.URL) {
		body.Origin = q.URL
	} else {
		body.URL = q.URL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint + "?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crux request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("crux read: %w", err)
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode}
	}

	var h History
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("crux response parse: %w", err)
	}
	if h.Record.Metrics == nil {
		h.Record.Metrics = map[Metric]Timeseries{}
	}
	return &h, nil
}
