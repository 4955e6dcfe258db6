package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/crux"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

const (
	htmlName = "azion_analysis_mobile_20261016_120000.html"
	jsonName = "azion_marketing_data_20261016_120000.json"
)

type fakePSI struct {
	mu       sync.Mutex
	result   *pagespeed.Result
	err      error
	calls    int
	key      string
	url      string
	strategy pagespeed.Strategy
}

func (f *fakePSI) Run(_ context.Context, apiKey, pageURL string, strategy pagespeed.Strategy) (*pagespeed.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.key, f.url, f.strategy = apiKey, pageURL, strategy
	return f.result, f.err
}

type fakeCrUX struct {
	mu    sync.Mutex
	calls int
	query crux.Query
}

func (f *fakeCrUX) History(_ context.Context, _ string, q crux.Query) (*crux.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.query = q
	return nil, errors.New("crux: 404 not found")
}

type harness struct {
	psi    *fakePSI
	crux   *fakeCrUX
	in     *strings.Reader
	out    bytes.Buffer
	errOut bytes.Buffer
	opened []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	raw, err := os.ReadFile("../pagespeed/testdata/runpagespeed_mobile.json")
	require.NoError(t, err)
	var r pagespeed.Result
	require.NoError(t, json.Unmarshal(raw, &r))
	return &harness{psi: &fakePSI{result: &r}, crux: &fakeCrUX{}, in: strings.NewReader("")}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(Deps{
		In:        h.in,
		Out:       &h.out,
		Err:       &h.errOut,
		PageSpeed: h.psi,
		CrUX:      h.crux,
		Now:       func() time.Time { return fixedNow },
		Open: func(target string) error {
			h.opened = append(h.opened, target)
			return nil
		},
	})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestAnalyzeWritesReports(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	err := h.run(t, "analyze", "--url", "www.example.com", "--api-key", "cli-key", "--out-dir", dir, "--save-json", "--open")
	require.NoError(t, err)

	assert.Equal(t, 1, h.psi.calls)
	assert.Equal(t, "cli-key", h.psi.key)
	assert.Equal(t, "https://www.example.com", h.psi.url)
	assert.Equal(t, pagespeed.StrategyMobile, h.psi.strategy)
	assert.Zero(t, h.crux.calls)

	assert.FileExists(t, filepath.Join(dir, htmlName))
	raw, err := os.ReadFile(filepath.Join(dir, jsonName))
	require.NoError(t, err)
	doc, err := report.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com", doc.URL)
	assert.Equal(t, 5, doc.Campaign.Summary.TotalIssues)

	out := h.out.String()
	assert.Contains(t, out, "Analyzing https://www.example.com (mobile)...")
	assert.Contains(t, out, "Issues found: 5")
	assert.Contains(t, out, "Top actions")
	assert.Contains(t, out, "3 audits have no Azion mapping")

	require.Len(t, h.opened, 1)
	assert.True(t, strings.HasPrefix(h.opened[0], "file://"))
	assert.True(t, strings.HasSuffix(h.opened[0], htmlName))
}

func TestAnalyzePrintsNormalizedRequest(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "analyze", "--url", "  example.com/shop ", "--device", "DESKTOP", "--api-key", "k", "--out-dir", t.TempDir()))

	assert.Contains(t, h.out.String(), "Analyzing https://example.com/shop (desktop)...")
	assert.NotContains(t, h.out.String(), "Analyzing example.com")
	assert.Equal(t, "https://example.com/shop", h.psi.url)
}

func TestAnalyzeRejectsBadDeviceBeforeFetching(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "analyze", "--url", "example.com", "--device", "watch", "--api-key", "k", "--out-dir", t.TempDir())
	require.ErrorIs(t, err, analyses.ErrInvalidRequest)
	assert.NotContains(t, h.out.String(), "Analyzing")
	assert.Zero(t, h.psi.calls)
}

func TestAnalyzeRequiresURL(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "analyze", "--api-key", "k", "--out-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL required")
	assert.Zero(t, h.psi.calls)
}

func TestAnalyzeMissingAPIKey(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "analyze", "--url", "example.com", "--out-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGESPEED_INSIGHTS_API_KEY")
	assert.Zero(t, h.psi.calls)
}

func TestAnalyzeAPIKeyFromEnv(t *testing.T) {
	t.Setenv("PSC_API_KEY", "env-key")
	h := newHarness(t)
	require.NoError(t, h.run(t, "analyze", "--url", "example.com", "--out-dir", t.TempDir()))
	assert.Equal(t, "env-key", h.psi.key)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	h := newHarness(t)
	h.psi.err = &pagespeed.APIError{Status: 400, Message: "invalid url"}
	dir := t.TempDir()

	err := h.run(t, "analyze", "--url", "example.com", "--api-key", "k", "--out-dir", dir)
	require.Error(t, err)
	var apiErr *pagespeed.APIError
	assert.ErrorAs(t, err, &apiErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyzeWithCrUXDegrades(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "analyze", "--url", "example.com", "--api-key", "k", "--out-dir", t.TempDir(),
		"--device", "tablet", "--crux", "--weeks", "60")
	require.NoError(t, err)

	assert.Equal(t, 1, h.crux.calls)
	assert.Equal(t, crux.FormFactorTablet, h.crux.query.FormFactor)
	assert.Equal(t, 40, h.crux.query.Weeks)
	assert.Equal(t, pagespeed.StrategyMobile, h.psi.strategy)
	assert.Contains(t, h.out.String(), "Field data (CrUX)")
}

func TestAnalyzeInteractive(t *testing.T) {
	h := newHarness(t)
	h.in = strings.NewReader("\nexample.org\n3\n2\n2\ny\n12\n")
	dir := t.TempDir()

	require.NoError(t, h.run(t, "analyze", "-i", "--api-key", "k", "--out-dir", dir))

	assert.Equal(t, "https://example.org", h.psi.url)
	assert.Equal(t, pagespeed.StrategyDesktop, h.psi.strategy)
	assert.Equal(t, 12, h.crux.query.Weeks)
	assert.Equal(t, crux.FormFactorDesktop, h.crux.query.FormFactor)
	assert.FileExists(t, filepath.Join(dir, "azion_analysis_desktop_20261016_120000.html"))
	assert.Len(t, h.opened, 1)

	out := h.out.String()
	assert.Contains(t, out, "URL required")
	assert.Contains(t, out, "Enter 1 or 2")
}

func TestAnalyzeInteractiveInputClosed(t *testing.T) {
	h := newHarness(t)
	h.in = strings.NewReader("example.org\n")
	err := h.run(t, "analyze", "-i", "--api-key", "k", "--out-dir", t.TempDir())
	require.ErrorIs(t, err, errInputClosed)
	assert.Zero(t, h.psi.calls)
}

func TestAnalyzeConfigFile(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "analyzer.yaml")
	content := "api-key: file-key\ndevice: desktop\nformat: [yaml]\nout-dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	require.NoError(t, h.run(t, "--config", cfg, "analyze", "--url", "example.com"))

	assert.Equal(t, "file-key", h.psi.key)
	assert.Equal(t, pagespeed.StrategyDesktop, h.psi.strategy)
	assert.FileExists(t, filepath.Join(dir, "azion_marketing_data_20261016_120000.yaml"))
	assert.NoFileExists(t, filepath.Join(dir, "azion_analysis_desktop_20261016_120000.html"))
}

func TestAnalyzeCustomJSONPath(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "campaign.json")

	require.NoError(t, h.run(t, "analyze", "--url", "example.com", "--api-key", "k", "--out-dir", dir, "--output-json", target))

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	_, err = report.Decode(raw)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, jsonName))
	assert.FileExists(t, filepath.Join(dir, htmlName))
	assert.Contains(t, h.out.String(), target)
}

func TestAnalyzeCustomJSONPathWithEquals(t *testing.T) {
	h := newHarness(t)
	target := filepath.Join(t.TempDir(), "campaign.json")

	require.NoError(t, h.run(t, "analyze", "--output-json="+target, "--url", "example.com", "--api-key", "k", "--out-dir", t.TempDir()))
	assert.FileExists(t, target)
}

func TestAnalyzeFromFile(t *testing.T) {
	h := newHarness(t)
	first := t.TempDir()
	require.NoError(t, h.run(t, "analyze", "--url", "example.com", "--api-key", "k", "--out-dir", first, "--format", "json"))

	second := t.TempDir()
	h.out.Reset()
	require.NoError(t, h.run(t, "analyze", "--from-file", filepath.Join(first, jsonName), "--out-dir", second, "--format", "html"))

	assert.Equal(t, 1, h.psi.calls)
	assert.FileExists(t, filepath.Join(second, htmlName))
	assert.Contains(t, h.out.String(), "Re-rendering https://example.com (mobile)...")
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "analyze", "--url", "example.com", "--api-key", "k", "--out-dir", t.TempDir(), "--format", "pdf")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
	assert.Zero(t, h.psi.calls)
}
