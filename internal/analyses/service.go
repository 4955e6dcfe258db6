package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/crux"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/report"
	"pagespeed-campaign/internal/shared/metrics"
	"pagespeed-campaign/internal/shared/storage/object"
	"pagespeed-campaign/internal/shared/telemetry"
)

var (
	// ErrUpstream wraps a failed PageSpeed Insights call.
	ErrUpstream = errors.New("pagespeed insights request failed")
	// ErrStorage wraps a failed report upload.
	ErrStorage = errors.New("report storage failed")
)

// PageSpeedFetcher runs a Lighthouse analysis. *pagespeed.Client implements it.
type PageSpeedFetcher interface {
	Run(ctx context.Context, apiKey, pageURL string, strategy pagespeed.Strategy) (*pagespeed.Result, error)
}

// CrUXFetcher fetches field data history. *crux.Client implements it.
type CrUXFetcher interface {
	History(ctx context.Context, apiKey string, q crux.Query) (*crux.History, error)
}

// KeyFunc places a rendered report in the object store.
type KeyFunc func(doc report.Document, runID, fileName string) string

// DefaultKey stores reports under reports/{domain}/{page-hash}-{run}/.
func DefaultKey(doc report.Document, runID, fileName string) string {
	return report.Key(doc.URL, runID, fileName)
}

// FlatKey stores reports directly under the store root, as the CLI does.
func FlatKey(_ report.Document, _ string, fileName string) string {
	return fileName
}

// Service runs the analysis pipeline: fetch, extract, aggregate, render, save.
type Service struct {
	PageSpeed PageSpeedFetcher
	CrUX      CrUXFetcher
	Engine    *campaign.Engine
	// Store receives rendered reports. Nil disables saving.
	Store object.ObjectStore
	// Formats saved per run. Empty means HTML and JSON.
	Formats       []report.Format
	DefaultAPIKey string
	Key           KeyFunc
	Now           func() time.Time
	NewID         func() string
}

// SavedReport is one report written to the store.
type SavedReport struct {
	Format report.Format `json:"format"`
	Key    string        `json:"key"`
	Size   int64         `json:"size"`
}

// Result is the outcome of one run.
type Result struct {
	RunID    string          `json:"runId"`
	Document report.Document `json:"document"`
	Reports  []SavedReport   `json:"reports"`
	// CrUXError is set when field data was requested but unavailable.
	CrUXError string `json:"cruxError,omitempty"`
}

// Report returns the saved report of format f.
func (r *Result) Report(f report.Format) (SavedReport, bool) {
	for _, s := range r.Reports {
		if s.Format == f {
			return s, true
		}
	}
	return SavedReport{}, false
}

// Run executes the full pipeline for req. PageSpeed failures are fatal;
// CrUX failures degrade to an empty history.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	req, err := req.Normalize(s.DefaultAPIKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := s.newID()
	now := s.now()
	fields := map[string]any{
		"request_id": requestIDFromContext(ctx),
		"run_id":     runID,
		"url":        req.URL,
		"device":     req.Device,
		"crux":       req.UseCrUX,
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.start", fields)

	psi, history, err := s.fetch(ctx, req, fields)
	if err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	doc := s.assemble(req, psi, history, now)
	res := &Result{RunID: runID, Document: doc, Reports: []SavedReport{}}
	if history != nil && history.Err != "" {
		res.CrUXError = history.Err
	}

	if err := s.save(ctx, res); err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))
	fields["duration_ms"] = elapsed.Milliseconds()
	fields["issues"] = doc.Campaign.Summary.TotalIssues
	fields["unmapped"] = len(doc.Campaign.UnmappedAudits)
	telemetry.Info("analysis.complete", fields)
	return res, nil
}

// Rerender rebuilds the campaign view of a saved document with the current
// catalog and saves it again. No network calls are made.
func (s *Service) Rerender(ctx context.Context, doc report.Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.Analysis = doc.Analysis.Normalize()
	doc.Campaign = s.Engine.Aggregate(doc.Analysis)
	doc.Pitch = campaign.FormatPitch(doc.Campaign, doc.URL)
	if doc.CrUX != nil {
		doc.CrUXAssessment = crux.Assess(doc.CrUX)
	}

	res := &Result{RunID: s.newID(), Document: doc, Reports: []SavedReport{}}
	if err := s.save(ctx, res); err != nil {
		return nil, err
	}
	telemetry.Info("analysis.rerender", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"run_id":     res.RunID,
		"url":        doc.URL,
	})
	return res, nil
}

func (s *Service) fetch(ctx context.Context, req Request, fields map[string]any) (*pagespeed.Result, *crux.History, error) {
	var (
		psi     *pagespeed.Result
		history *crux.History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.PageSpeed.Run(gctx, req.APIKey, req.URL, pagespeed.StrategyForDevice(req.Device))
		if err != nil {
			metrics.IncUpstreamError("pagespeed")
			telemetry.Error("pagespeed.fetch.error", withField(fields, "error", err.Error()))
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		psi = r
		return nil
	})
	if req.UseCrUX && s.CrUX != nil {
		ff := crux.FormFactorForDevice(req.Device)
		g.Go(func() error {
			h, err := s.CrUX.History(gctx, req.APIKey, crux.Query{URL: req.URL, FormFactor: ff, Weeks: req.Weeks})
			if err != nil {
				metrics.IncUpstreamError("crux")
				telemetry.Warn("crux.unavailable", withField(fields, "error", err.Error()))
				h = crux.EmptyHistory(req.URL, ff, err.Error())
			}
			history = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if req.UseCrUX && history == nil {
		history = crux.EmptyHistory(req.URL, crux.FormFactorForDevice(req.Device), "")
	}
	return psi, history, nil
}

func (s *Service) assemble(req Request, psi *pagespeed.Result, history *crux.History, now time.Time) report.Document {
	a := pagespeed.Extract(psi)
	data := s.Engine.Aggregate(a)
	metrics.AddUnmappedAudits(len(data.UnmappedAudits))

	doc := report.Document{
		URL:       req.URL,
		Device:    req.Device,
		Timestamp: now,
		Analysis:  a,
		Campaign:  data,
		Pitch:     campaign.FormatPitch(data, req.URL),
	}
	if req.UseCrUX {
		doc.CrUX = crux.Process(history, pagespeed.CoreVitals(psi), now)
		doc.CrUXAssessment = crux.Assess(doc.CrUX)
	}
	return doc
}

func (s *Service) save(ctx context.Context, res *Result) error {
	if s.Store == nil {
		return nil
	}
	keyFn := s.Key
	if keyFn == nil {
		keyFn = DefaultKey
	}
	for _, f := range s.formats() {
		r, err := report.New(f)
		if err != nil {
			return err
		}
		body, err := r.Render(res.Document)
		if err != nil {
			return fmt.Errorf("render %s: %w", f, err)
		}
		key := keyFn(res.Document, res.RunID, report.FileName(f, res.Document.Device, res.Document.Timestamp))
		n, err := s.Store.SaveWithKey(ctx, key, r.ContentType(), bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		metrics.IncReportsSaved()
		telemetry.Info("report.saved", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"run_id":     res.RunID,
			"format":     string(f),
			"key":        key,
			"bytes":      n,
		})
		res.Reports = append(res.Reports, SavedReport{Format: f, Key: key, Size: n})
	}
	return nil
}

func (s *Service) formats() []report.Format {
	if len(s.Formats) == 0 {
		return []report.Format{report.FormatHTML, report.FormatJSON}
	}
	return s.Formats
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func withField(fields map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
