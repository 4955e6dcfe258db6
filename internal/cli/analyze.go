package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/crux"
	"pagespeed-campaign/internal/report"
	"pagespeed-campaign/internal/shared/storage/object/local"
)

const apiKeyHelp = `PageSpeed Insights API key not found.

Provide one of:
  --api-key <key>
  PAGESPEED_INSIGHTS_API_KEY or PSC_API_KEY in the environment (or .env)
  api-key: <key> in the --config file

Create a key at https://developers.google.com/speed/docs/insights/v5/get-started`

func (a *app) analyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a website and write the campaign report",
		Example: `  analyzer analyze --url example.com
  analyzer analyze --url https://example.com --device desktop --crux --weeks 10 --open
  analyzer analyze --url example.com --output-json campaign.json
  analyzer analyze --interactive
  analyzer analyze --from-file reports/azion_marketing_data_20261016_120000.json --format html`,
		Args: cobra.NoArgs,
		RunE: a.runAnalyze,
	}

	outDir := a.deps.Config.ReportsDir
	if outDir == "" {
		outDir = "reports"
	}

	f := cmd.Flags()
	f.String("url", "", "website URL to analyze")
	f.String("device", analyses.DeviceMobile, "device type (mobile, desktop, tablet)")
	f.Bool("crux", false, "include CrUX History field data")
	f.Int("weeks", crux.DefaultPeriods, "CrUX history weeks (1-40)")
	f.BoolP("interactive", "i", false, "guided setup")
	f.Bool("open", false, "open the HTML report in a browser")
	f.Bool("save-json", false, "also save marketing data as JSON next to the HTML report")
	f.String("output-json", "", "also save marketing data as JSON to this path")
	f.StringSlice("format", []string{string(report.FormatHTML)}, "report formats to write (html, json, yaml)")
	f.String("out-dir", outDir, "directory reports are written to")
	f.String("from-file", "", "re-render a saved JSON report instead of calling the APIs")
	bindFlags(a.v, f)

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cat, err := a.catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	formats, err := a.formats()
	if err != nil {
		return err
	}
	outDir := a.v.GetString("out-dir")

	svc := &analyses.Service{
		PageSpeed:     a.deps.PageSpeed,
		CrUX:          a.deps.CrUX,
		Engine:        campaign.NewEngine(cat),
		Store:         local.New(outDir),
		Formats:       formats,
		DefaultAPIKey: a.apiKey(),
		Key:           analyses.FlatKey,
		Now:           a.deps.Now,
	}

	var (
		res  *analyses.Result
		open = a.v.GetBool("open")
	)
	if from := strings.TrimSpace(a.v.GetString("from-file")); from != "" {
		raw, err := os.ReadFile(from)
		if err != nil {
			return err
		}
		doc, err := report.Decode(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", from, err)
		}
		fmt.Fprintf(out, "\nRe-rendering %s (%s)...\n", doc.URL, doc.Device)
		if res, err = svc.Rerender(ctx, doc); err != nil {
			return err
		}
	} else {
		req, openAnswer, err := a.request(cmd)
		if err != nil {
			return err
		}
		open = open || openAnswer

		req, err = req.Normalize(svc.DefaultAPIKey)
		if errors.Is(err, analyses.ErrMissingAPIKey) {
			return errors.New(apiKeyHelp)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\nAnalyzing %s (%s)...\n", req.URL, req.Device)
		if res, err = svc.Run(ctx, req); err != nil {
			return err
		}
	}

	files := make([]string, 0, len(res.Reports)+1)
	for _, r := range res.Reports {
		files = append(files, filepath.Join(outDir, filepath.FromSlash(r.Key)))
	}
	if path := strings.TrimSpace(a.v.GetString("output-json")); path != "" {
		data, err := report.Render(report.FormatJSON, res.Document)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}

	printSummary(out, res, files)

	if open {
		a.openReport(cmd, outDir, res)
	}
	return nil
}

// request builds the analysis request from flags or the guided setup. The
// second value reports whether the user asked to open the report.
func (a *app) request(cmd *cobra.Command) (analyses.Request, bool, error) {
	req := analyses.Request{
		URL:     strings.TrimSpace(a.v.GetString("url")),
		Device:  a.v.GetString("device"),
		UseCrUX: a.v.GetBool("crux"),
		Weeks:   a.v.GetInt("weeks"),
	}

	if a.v.GetBool("interactive") {
		ans, err := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).guidedSetup()
		if err != nil {
			return analyses.Request{}, false, err
		}
		req.URL = ans.URL
		req.UseCrUX = ans.UseCrUX
		req.Device = ans.Device
		req.Weeks = ans.Weeks
		return req, ans.Open, nil
	}

	if req.URL == "" {
		return analyses.Request{}, false, errors.New("URL required. Use --interactive for guided setup or --url <website>")
	}
	return req, false, nil
}

func (a *app) formats() ([]report.Format, error) {
	var out []report.Format
	seen := map[report.Format]bool{}
	add := func(f report.Format) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, raw := range a.v.GetStringSlice("format") {
		f, err := report.ParseFormat(raw)
		if err != nil {
			return nil, err
		}
		add(f)
	}
	if a.v.GetBool("save-json") {
		add(report.FormatJSON)
	}
	if len(out) == 0 {
		add(report.FormatHTML)
	}
	return out, nil
}

func (a *app) openReport(cmd *cobra.Command, outDir string, res *analyses.Result) {
	saved, ok := res.Report(report.FormatHTML)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "no HTML report to open")
		return
	}
	target, err := fileURL(filepath.Join(outDir, filepath.FromSlash(saved.Key)))
	if err == nil {
		err = a.deps.Open(target)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not open report: %v\n", err)
	}
}
