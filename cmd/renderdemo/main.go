package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/report"
)

// renderdemo renders every report format from a saved runPagespeed response,
// without calling any API.
func main() {
	psiPath := flag.String("psi", "./internal/pagespeed/testdata/runpagespeed_mobile.json", "saved runPagespeed response")
	outDir := flag.String("out", "./out", "output directory")
	device := flag.String("device", "mobile", "device label for the report")
	flag.Parse()

	doc, err := buildDocument(*psiPath, *device, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	for _, f := range []report.Format{report.FormatHTML, report.FormatJSON, report.FormatYAML} {
		out, err := report.Render(f, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", f, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, report.FileName(f, doc.Device, doc.Timestamp))
		if err := os.WriteFile(path, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}
}

func buildDocument(psiPath, device string, now time.Time) (report.Document, error) {
	raw, err := os.ReadFile(psiPath)
	if err != nil {
		return report.Document{}, err
	}
	var result pagespeed.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return report.Document{}, fmt.Errorf("parse %s: %w", psiPath, err)
	}
	cat, err := catalog.Default()
	if err != nil {
		return report.Document{}, err
	}

	url := result.LighthouseResult.RequestedURL
	if url == "" {
		url = result.ID
	}
	a := pagespeed.Extract(&result)
	data := campaign.NewEngine(cat).Aggregate(a)
	return report.Document{
		URL:       url,
		Device:    device,
		Timestamp: now,
		Analysis:  a,
		Campaign:  data,
		Pitch:     campaign.FormatPitch(data, url),
	}, nil
}
