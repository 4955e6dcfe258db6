package report

import (
	"net"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"pagespeed-campaign/internal/shared/util"
)

const (
	stampLayout = "20060102_150405"
	keyRoot     = "reports"
)

// HTMLFileName is azion_analysis_{device}_{YYYYMMDD_HHMMSS}.html.
func HTMLFileName(device string, ts time.Time) string {
	return "azion_analysis_" + device + "_" + ts.Format(stampLayout) + ".html"
}

// DataFileName is azion_marketing_data_{YYYYMMDD_HHMMSS}.{ext}.
func DataFileName(f Format, ts time.Time) string {
	return "azion_marketing_data_" + ts.Format(stampLayout) + "." + string(f)
}

// FileName picks the output name for a format.
func FileName(f Format, device string, ts time.Time) string {
	if f == FormatHTML {
		return HTMLFileName(device, ts)
	}
	return DataFileName(f, ts)
}

// RegistrableDomain returns the eTLD+1 of rawURL, falling back to the bare
// host for IPs, localhost and unknown suffixes.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "unknown"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "unknown"
	}
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// KeyPrefix is reports/{registrable-domain}.
func KeyPrefix(rawURL string) string {
	return path.Join(keyRoot, RegistrableDomain(rawURL))
}

// Key places fileName under the page folder of a run:
// reports/{domain}/{page-hash}-{run}/{fileName}.
func Key(rawURL, runID, fileName string) string {
	folder := util.ShortHash(rawURL)
	if runID != "" {
		folder += "-" + runID
	}
	return path.Join(KeyPrefix(rawURL), folder, fileName)
}
