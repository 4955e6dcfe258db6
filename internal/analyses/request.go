package analyses

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"pagespeed-campaign/internal/crux"
)

var (
	// ErrInvalidRequest wraps every validation failure of a Request.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrMissingAPIKey is returned when neither the request nor the service
	// configuration carries a PageSpeed Insights key.
	ErrMissingAPIKey = errors.New("pagespeed insights api key is required")
)

// Devices accepted by the analyzer.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
)

// Request describes one analysis run.
type Request struct {
	URL     string `json:"url"`
	Device  string `json:"device"`
	UseCrUX bool   `json:"useCrux"`
	Weeks   int    `json:"weeks"`
	APIKey  string `json:"apiKey,omitempty"`
}

// Normalize fills defaults and validates the request. Bare hosts get an
// https scheme, the device defaults to mobile and weeks are clamped to the
// CrUX range. fallbackKey is used when the request has no API key.
func (r Request) Normalize(fallbackKey string) (Request, error) {
	out := r
	u, err := NormalizeURL(r.URL)
	if err != nil {
		return Request{}, err
	}
	out.URL = u

	out.Device = strings.ToLower(strings.TrimSpace(r.Device))
	switch out.Device {
	case "":
		out.Device = DeviceMobile
	case DeviceMobile, DeviceDesktop, DeviceTablet:
	default:
		return Request{}, fmt.Errorf("%w: unsupported device %q", ErrInvalidRequest, r.Device)
	}

	if out.Weeks == 0 {
		out.Weeks = crux.DefaultPeriods
	}
	out.Weeks = crux.ClampWeeks(out.Weeks)

	out.APIKey = strings.TrimSpace(r.APIKey)
	if out.APIKey == "" {
		out.APIKey = strings.TrimSpace(fallbackKey)
	}
	if out.APIKey == "" {
		return Request{}, ErrMissingAPIKey
	}
	return out, nil
}

// NormalizeURL prefixes https:// when no scheme is given and checks the
// result is an absolute http(s) URL with a host.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", fmt.Errorf("%w: url %q has no host", ErrInvalidRequest, raw)
	}
	return s, nil
}
