package crux

import (
	"strings"
)

// Metric is a CrUX metric key.
type Metric string

const (
	LargestContentfulPaint Metric = "largest_contentful_paint"
	FirstContentfulPaint   Metric = "first_contentful_paint"
	CumulativeLayoutShift  Metric = "cumulative_layout_shift"
	InteractionToNextPaint Metric = "interaction_to_next_paint"
	TimeToFirstByte        Metric = "experimental_time_to_first_byte"
)

// Metrics lists the metrics requested from CrUX, in display order.
var Metrics = []Metric{
	LargestContentfulPaint,
	FirstContentfulPaint,
	CumulativeLayoutShift,
	InteractionToNextPaint,
	TimeToFirstByte,
}

// Threshold holds the upper bounds of the good and needs-improvement bands.
type Threshold struct {
	Good float64 `json:"good"`
	Poor float64 `json:"poor"`
}

type metricInfo struct {
	short     string
	display   string
	unit      string
	threshold Threshold
}

var metricTable = map[Metric]metricInfo{
	LargestContentfulPaint: {short: "LCP", display: "Largest Contentful Paint (LCP)", unit: "ms", threshold: Threshold{Good: 2500, Poor: 4000}},
	FirstContentfulPaint:   {short: "FCP", display: "First Contentful Paint (FCP)", unit: "ms", threshold: Threshold{Good: 1800, Poor: 3000}},
	CumulativeLayoutShift:  {short: "CLS", display: "Cumulative Layout Shift (CLS)", unit: "", threshold: Threshold{Good: 0.1, Poor: 0.25}},
	InteractionToNextPaint: {short: "INP", display: "Interaction to Next Paint (INP)", unit: "ms", threshold: Threshold{Good: 200, Poor: 500}},
	TimeToFirstByte:        {short: "TTFB", display: "Time to First Byte (TTFB)", unit: "ms", threshold: Threshold{Good: 800, Poor: 1800}},
}

// Known reports whether m has thresholds.
func (m Metric) Known() bool {
	_, ok := metricTable[m]
	return ok
}

// Threshold returns the good/poor bounds of m.
func (m Metric) Threshold() (Threshold, bool) {
	info, ok := metricTable[m]
	return info.threshold, ok
}

// ShortName returns the abbreviation, e.g. LCP.
func (m Metric) ShortName() string {
	if info, ok := metricTable[m]; ok {
		return info.short
	}
	return strings.ToUpper(string(m))
}

// DisplayName returns the long label, e.g. "Largest Contentful Paint (LCP)".
func (m Metric) DisplayName() string {
	if info, ok := metricTable[m]; ok {
		return info.display
	}
	return string(m)
}

// Unit is "ms" for timing metrics and empty for CLS.
func (m Metric) Unit() string {
	return metricTable[m].unit
}

// FormFactor is the CrUX device class.
type FormFactor string

const (
	FormFactorPhone   FormFactor = "PHONE"
	FormFactorDesktop FormFactor = "DESKTOP"
	FormFactorTablet  FormFactor = "TABLET"
)

// FormFactorForDevice maps an analyzer device name to a CrUX form factor.
func FormFactorForDevice(device string) FormFactor {
	switch strings.ToLower(strings.TrimSpace(device)) {
	case "desktop":
		return FormFactorDesktop
	case "tablet":
		return FormFactorTablet
	default:
		return FormFactorPhone
	}
}
