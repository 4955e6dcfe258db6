package crux

import (
	"encoding/json"
	"sort"
	"time"

	"pagespeed-campaign/internal/shared/util"
)

// Series is the p75 history of one metric, optionally ending with the lab
// value measured by PageSpeed.
type Series struct {
	Metric    Metric  `json:"-"`
	P75       []Value `json:"p75"`
	Histogram []Bin   `json:"histogram"`
}

// Latest returns the last p75 value when it is present.
func (s Series) Latest() (float64, bool) {
	if len(s.P75) == 0 {
		return 0, false
	}
	last := s.P75[len(s.P75)-1]
	return last.Float, last.Valid
}

// SeriesList serializes as an object keyed by metric, in order.
type SeriesList []Series

func (l SeriesList) MarshalJSON() ([]byte, error) {
	return util.EncodeObject(len(l), func(i int) (string, any) {
		return string(l[i].Metric), l[i]
	})
}

func (l *SeriesList) UnmarshalJSON(data []byte) error {
	*l = SeriesList{}
	return util.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var s Series
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s.Metric = Metric(key)
		*l = append(*l, s)
		return nil
	})
}

// Get returns the series for m.
func (l SeriesList) Get(m Metric) (Series, bool) {
	for _, s := range l {
		if s.Metric == m {
			return s, true
		}
	}
	return Series{}, false
}

// Processed is the chart-ready merge of CrUX history and PageSpeed lab data.
type Processed struct {
	Dates            []string   `json:"dates"`
	Metrics          SeriesList `json:"metrics"`
	HasPageSpeedData bool       `json:"hasPagespeedData"`
	HasCrUXData      bool       `json:"hasCruxData"`
}

// Process merges a History record with PageSpeed core vitals measured at now.
// It returns nil when the history is a fallback and there are no vitals.
func Process(h *History, vitals map[Metric]float64, now time.Time) *Processed {
	if h == nil {
		h = EmptyHistory("", "", "")
	}
	if h.Err != "" && len(vitals) == 0 {
		return nil
	}

	p := &Processed{
		Dates:            make([]string, 0, len(h.Record.CollectionPeriods)+1),
		Metrics:          SeriesList{},
		HasPageSpeedData: len(vitals) > 0,
		HasCrUXData:      len(h.Record.Metrics) > 0,
	}
	for _, period := range h.Record.CollectionPeriods {
		p.Dates = append(p.Dates, period.LastDate.String())
	}
	if p.HasPageSpeedData {
		p.Dates = append(p.Dates, now.Format(time.DateOnly))
	}

	for _, m := range metricOrder(h.Record.Metrics, vitals) {
		ts, inHistory := h.Record.Metrics[m]
		s := Series{
			Metric:    m,
			P75:       append([]Value{}, ts.PercentilesTimeseries.P75s...),
			Histogram: ts.HistogramTimeseries,
		}
		if s.Histogram == nil {
			s.Histogram = []Bin{}
		}
		if v, ok := vitals[m]; ok {
			s.P75 = append(s.P75, V(v))
		}
		if !inHistory && len(s.P75) == 0 {
			continue
		}
		p.Metrics = append(p.Metrics, s)
	}
	return p
}

// metricOrder lists the known metrics first, then any others by name.
func metricOrder(history map[Metric]Timeseries, vitals map[Metric]float64) []Metric {
	out := make([]Metric, 0, len(history)+len(vitals))
	seen := make(map[Metric]struct{})
	for _, m := range Metrics {
		_, inHistory := history[m]
		_, inVitals := vitals[m]
		if inHistory || inVitals {
			out = append(out, m)
			seen[m] = struct{}{}
		}
	}
	var extra []Metric
	for m := range history {
		if _, ok := seen[m]; !ok {
			extra = append(extra, m)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
