package crux

import "math"

// Status classifies a metric value against its thresholds.
type Status string

const (
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs_improvement"
	StatusPoor             Status = "poor"
)

// Severity of an assessment finding.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// MetricAssessment is the scored latest value of one metric.
type MetricAssessment struct {
	Metric        Metric  `json:"name"`
	DisplayName   string  `json:"displayName"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit"`
	Status        Status  `json:"status"`
	Score         float64 `json:"score"`
	ThresholdGood float64 `json:"thresholdGood"`
	ThresholdPoor float64 `json:"thresholdPoor"`
}

// Finding is a metric outside the good band.
type Finding struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Severity  string  `json:"severity"`
}

// Assessment scores the latest values of a Processed record.
type Assessment struct {
	OverallScore float64            `json:"overallScore"`
	Metrics      []MetricAssessment `json:"metricsAssessment"`
	Issues       []Finding          `json:"issues"`
	Strengths    []string           `json:"strengths"`
}

// Classify scores value against the thresholds of m. Values at the good
// threshold are good and values at the poor threshold still need
// improvement. Unknown metrics classify as good.
func Classify(m Metric, value float64) (Status, float64) {
	t, ok := m.Threshold()
	if !ok {
		return StatusGood, 100
	}
	return classify(t, value)
}

func classify(t Threshold, value float64) (Status, float64) {
	switch {
	case value <= t.Good:
		return StatusGood, 100
	case value <= t.Poor:
		position := (value - t.Good) / (t.Poor - t.Good)
		return StatusNeedsImprovement, 75 - position*50
	default:
		return StatusPoor, math.Max(0, 25-(value-t.Poor)/t.Poor*25)
	}
}

// Assess scores each known metric with a latest value. It returns nil when
// no metric has data.
func Assess(p *Processed) *Assessment {
	if p == nil || len(p.Metrics) == 0 {
		return nil
	}
	a := &Assessment{
		Metrics:   []MetricAssessment{},
		Issues:    []Finding{},
		Strengths: []string{},
	}
	total := 0.0
	for _, s := range p.Metrics {
		t, ok := s.Metric.Threshold()
		if !ok {
			continue
		}
		value, ok := s.Latest()
		if !ok {
			continue
		}
		status, score := classify(t, value)
		ma := MetricAssessment{
			Metric:        s.Metric,
			DisplayName:   s.Metric.DisplayName(),
			Value:         value,
			Unit:          s.Metric.Unit(),
			Status:        status,
			Score:         score,
			ThresholdGood: t.Good,
			ThresholdPoor: t.Poor,
		}
		a.Metrics = append(a.Metrics, ma)
		total += score

		switch status {
		case StatusPoor:
			a.Issues = append(a.Issues, Finding{Metric: ma.DisplayName, Value: value, Threshold: t.Good, Severity: SeverityHigh})
		case StatusNeedsImprovement:
			a.Issues = append(a.Issues, Finding{Metric: ma.DisplayName, Value: value, Threshold: t.Good, Severity: SeverityMedium})
		default:
			a.Strengths = append(a.Strengths, ma.DisplayName)
		}
	}
	if len(a.Metrics) == 0 {
		return nil
	}
	a.OverallScore = total / float64(len(a.Metrics))
	return a
}
