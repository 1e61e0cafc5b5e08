package metrics

import "github.com/prometheus/client_golang/prometheus"

// CDSMetrics exposes counters/histograms for decision-support flows.
type CDSMetrics struct {
	diagnosesTotal   *prometheus.CounterVec
	assessmentsTotal *prometheus.CounterVec
	riskScore        prometheus.Histogram
	sideEffectErrors *prometheus.CounterVec
	alertsTotal      *prometheus.CounterVec
}

func NewCDSMetrics(reg prometheus.Registerer) *CDSMetrics {
	m := &CDSMetrics{
		diagnosesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "cds",
			Name:      "diagnosis_requests_total",
			Help:      "Symptom match requests by outcome and table source",
		}, []string{"result", "source"}),
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "cds",
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by overall tier",
		}, []string{"tier"}),
		riskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "cds",
			Name:      "risk_score",
			Help:      "Distribution of risk scores",
			Buckets:   []float64{0, 10, 25, 50, 70, 90, 100},
		}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "cds",
			Name:      "side_effect_failures_total",
			Help:      "Audit, history and alert writes that failed without failing the request",
		}, []string{"kind"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "cds",
			Name:      "risk_alerts_total",
			Help:      "Critical risk alerts enqueued",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.diagnosesTotal, m.assessmentsTotal, m.riskScore, m.sideEffectErrors, m.alertsTotal)
	return m
}

// ObserveDiagnosis records a match request. result is matched, empty or rejected.
func (m *CDSMetrics) ObserveDiagnosis(result, source string) {
	if m == nil {
		return
	}
	m.diagnosesTotal.WithLabelValues(result, source).Inc()
}

func (m *CDSMetrics) ObserveAssessment(tier string, score int) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(tier).Inc()
	m.riskScore.Observe(float64(score))
}

func (m *CDSMetrics) ObserveSideEffectFailure(kind string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(kind).Inc()
}

func (m *CDSMetrics) ObserveAlert(status string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(status).Inc()
}
