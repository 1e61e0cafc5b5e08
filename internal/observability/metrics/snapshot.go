package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	diagnosesFamily   = "clinic_cds_diagnosis_requests_total"
	assessmentsFamily = "clinic_cds_risk_assessments_total"
	sideEffectsFamily = "clinic_cds_side_effect_failures_total"
	alertsFamily      = "clinic_cds_risk_alerts_total"
)

// Snapshot summarises the CDS counters since process start.
type Snapshot struct {
	DiagnosesByResult  map[string]int64 `json:"diagnosesByResult"`
	AssessmentsByTier  map[string]int64 `json:"assessmentsByTier"`
	SideEffectFailures map[string]int64 `json:"sideEffectFailures"`
	AlertsByStatus     map[string]int64 `json:"alertsByStatus"`
	TotalDiagnoses     int64            `json:"totalDiagnoses"`
	TotalAssessments   int64            `json:"totalAssessments"`
}

// TakeSnapshot reads the CDS families from gatherer.
func TakeSnapshot(gatherer prometheus.Gatherer) (Snapshot, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	snap := Snapshot{
		DiagnosesByResult:  map[string]int64{},
		AssessmentsByTier:  map[string]int64{},
		SideEffectFailures: map[string]int64{},
		AlertsByStatus:     map[string]int64{},
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap, err
	}
	for _, mf := range mfs {
		if mf == nil {
			continue
		}
		switch mf.GetName() {
		case diagnosesFamily:
			snap.TotalDiagnoses = sumByLabel(mf, "result", snap.DiagnosesByResult)
		case assessmentsFamily:
			snap.TotalAssessments = sumByLabel(mf, "tier", snap.AssessmentsByTier)
		case sideEffectsFamily:
			sumByLabel(mf, "kind", snap.SideEffectFailures)
		case alertsFamily:
			sumByLabel(mf, "status", snap.AlertsByStatus)
		}
	}
	return snap, nil
}

func sumByLabel(mf *dto.MetricFamily, label string, into map[string]int64) int64 {
	var total int64
	for _, metric := range mf.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		v := int64(metric.GetCounter().GetValue())
		total += v
		into[labelValue(metric, label)] += v
	}
	return total
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
