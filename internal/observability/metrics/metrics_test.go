package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCDSMetricsSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCDSMetrics(reg)

	m.ObserveDiagnosis("matched", "default")
	m.ObserveDiagnosis("matched", "clinic")
	m.ObserveDiagnosis("empty", "default")
	m.ObserveAssessment("critical", 90)
	m.ObserveAssessment("low", 0)
	m.ObserveAssessment("low", 10)
	m.ObserveSideEffectFailure("audit")
	m.ObserveAlert("queued")

	snap, err := TakeSnapshot(reg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.TotalDiagnoses)
	assert.Equal(t, int64(2), snap.DiagnosesByResult["matched"])
	assert.Equal(t, int64(1), snap.DiagnosesByResult["empty"])
	assert.Equal(t, int64(3), snap.TotalAssessments)
	assert.Equal(t, int64(2), snap.AssessmentsByTier["low"])
	assert.Equal(t, int64(1), snap.SideEffectFailures["audit"])
	assert.Equal(t, int64(1), snap.AlertsByStatus["queued"])
}

func TestCDSMetricsRiskScoreHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCDSMetrics(reg)
	m.ObserveAssessment("critical", 90)
	m.ObserveAssessment("medium", 45)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var hist *dto.Histogram
	for _, mf := range mfs {
		if mf.GetName() == "clinic_cds_risk_score" {
			hist = mf.Metric[0].GetHistogram()
		}
	}
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 135.0, hist.GetSampleSum(), 0.001)
}

func TestCDSMetricsNilSafe(t *testing.T) {
	var m *CDSMetrics
	m.ObserveDiagnosis("matched", "default")
	m.ObserveAssessment("low", 0)
	m.ObserveSideEffectFailure("audit")
	m.ObserveAlert("queued")
}

type failingGatherer struct{}

func (failingGatherer) Gather() ([]*dto.MetricFamily, error) {
	return nil, errors.New("gather failed")
}

func TestTakeSnapshotError(t *testing.T) {
	snap, err := TakeSnapshot(failingGatherer{})
	assert.Error(t, err)
	assert.NotNil(t, snap.AssessmentsByTier)
}
