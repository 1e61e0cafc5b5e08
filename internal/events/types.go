package events

import "time"

// EventRiskCritical is enqueued when an assessment lands in the critical tier.
const EventRiskCritical = "cds.risk.critical"

// RiskAlertV1 is the payload of EventRiskCritical.
type RiskAlertV1 struct {
	EventID      string    `json:"event_id"`
	AssessmentID string    `json:"assessment_id,omitempty"`
	ClinicID     string    `json:"clinic_id"`
	PatientID    string    `json:"patient_id,omitempty"`
	RiskScore    int       `json:"risk_score"`
	OverallRisk  string    `json:"overall_risk"`
	Factors      []string  `json:"factors"`
	AssessedAt   time.Time `json:"assessed_at"`
}
