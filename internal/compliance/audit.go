// Package compliance records the clinical decision-support audit trail and
// the disclaimer attached to suggestions.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditEventType represents the type of compliance event.
type AuditEventType string

const (
	// EventDiagnosisSuggested is logged when the matcher returns suggestions.
	EventDiagnosisSuggested AuditEventType = "cds.diagnosis_suggested"
	// EventRiskAssessed is logged for every risk assessment.
	EventRiskAssessed AuditEventType = "cds.risk_assessed"
	// EventSuggestionApplied is logged when a clinician copies a suggestion into a record.
	EventSuggestionApplied AuditEventType = "cds.suggestion_applied"
	// EventKnowledgeUpdated is logged when a clinic symptom table is replaced or removed.
	EventKnowledgeUpdated AuditEventType = "cds.knowledge_updated"
)

// AuditEvent represents an immutable compliance audit record.
type AuditEvent struct {
	ID        string          `json:"id"`
	EventType AuditEventType  `json:"event_type"`
	ClinicID  string          `json:"clinic_id"`
	PatientID string          `json:"patient_id,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditDetails contains event-specific details. Patient free text is never
// stored; only derived labels are.
type AuditDetails struct {
	// For diagnosis suggested
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
	TableSource     string   `json:"table_source,omitempty"`

	// For risk assessed
	RiskScore    *int     `json:"risk_score,omitempty"`
	OverallRisk  string   `json:"overall_risk,omitempty"`
	Factors      []string `json:"factors,omitempty"`
	AssessmentID string   `json:"assessment_id,omitempty"`

	// For suggestion applied
	SelectionKind  string `json:"selection_kind,omitempty"`
	SelectionValue string `json:"selection_value,omitempty"`
	SelectionFrom  string `json:"selection_source,omitempty"`

	// For knowledge updated
	Action   string `json:"action,omitempty"`
	Keywords int    `json:"keywords,omitempty"`
}

// AuditService handles compliance audit logging.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// LogEvent records a compliance audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	if len(event.Details) == 0 {
		event.Details = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO cds_audit_events (
			id, event_type, clinic_id, patient_id, actor, tags, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.ClinicID,
		nullString(event.PatientID),
		nullString(event.Actor),
		pq.Array(event.Tags),
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}

	return nil
}

// LogDiagnosisSuggested records which keywords matched and which conditions
// were suggested. The symptom text itself is not stored.
func (s *AuditService) LogDiagnosisSuggested(ctx context.Context, clinicID, actor string, keywords, conditions []string, source string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{
		MatchedKeywords: keywords,
		Suggestions:     conditions,
		TableSource:     source,
	})

	return s.LogEvent(ctx, AuditEvent{
		EventType: EventDiagnosisSuggested,
		ClinicID:  clinicID,
		Actor:     actor,
		Tags:      keywords,
		Details:   detailsJSON,
	})
}

// LogRiskAssessed records the outcome of a risk assessment.
func (s *AuditService) LogRiskAssessed(ctx context.Context, clinicID, patientID, actor string, score int, overall string, factors []string, assessmentID string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{
		RiskScore:    &score,
		OverallRisk:  overall,
		Factors:      factors,
		AssessmentID: assessmentID,
	})

	return s.LogEvent(ctx, AuditEvent{
		EventType: EventRiskAssessed,
		ClinicID:  clinicID,
		PatientID: patientID,
		Actor:     actor,
		Tags:      []string{overall},
		Details:   detailsJSON,
	})
}

// LogSuggestionApplied records a clinician accepting a condition or medication.
func (s *AuditService) LogSuggestionApplied(ctx context.Context, clinicID, patientID, actor, kind, value, source string) error {
	detailsJSON, _ := json.Marshal(AuditDetails{
		SelectionKind:  kind,
		SelectionValue: value,
		SelectionFrom:  source,
	})

	return s.LogEvent(ctx, AuditEvent{
		EventType: EventSuggestionApplied,
		ClinicID:  clinicID,
		PatientID: patientID,
		Actor:     actor,
		Tags:      []string{kind},
		Details:   detailsJSON,
	})
}

// LogKnowledgeUpdated records a symptom table change for a clinic.
func (s *AuditService) LogKnowledgeUpdated(ctx context.Context, clinicID, actor, action string, keywords int) error {
	detailsJSON, _ := json.Marshal(AuditDetails{
		Action:   action,
		Keywords: keywords,
	})

	return s.LogEvent(ctx, AuditEvent{
		EventType: EventKnowledgeUpdated,
		ClinicID:  clinicID,
		Actor:     actor,
		Tags:      []string{action},
		Details:   detailsJSON,
	})
}

// QueryEvents retrieves audit events with filters.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	query := `
		SELECT id, event_type, clinic_id, patient_id, actor, tags, details, created_at
		FROM cds_audit_events
		WHERE clinic_id = $1
	`
	args := []interface{}{filter.ClinicID}
	argIdx := 2

	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", argIdx)
		args = append(args, filter.PatientID)
		argIdx++
	}
	if filter.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argIdx)
		args = append(args, filter.EventType)
		argIdx++
	}
	if filter.Tag != "" {
		query += fmt.Sprintf(" AND $%d = ANY(tags)", argIdx)
		args = append(args, filter.Tag)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []AuditEvent{}
	for rows.Next() {
		var e AuditEvent
		var patientID, actor sql.NullString
		var details []byte
		err := rows.Scan(
			&e.ID, &e.EventType, &e.ClinicID, &patientID, &actor,
			pq.Array(&e.Tags), &details, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.PatientID = patientID.String
		e.Actor = actor.String
		e.Details = json.RawMessage(details)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to iterate audit events: %w", err)
	}

	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	ClinicID  string
	PatientID string
	EventType AuditEventType
	Tag       string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
