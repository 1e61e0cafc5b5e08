// Package cds wires the symptom matcher and risk scorer to clinic storage,
// audit and alerting.
package cds

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-cds/internal/assessments"
	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
	"github.com/wolfman30/clinic-cds/internal/cds/risk"
	"github.com/wolfman30/clinic-cds/internal/compliance"
	"github.com/wolfman30/clinic-cds/internal/events"
	"github.com/wolfman30/clinic-cds/internal/observability/metrics"
	"github.com/wolfman30/clinic-cds/internal/tenancy"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

var cdsTracer = otel.Tracer("clinic.internal.cds")

// Table sources reported on diagnosis results.
const (
	SourceDefault = "default"
	SourceClinic  = "clinic"
)

// Selection kinds a clinician can copy out of a suggestion.
const (
	SelectionCondition  = "condition"
	SelectionMedication = "medication"
)

// OverrideStore looks up per-clinic symptom tables.
type OverrideStore interface {
	Get(ctx context.Context, clinicID string) (diagnosis.Table, bool, error)
}

// AuditLogger records decision-support activity.
type AuditLogger interface {
	LogDiagnosisSuggested(ctx context.Context, clinicID, actor string, keywords, conditions []string, source string) error
	LogRiskAssessed(ctx context.Context, clinicID, patientID, actor string, score int, overall string, factors []string, assessmentID string) error
	LogSuggestionApplied(ctx context.Context, clinicID, patientID, actor, kind, value, source string) error
}

// HistoryRepository stores assessment snapshots.
type HistoryRepository interface {
	Insert(ctx context.Context, rec assessments.Record) error
	ListForPatient(ctx context.Context, clinicID, patientID string, limit int) ([]assessments.Record, error)
}

// AlertPublisher enqueues critical risk alerts.
type AlertPublisher interface {
	PublishRiskAlert(ctx context.Context, alert events.RiskAlertV1) (uuid.UUID, error)
}

// Options configures a Service. Only the engines are required; nil
// collaborators switch the matching side effect off.
type Options struct {
	Matcher    *diagnosis.Matcher
	Scorer     *risk.Scorer
	Overrides  OverrideStore
	Audit      AuditLogger
	History    HistoryRepository
	Alerts     AlertPublisher
	Metrics    *metrics.CDSMetrics
	Disclaimer compliance.Disclaimer
	Logger     *logging.Logger
}

// Service is safe for concurrent use.
type Service struct {
	matcher    *diagnosis.Matcher
	scorer     *risk.Scorer
	overrides  OverrideStore
	audit      AuditLogger
	history    HistoryRepository
	alerts     AlertPublisher
	metrics    *metrics.CDSMetrics
	disclaimer string
	logger     *logging.Logger
}

// NewService fills in the default matcher and scorer when unset.
func NewService(opts Options) *Service {
	if opts.Matcher == nil {
		opts.Matcher = diagnosis.NewDefaultMatcher()
	}
	if opts.Scorer == nil {
		opts.Scorer = risk.NewDefaultScorer()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Service{
		matcher:    opts.Matcher,
		scorer:     opts.Scorer,
		overrides:  opts.Overrides,
		audit:      opts.Audit,
		history:    opts.History,
		alerts:     opts.Alerts,
		metrics:    opts.Metrics,
		disclaimer: opts.Disclaimer.Text(),
		logger:     opts.Logger.Component("cds"),
	}
}

// DiagnosisResult is returned by SuggestDiagnoses.
type DiagnosisResult struct {
	Symptoms        string                `json:"symptoms"`
	MatchedKeywords []string              `json:"matchedKeywords"`
	Suggestions     []diagnosis.Candidate `json:"suggestions"`
	Source          string                `json:"source"`
	Disclaimer      string                `json:"disclaimer,omitempty"`
}

// SuggestDiagnoses ranks candidate conditions for free-text symptoms using the
// clinic's override table when one exists.
func (s *Service) SuggestDiagnoses(ctx context.Context, clinicID, symptoms string) (DiagnosisResult, error) {
	ctx, span := cdsTracer.Start(ctx, "cds.suggest_diagnoses")
	defer span.End()

	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return DiagnosisResult{}, ErrMissingClinic
	}
	span.SetAttributes(attribute.String("cds.clinic_id", clinicID))

	symptoms = strings.TrimSpace(symptoms)
	if !diagnosis.ValidSymptoms(symptoms) {
		s.metrics.ObserveDiagnosis("rejected", SourceDefault)
		return DiagnosisResult{}, ErrSymptomsTooShort
	}

	matcher, source := s.matcherFor(ctx, clinicID)
	res := matcher.Match(symptoms)

	outcome := "matched"
	if len(res.Candidates) == 0 {
		outcome = "empty"
	}
	s.metrics.ObserveDiagnosis(outcome, source)
	span.SetAttributes(
		attribute.String("cds.table_source", source),
		attribute.Int("cds.suggestions", len(res.Candidates)),
	)

	if s.audit != nil {
		if err := s.audit.LogDiagnosisSuggested(ctx, clinicID, tenancy.ActorFromContext(ctx), res.MatchedKeywords, res.Conditions(), source); err != nil {
			span.RecordError(err)
			s.metrics.ObserveSideEffectFailure("audit")
			s.logger.Error("failed to audit diagnosis suggestion", "error", err, "clinic_id", clinicID)
		}
	}

	return DiagnosisResult{
		Symptoms:        symptoms,
		MatchedKeywords: res.MatchedKeywords,
		Suggestions:     res.Candidates,
		Source:          source,
		Disclaimer:      s.disclaimer,
	}, nil
}

func (s *Service) matcherFor(ctx context.Context, clinicID string) (*diagnosis.Matcher, string) {
	if s.overrides == nil {
		return s.matcher, SourceDefault
	}
	table, found, err := s.overrides.Get(ctx, clinicID)
	if err != nil {
		s.metrics.ObserveSideEffectFailure("overrides")
		s.logger.Warn("symptom table override lookup failed, using default table", "error", err, "clinic_id", clinicID)
		return s.matcher, SourceDefault
	}
	if !found || len(table) == 0 {
		return s.matcher, SourceDefault
	}
	return diagnosis.NewMatcher(table), SourceClinic
}

// ActiveTable returns the table SuggestDiagnoses would use for the clinic.
func (s *Service) ActiveTable(ctx context.Context, clinicID string) (diagnosis.Table, string) {
	matcher, source := s.matcherFor(ctx, clinicID)
	return matcher.Table(), source
}

// AssessRequest is the input to AssessRisk.
type AssessRequest struct {
	ClinicID  string
	PatientID string
	Actor     string
	Patient   risk.PatientInput
}

// AssessResult is returned by AssessRisk. RecordID is set when the
// assessment was stored.
type AssessResult struct {
	Assessment  risk.Assessment `json:"assessment"`
	RecordID    string          `json:"recordId,omitempty"`
	AlertQueued bool            `json:"alertQueued"`
	Disclaimer  string          `json:"disclaimer,omitempty"`
}

// AssessRisk scores the patient. Storage, alert and audit failures are
// logged and never fail the call.
func (s *Service) AssessRisk(ctx context.Context, req AssessRequest) (AssessResult, error) {
	ctx, span := cdsTracer.Start(ctx, "cds.assess_risk")
	defer span.End()

	clinicID := strings.TrimSpace(req.ClinicID)
	if clinicID == "" {
		return AssessResult{}, ErrMissingClinic
	}
	patientID := strings.TrimSpace(req.PatientID)

	assessment := s.scorer.Assess(req.Patient)
	s.metrics.ObserveAssessment(string(assessment.OverallRisk), assessment.RiskScore)
	span.SetAttributes(
		attribute.String("cds.clinic_id", clinicID),
		attribute.Int("cds.risk_score", assessment.RiskScore),
		attribute.String("cds.overall_risk", string(assessment.OverallRisk)),
	)

	out := AssessResult{Assessment: assessment, Disclaimer: s.disclaimer}

	if s.history != nil && patientID != "" {
		rec := assessments.NewRecord(clinicID, patientID, assessment)
		if err := s.history.Insert(ctx, rec); err != nil {
			span.RecordError(err)
			s.metrics.ObserveSideEffectFailure("history")
			s.logger.Error("failed to store risk assessment", "error", err, "clinic_id", clinicID, "patient_id", patientID)
		} else {
			out.RecordID = rec.ID.String()
		}
	}

	if assessment.OverallRisk == risk.LevelCritical && s.alerts != nil {
		_, err := s.alerts.PublishRiskAlert(ctx, events.RiskAlertV1{
			AssessmentID: out.RecordID,
			ClinicID:     clinicID,
			PatientID:    patientID,
			RiskScore:    assessment.RiskScore,
			OverallRisk:  string(assessment.OverallRisk),
			Factors:      assessment.FactorLabels(),
		})
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveAlert("failed")
			s.logger.Error("failed to enqueue risk alert", "error", err, "clinic_id", clinicID, "patient_id", patientID)
		} else {
			s.metrics.ObserveAlert("queued")
			out.AlertQueued = true
		}
	}

	if s.audit != nil {
		if err := s.audit.LogRiskAssessed(ctx, clinicID, patientID, req.Actor, assessment.RiskScore,
			string(assessment.OverallRisk), assessment.FactorLabels(), out.RecordID); err != nil {
			span.RecordError(err)
			s.metrics.ObserveSideEffectFailure("audit")
			s.logger.Error("failed to audit risk assessment", "error", err, "clinic_id", clinicID)
		}
	}

	s.logger.Debug("risk assessed", "clinic_id", clinicID, "risk_score", assessment.RiskScore,
		"overall_risk", assessment.OverallRisk, "factors", len(assessment.Factors))
	return out, nil
}

// Selection is a suggestion a clinician copied into a patient record.
type Selection struct {
	ClinicID  string `json:"-"`
	PatientID string `json:"patientId,omitempty"`
	Actor     string `json:"-"`
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	Source    string `json:"source,omitempty"`
}

// RecordSelection audits an applied suggestion. The record itself is written
// by the caller's patient store; this only leaves the trail.
func (s *Service) RecordSelection(ctx context.Context, sel Selection) error {
	ctx, span := cdsTracer.Start(ctx, "cds.record_selection")
	defer span.End()

	clinicID := strings.TrimSpace(sel.ClinicID)
	if clinicID == "" {
		return ErrMissingClinic
	}
	kind := strings.ToLower(strings.TrimSpace(sel.Kind))
	if kind != SelectionCondition && kind != SelectionMedication {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSelection, sel.Kind)
	}
	value := strings.TrimSpace(sel.Value)
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidSelection)
	}
	if s.audit == nil {
		return nil
	}
	if err := s.audit.LogSuggestionApplied(ctx, clinicID, strings.TrimSpace(sel.PatientID), sel.Actor, kind, value, strings.TrimSpace(sel.Source)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("cds: record selection: %w", err)
	}
	return nil
}

// ListAssessments returns stored assessments for a patient, newest first.
func (s *Service) ListAssessments(ctx context.Context, clinicID, patientID string, limit int) ([]assessments.Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return nil, ErrMissingClinic
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrMissingPatient
	}
	records, err := s.history.ListForPatient(ctx, clinicID, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("cds: list assessments: %w", err)
	}
	return records, nil
}

// HistoryEnabled reports whether assessments are stored.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}
