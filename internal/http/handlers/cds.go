package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-cds/internal/assessments"
	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
	"github.com/wolfman30/clinic-cds/internal/cds/risk"
	"github.com/wolfman30/clinic-cds/internal/tenancy"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// CDSService is the part of cds.Service the tenant endpoints use.
type CDSService interface {
	SuggestDiagnoses(ctx context.Context, clinicID, symptoms string) (cds.DiagnosisResult, error)
	AssessRisk(ctx context.Context, req cds.AssessRequest) (cds.AssessResult, error)
	RecordSelection(ctx context.Context, sel cds.Selection) error
	ListAssessments(ctx context.Context, clinicID, patientID string, limit int) ([]assessments.Record, error)
	ActiveTable(ctx context.Context, clinicID string) (diagnosis.Table, string)
}

// CDSHandler serves the clinician-facing decision-support endpoints.
type CDSHandler struct {
	svc    CDSService
	logger *logging.Logger
}

// NewCDSHandler creates a new handler.
func NewCDSHandler(svc CDSService, logger *logging.Logger) *CDSHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CDSHandler{svc: svc, logger: logger}
}

type diagnosisRequest struct {
	Symptoms string `json:"symptoms"`
}

// SuggestDiagnoses ranks candidate conditions for free-text symptoms.
// POST /cds/diagnoses
func (h *CDSHandler) SuggestDiagnoses(w http.ResponseWriter, r *http.Request) {
	var req diagnosisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.svc.SuggestDiagnoses(r.Context(), clinicFromRequest(r), req.Symptoms)
	if err != nil {
		h.fail(w, "suggest diagnoses", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type assessRequest struct {
	PatientID string            `json:"patientId"`
	Patient   risk.PatientInput `json:"patient"`
}

// AssessRisk scores a patient.
// POST /cds/risk-assessments
func (h *CDSHandler) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.svc.AssessRisk(r.Context(), cds.AssessRequest{
		ClinicID:  clinicFromRequest(r),
		PatientID: req.PatientID,
		Actor:     tenancy.ActorFromContext(r.Context()),
		Patient:   req.Patient,
	})
	if err != nil {
		h.fail(w, "assess risk", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecordSelection audits a suggestion the clinician applied to a record.
// POST /cds/selections
func (h *CDSHandler) RecordSelection(w http.ResponseWriter, r *http.Request) {
	var sel cds.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel.ClinicID = clinicFromRequest(r)
	sel.Actor = tenancy.ActorFromContext(r.Context())
	if err := h.svc.RecordSelection(r.Context(), sel); err != nil {
		h.fail(w, "record selection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAssessments returns stored assessments for a patient, newest first.
// GET /cds/patients/{patientID}/risk-assessments?limit=
func (h *CDSHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", assessments.DefaultListLimit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	patientID := strings.TrimSpace(chi.URLParam(r, "patientID"))
	records, err := h.svc.ListAssessments(r.Context(), clinicFromRequest(r), patientID, assessments.ClampLimit(limit))
	if err != nil {
		h.fail(w, "list assessments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"patientId":   patientID,
		"assessments": records,
	})
}

// SymptomTable returns the table the matcher uses for this clinic.
// GET /cds/symptom-table
func (h *CDSHandler) SymptomTable(w http.ResponseWriter, r *http.Request) {
	table, source := h.svc.ActiveTable(r.Context(), clinicFromRequest(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"source":   source,
		"keywords": table.Keywords(),
		"symptoms": table,
	})
}

func (h *CDSHandler) fail(w http.ResponseWriter, op string, err error) {
	status, msg := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("cds request failed", "op", op, "error", err)
	}
	jsonError(w, msg, status)
}
