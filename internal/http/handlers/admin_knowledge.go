package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	"github.com/wolfman30/clinic-cds/internal/tenancy"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// SymptomTableStore holds per-clinic symptom table overrides.
type SymptomTableStore interface {
	Get(ctx context.Context, clinicID string) (diagnosis.Table, bool, error)
	Set(ctx context.Context, clinicID string, table diagnosis.Table) error
	Delete(ctx context.Context, clinicID string) (bool, error)
}

// KnowledgeAuditor records table changes.
type KnowledgeAuditor interface {
	LogKnowledgeUpdated(ctx context.Context, clinicID, actor, action string, keywords int) error
}

// AdminKnowledgeHandler manages clinic symptom table overrides.
type AdminKnowledgeHandler struct {
	store  SymptomTableStore
	audit  KnowledgeAuditor
	logger *logging.Logger
}

// NewAdminKnowledgeHandler creates a new handler. audit may be nil.
func NewAdminKnowledgeHandler(store SymptomTableStore, audit KnowledgeAuditor, logger *logging.Logger) *AdminKnowledgeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminKnowledgeHandler{store: store, audit: audit, logger: logger}
}

// GetTable returns a clinic's override table.
// GET /admin/clinics/{clinicID}/symptom-table
func (h *AdminKnowledgeHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	clinicID := strings.TrimSpace(chi.URLParam(r, "clinicID"))
	if clinicID == "" {
		jsonError(w, "missing clinicID", http.StatusBadRequest)
		return
	}
	table, found, err := h.store.Get(r.Context(), clinicID)
	if err != nil {
		h.fail(w, clinicID, "get symptom table", err)
		return
	}
	if !found {
		jsonError(w, "no symptom table override", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clinicId": clinicID,
		"symptoms": table,
	})
}

// PutTable replaces a clinic's override table. The body is YAML unless the
// content type says JSON.
// PUT /admin/clinics/{clinicID}/symptom-table
func (h *AdminKnowledgeHandler) PutTable(w http.ResponseWriter, r *http.Request) {
	clinicID := strings.TrimSpace(chi.URLParam(r, "clinicID"))
	if clinicID == "" {
		jsonError(w, "missing clinicID", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var table diagnosis.Table
	if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") {
		table, err = knowledge.ParseJSON(body)
	} else {
		table, err = knowledge.Parse(body)
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Set(r.Context(), clinicID, table); err != nil {
		h.fail(w, clinicID, "set symptom table", err)
		return
	}
	h.logAudit(r, clinicID, "replaced", len(table))
	h.logger.Info("symptom table override replaced", "clinic_id", clinicID, "keywords", len(table))

	writeJSON(w, http.StatusOK, map[string]any{
		"clinicId": clinicID,
		"keywords": len(table),
	})
}

// DeleteTable removes a clinic's override so the default table applies.
// DELETE /admin/clinics/{clinicID}/symptom-table
func (h *AdminKnowledgeHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	clinicID := strings.TrimSpace(chi.URLParam(r, "clinicID"))
	if clinicID == "" {
		jsonError(w, "missing clinicID", http.StatusBadRequest)
		return
	}
	existed, err := h.store.Delete(r.Context(), clinicID)
	if err != nil {
		h.fail(w, clinicID, "delete symptom table", err)
		return
	}
	if !existed {
		jsonError(w, "no symptom table override", http.StatusNotFound)
		return
	}
	h.logAudit(r, clinicID, "removed", 0)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminKnowledgeHandler) logAudit(r *http.Request, clinicID, action string, keywords int) {
	if h.audit == nil {
		return
	}
	if err := h.audit.LogKnowledgeUpdated(r.Context(), clinicID, tenancy.ActorFromContext(r.Context()), action, keywords); err != nil {
		h.logger.Warn("failed to audit symptom table change", "clinic_id", clinicID, "action", action, "error", err)
	}
}

func (h *AdminKnowledgeHandler) fail(w http.ResponseWriter, clinicID, op string, err error) {
	status, msg := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("symptom table request failed", "op", op, "clinic_id", clinicID, "error", err)
	}
	jsonError(w, msg, status)
}
