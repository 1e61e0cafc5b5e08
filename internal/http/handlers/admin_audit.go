package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-cds/internal/compliance"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditQuerier reads the audit trail.
type AuditQuerier interface {
	QueryEvents(ctx context.Context, filter compliance.AuditFilter) ([]compliance.AuditEvent, error)
}

// AdminAuditHandler serves audit trail queries.
type AdminAuditHandler struct {
	audit  AuditQuerier
	logger *logging.Logger
}

// NewAdminAuditHandler creates a new handler.
func NewAdminAuditHandler(audit AuditQuerier, logger *logging.Logger) *AdminAuditHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAuditHandler{audit: audit, logger: logger}
}

// ListEvents returns audit events for a clinic, newest first.
// GET /admin/clinics/{clinicID}/audit?event_type=&patient_id=&tag=&since=&until=&limit=&offset=
func (h *AdminAuditHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	clinicID := strings.TrimSpace(chi.URLParam(r, "clinicID"))
	if clinicID == "" {
		jsonError(w, "missing clinicID", http.StatusBadRequest)
		return
	}
	if h.audit == nil {
		jsonError(w, "audit disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	filter := compliance.AuditFilter{
		ClinicID:  clinicID,
		PatientID: strings.TrimSpace(q.Get("patient_id")),
		EventType: compliance.AuditEventType(strings.TrimSpace(q.Get("event_type"))),
		Tag:       strings.TrimSpace(q.Get("tag")),
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", defaultAuditLimit); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.Limit == 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.StartTime, err = queryTime(r, "since"); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.EndTime, err = queryTime(r, "until"); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.audit.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query audit events", "clinic_id", clinicID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clinicId": clinicID,
		"events":   events,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &queryError{name: name}
	}
	return t, nil
}

type queryError struct{ name string }

func (e *queryError) Error() string { return e.name + " must be an RFC3339 timestamp" }
