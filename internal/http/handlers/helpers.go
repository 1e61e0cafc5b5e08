// Package handlers exposes the decision-support service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	"github.com/wolfman30/clinic-cds/internal/tenancy"
)

const maxBodyBytes = 1 << 20

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body required")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func clinicFromRequest(r *http.Request) string {
	clinicID, _ := tenancy.ClinicIDFromContext(r.Context())
	return clinicID
}

// statusForError maps boundary errors to a status and a client-safe message.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, cds.ErrSymptomsTooShort),
		errors.Is(err, cds.ErrMissingClinic),
		errors.Is(err, cds.ErrMissingPatient),
		errors.Is(err, cds.ErrInvalidSelection),
		errors.Is(err, knowledge.ErrInvalidTable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, cds.ErrHistoryDisabled),
		errors.Is(err, knowledge.ErrStoreDisabled):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}
