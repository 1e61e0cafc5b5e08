package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-cds/internal/cds"
	"github.com/wolfman30/clinic-cds/internal/cds/knowledge"
	"github.com/wolfman30/clinic-cds/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-cds/internal/http/middleware"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

const testAdminSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	mr := miniredis.RunT(t)
	store := knowledge.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := cds.NewService(cds.Options{Overrides: store, Logger: logger})

	return New(&Config{
		Logger:          logger,
		CDS:             handlers.NewCDSHandler(svc, logger),
		AdminKnowledge:  handlers.NewAdminKnowledgeHandler(store, nil, logger),
		AdminStats:      handlers.NewAdminStatsHandler(nil, logger),
		AdminAuthSecret: testAdminSecret,
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := httpmiddleware.IssueAdminToken(testAdminSecret, "admin-1", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
}

func TestRouterHealthDegraded(t *testing.T) {
	router := New(&Config{HealthChecks: map[string]HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["redis"] != "ok" || resp.Checks["postgres"] != "connection refused" {
		t.Fatalf("unexpected health body %+v", resp)
	}
}

func TestRouterDiagnosesRequiresClinicHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/cds/diagnoses", strings.NewReader(`{"symptoms":"fever"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Org-Id, got %d", rr.Code)
	}
}

func TestRouterClinicOverrideFlow(t *testing.T) {
	router := newTestRouter(t)

	table := `{"symptoms":[{"keyword":"itchy eyes","candidates":[{"condition":"Allergic Conjunctivitis","confidence":80}]}]}`
	req := httptest.NewRequest(http.MethodPut, "/admin/clinics/clinic-1/symptom-table", strings.NewReader(table))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected override stored, got %d: %s", rr.Code, rr.Body.String())
	}

	diagnose := func(clinicID string) cds.DiagnosisResult {
		req := httptest.NewRequest(http.MethodPost, "/cds/diagnoses", strings.NewReader(`{"symptoms":"Itchy eyes and fever"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Org-Id", clinicID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var res cds.DiagnosisResult
		if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return res
	}

	res := diagnose("clinic-1")
	if res.Source != cds.SourceClinic || len(res.Suggestions) != 1 || res.Suggestions[0].Condition != "Allergic Conjunctivitis" {
		t.Fatalf("expected clinic table result, got %+v", res)
	}

	res = diagnose("clinic-2")
	if res.Source != cds.SourceDefault || len(res.Suggestions) == 0 || res.Suggestions[0].Condition != "Influenza" {
		t.Fatalf("expected default table result, got %+v", res)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/cds/stats", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/cds/stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestRouterAdminRoutesAbsentWithoutSecret(t *testing.T) {
	router := New(&Config{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/cds/stats", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when admin auth is not configured, got %d", rr.Code)
	}
}
