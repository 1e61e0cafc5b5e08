package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-cds/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-cds/internal/http/middleware"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CDS                *handlers.CDSHandler
	AdminKnowledge     *handlers.AdminKnowledgeHandler
	AdminAudit         *handlers.AdminAuditHandler
	AdminStats         *handlers.AdminStatsHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter

	// Named dependency checks run by /health (optional)
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminStats != nil {
				admin.Get("/cds/stats", cfg.AdminStats.GetStats)
			}
			admin.Route("/clinics/{clinicID}", func(clinicRoutes chi.Router) {
				if cfg.AdminKnowledge != nil {
					clinicRoutes.Get("/symptom-table", cfg.AdminKnowledge.GetTable)
					clinicRoutes.Put("/symptom-table", cfg.AdminKnowledge.PutTable)
					clinicRoutes.Delete("/symptom-table", cfg.AdminKnowledge.DeleteTable)
				}
				if cfg.AdminAudit != nil {
					clinicRoutes.Get("/audit", cfg.AdminAudit.ListEvents)
				}
			})
		})
	}

	// Tenant-scoped API routes
	if cfg.CDS != nil {
		r.Group(func(tenant chi.Router) {
			if cfg.RateLimiter != nil {
				tenant.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			tenant.Use(requireClinicID)

			tenant.Route("/cds", func(r chi.Router) {
				r.Post("/diagnoses", cfg.CDS.SuggestDiagnoses)
				r.Post("/risk-assessments", cfg.CDS.AssessRisk)
				r.Post("/selections", cfg.CDS.RecordSelection)
				r.Get("/symptom-table", cfg.CDS.SymptomTable)
				r.Get("/patients/{patientID}/risk-assessments", cfg.CDS.ListAssessments)
			})
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := map[string]any{"status": "ok"}
		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			results := make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(ctx); err != nil {
					results[name] = err.Error()
					status = http.StatusServiceUnavailable
					resp["status"] = "degraded"
					continue
				}
				results[name] = "ok"
			}
			resp["checks"] = results
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
