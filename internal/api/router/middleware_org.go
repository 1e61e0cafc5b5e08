package router

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/wolfman30/clinic-cds/internal/http/middleware"
	"github.com/wolfman30/clinic-cds/internal/tenancy"
)

const actorHeader = "X-Actor-Id"

// requireClinicID enforces the tenant header on API requests and carries the
// optional acting user along with it.
func requireClinicID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clinicID := strings.TrimSpace(r.Header.Get(httpmiddleware.ClinicHeader))
		if clinicID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"missing X-Org-Id"}`))
			return
		}
		ctx := tenancy.WithClinicID(r.Context(), clinicID)
		if actor := strings.TrimSpace(r.Header.Get(actorHeader)); actor != "" {
			ctx = tenancy.WithActor(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clinicIDFromRequest exposes the clinic id for local handlers.
func clinicIDFromRequest(r *http.Request) (string, bool) {
	return tenancy.ClinicIDFromContext(r.Context())
}
