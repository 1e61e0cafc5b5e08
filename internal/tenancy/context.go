// Package tenancy carries the clinic and acting user through request contexts.
package tenancy

import "context"

type ctxKey string

const (
	clinicKey ctxKey = "cds.clinic_id"
	actorKey  ctxKey = "cds.actor"
)

// WithClinicID stores the clinic id in context.
func WithClinicID(ctx context.Context, clinicID string) context.Context {
	return context.WithValue(ctx, clinicKey, clinicID)
}

// ClinicIDFromContext extracts the clinic id if present.
func ClinicIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, clinicKey)
}

// WithActor stores the user acting on behalf of the clinic.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting user, or "" when unknown.
func ActorFromContext(ctx context.Context) string {
	actor, _ := stringValue(ctx, actorKey)
	return actor
}

func stringValue(ctx context.Context, key ctxKey) (string, bool) {
	val := ctx.Value(key)
	if val == nil {
		return "", false
	}
	s, ok := val.(string)
	return s, ok && s != ""
}
