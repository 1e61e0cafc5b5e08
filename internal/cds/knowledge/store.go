package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-cds/internal/cds/diagnosis"
)

// ErrStoreDisabled is returned by Store writes when no Redis client is set.
var ErrStoreDisabled = errors.New("knowledge: override store disabled")

var storeTracer = otel.Tracer("clinic.internal.cds.knowledge")

// Store keeps per-clinic symptom table overrides in Redis.
type Store struct {
	redis *redis.Client
}

// NewStore creates a store. A nil client yields a store that never finds an
// override and rejects writes.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Enabled reports whether a Redis client is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.redis != nil
}

func (s *Store) key(clinicID string) string {
	return fmt.Sprintf("cds:symptoms:%s", clinicID)
}

// Get returns the clinic override, if any.
func (s *Store) Get(ctx context.Context, clinicID string) (diagnosis.Table, bool, error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	ctx, span := storeTracer.Start(ctx, "knowledge.store.get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("cds.clinic_id", clinicID))

	data, err := s.redis.Get(ctx, s.key(clinicID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("knowledge: get override: %w", err)
	}

	var table diagnosis.Table
	if err := json.Unmarshal(data, &table); err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("knowledge: unmarshal override: %w", err)
	}
	span.SetAttributes(attribute.Int("cds.keywords", len(table)))
	return table, true, nil
}

// Set validates and saves a clinic override.
func (s *Store) Set(ctx context.Context, clinicID string, table diagnosis.Table) error {
	if !s.Enabled() {
		return ErrStoreDisabled
	}
	if err := Validate(table); err != nil {
		return err
	}
	ctx, span := storeTracer.Start(ctx, "knowledge.store.set", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("cds.clinic_id", clinicID))

	data, err := json.Marshal(Normalize(table))
	if err != nil {
		return fmt.Errorf("knowledge: marshal override: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(clinicID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("knowledge: set override: %w", err)
	}
	return nil
}

// Delete removes a clinic override. It reports whether one existed.
func (s *Store) Delete(ctx context.Context, clinicID string) (bool, error) {
	if !s.Enabled() {
		return false, ErrStoreDisabled
	}
	n, err := s.redis.Del(ctx, s.key(clinicID)).Result()
	if err != nil {
		return false, fmt.Errorf("knowledge: delete override: %w", err)
	}
	return n > 0, nil
}
