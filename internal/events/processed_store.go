package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-cds/pkg/logging"
)

const (
	processedExistsSQL = `SELECT 1 FROM processed_events WHERE consumer = $1 AND event_id = $2`
	processedInsertSQL = `INSERT INTO processed_events (consumer, event_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	processedPruneSQL  = `DELETE FROM processed_events WHERE processed_at < $1`
)

type processedExec interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProcessedStore is the per-consumer ledger behind OnceHandler. A row means
// the consumer finished delivering that outbox entry.
type ProcessedStore struct {
	db  processedExec
	now func() time.Time
}

func NewProcessedStore(pool *pgxpool.Pool) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newProcessedStoreWithExec(pool)
}

func newProcessedStoreWithExec(db processedExec) *ProcessedStore {
	if db == nil {
		panic("events: exec required")
	}
	return &ProcessedStore{db: db, now: time.Now}
}

func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	var one int
	err := s.db.QueryRow(ctx, processedExistsSQL, consumer, eventID).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("events: lookup %s/%s: %w", consumer, eventID, err)
	}
}

// MarkProcessed reports false when the row was already present.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	tag, err := s.db.Exec(ctx, processedInsertSQL, consumer, eventID)
	if err != nil {
		return false, fmt.Errorf("events: record %s/%s: %w", consumer, eventID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Prune deletes ledger rows older than retention. Delivered outbox entries
// are never refetched, so old rows only matter for in-flight retries.
func (s *ProcessedStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx, processedPruneSQL, s.now().Add(-retention).UTC())
	if err != nil {
		return 0, fmt.Errorf("events: prune processed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RunPruner calls Prune every interval until ctx is done.
func (s *ProcessedStore) RunPruner(ctx context.Context, retention, interval time.Duration, logger *logging.Logger) {
	if retention <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Prune(ctx, retention)
			if err != nil {
				logger.Warn("processed events prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned processed events", "rows", n, "retention", retention.String())
			}
		}
	}
}
