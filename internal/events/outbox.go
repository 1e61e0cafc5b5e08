package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// OutboxEntry is one undelivered event. Attempts counts earlier failed
// deliveries.
type OutboxEntry struct {
	ID        uuid.UUID
	ClinicID  string
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
	Attempts  int
}

// DeliveryHandler emits events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

const (
	outboxInsertSQL = `INSERT INTO outbox (id, clinic_id, type, payload) VALUES ($1, $2, $3, $4)`

	outboxPendingSQL = `
		SELECT id, clinic_id, type, payload, created_at, attempts
		FROM outbox
		WHERE delivered_at IS NULL AND attempts < $2
		ORDER BY created_at
		LIMIT $1`

	outboxDeliveredSQL = `UPDATE outbox SET delivered_at = now() WHERE id = $1 AND delivered_at IS NULL`

	outboxFailureSQL = `
		UPDATE outbox
		SET attempts = attempts + 1, last_error = $2
		WHERE id = $1 AND delivered_at IS NULL
		RETURNING attempts`
)

// maxErrorText bounds last_error so a verbose provider response cannot bloat
// the table.
const maxErrorText = 512

type outboxExec interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OutboxStore is the transactional outbox for critical risk alerts.
type OutboxStore struct {
	db outboxExec
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newOutboxStoreWithExec(pool)
}

func newOutboxStoreWithExec(db outboxExec) *OutboxStore {
	if db == nil {
		panic("events: exec required")
	}
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Insert(ctx context.Context, clinicID string, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: encode %s: %w", eventType, err)
	}
	id := uuid.New()
	if _, err := s.db.Exec(ctx, outboxInsertSQL, id, clinicID, eventType, data); err != nil {
		return uuid.Nil, fmt.Errorf("events: enqueue %s: %w", eventType, err)
	}
	return id, nil
}

// FetchPending returns the oldest undelivered entries that have failed fewer
// than maxAttempts times.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]OutboxEntry, error) {
	rows, err := s.db.Query(ctx, outboxPendingSQL, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OutboxEntry, error) {
		var e OutboxEntry
		var payload []byte
		err := row.Scan(&e.ID, &e.ClinicID, &e.Type, &payload, &e.CreatedAt, &e.Attempts)
		e.Payload = json.RawMessage(payload)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("events: read pending: %w", err)
	}
	return entries, nil
}

// MarkDelivered reports false when the entry was already delivered.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, outboxDeliveredSQL, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordFailure bumps the attempt counter and returns the new count.
func (s *OutboxStore) RecordFailure(ctx context.Context, id uuid.UUID, cause error) (int, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	msg = truncateErrorText(msg)
	var attempts int
	if err := s.db.QueryRow(ctx, outboxFailureSQL, id, msg).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("events: record failure %s: %w", id, err)
	}
	return attempts, nil
}

// truncateErrorText cuts msg to at most maxErrorText bytes on a rune
// boundary. Postgres rejects invalid UTF-8 in text columns.
func truncateErrorText(msg string) string {
	msg = strings.ToValidUTF8(msg, "\uFFFD")
	if len(msg) <= maxErrorText {
		return msg
	}
	n := maxErrorText
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n]
}

// RiskAlertPublisher enqueues critical risk alerts on the outbox.
type RiskAlertPublisher struct {
	store *OutboxStore
	now   func() time.Time
}

func NewRiskAlertPublisher(store *OutboxStore) *RiskAlertPublisher {
	return &RiskAlertPublisher{store: store, now: time.Now}
}

// PublishRiskAlert fills in the event id and timestamp when unset.
func (p *RiskAlertPublisher) PublishRiskAlert(ctx context.Context, alert RiskAlertV1) (uuid.UUID, error) {
	if alert.EventID == "" {
		alert.EventID = uuid.NewString()
	}
	if alert.AssessedAt.IsZero() {
		alert.AssessedAt = p.now().UTC()
	}
	return p.store.Insert(ctx, alert.ClinicID, EventRiskCritical, alert)
}

type outboxStore interface {
	FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	RecordFailure(ctx context.Context, id uuid.UUID, cause error) (int, error)
}

const (
	defaultBatchSize   int32 = 25
	defaultInterval          = 2 * time.Second
	defaultMaxAttempts       = 10
)

// Deliverer polls the outbox and hands each entry to the handler. An entry
// that fails maxAttempts times stays in the table but is no longer fetched.
type Deliverer struct {
	store       outboxStore
	handler     DeliveryHandler
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxAttempts int
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	var s outboxStore
	if store != nil {
		s = store
	}
	return newDeliverer(s, handler, logger)
}

func newDeliverer(store outboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:       store,
		handler:     handler,
		logger:      logger.Component("outbox"),
		batchSize:   defaultBatchSize,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithMaxAttempts(n int) *Deliverer {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

// Start blocks until ctx is cancelled.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain makes one pass over the pending batch and returns how many entries
// were delivered.
func (d *Deliverer) drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		log := d.logger.With("event_id", entry.ID, "type", entry.Type, "clinic_id", entry.ClinicID)
		if herr := d.handler.Handle(ctx, entry); herr != nil {
			attempts, err := d.store.RecordFailure(ctx, entry.ID, herr)
			switch {
			case err != nil:
				log.Error("outbox delivery failed; attempt not recorded", "error", herr, "record_error", err)
			case attempts >= d.maxAttempts:
				log.Error("outbox entry abandoned", "error", herr, "attempts", attempts)
			default:
				log.Warn("outbox delivery failed; will retry", "error", herr, "attempts", attempts)
			}
			continue
		}
		ok, err := d.store.MarkDelivered(ctx, entry.ID)
		if err != nil {
			log.Error("failed to mark outbox delivered", "error", err)
			continue
		}
		if ok {
			delivered++
			log.Debug("outbox delivered")
		}
	}
	return delivered
}
