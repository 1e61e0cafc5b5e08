package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// HandlerFunc adapts a function to DeliveryHandler.
type HandlerFunc func(ctx context.Context, entry OutboxEntry) error

func (f HandlerFunc) Handle(ctx context.Context, entry OutboxEntry) error {
	return f(ctx, entry)
}

// MultiHandler fans an entry out to every handler. All handlers run; the
// joined error is returned so the entry stays pending.
type MultiHandler []DeliveryHandler

func (m MultiHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	var errs []error
	for _, h := range m {
		if h == nil {
			continue
		}
		if err := h.Handle(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type processedTracker interface {
	AlreadyProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
}

// OnceHandler runs next at most once per outbox entry for the named consumer.
// Used inside a MultiHandler so a retry after a partial failure does not
// repeat the deliveries that already succeeded.
type OnceHandler struct {
	consumer string
	store    processedTracker
	next     DeliveryHandler
	logger   *logging.Logger
}

func NewOnceHandler(consumer string, store *ProcessedStore, next DeliveryHandler, logger *logging.Logger) *OnceHandler {
	var tracker processedTracker
	if store != nil {
		tracker = store
	}
	return newOnceHandler(consumer, tracker, next, logger)
}

func newOnceHandler(consumer string, store processedTracker, next DeliveryHandler, logger *logging.Logger) *OnceHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OnceHandler{consumer: consumer, store: store, next: next, logger: logger}
}

func (h *OnceHandler) Handle(ctx context.Context, entry OutboxEntry) error {
	if h.store == nil {
		return h.next.Handle(ctx, entry)
	}
	eventID := entry.ID.String()
	seen, err := h.store.AlreadyProcessed(ctx, h.consumer, eventID)
	if err != nil {
		return fmt.Errorf("events: %s: %w", h.consumer, err)
	}
	if seen {
		h.logger.Debug("outbox entry already handled", "consumer", h.consumer, "event_id", eventID)
		return nil
	}
	if err := h.next.Handle(ctx, entry); err != nil {
		return err
	}
	if _, err := h.store.MarkProcessed(ctx, h.consumer, eventID); err != nil {
		h.logger.Warn("failed to record processed outbox entry", "consumer", h.consumer, "event_id", eventID, "error", err)
	}
	return nil
}
