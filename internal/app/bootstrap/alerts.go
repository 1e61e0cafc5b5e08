package bootstrap

import (
	appconfig "github.com/wolfman30/clinic-cds/internal/config"
	"github.com/wolfman30/clinic-cds/internal/events"
	"github.com/wolfman30/clinic-cds/internal/notify"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// Consumer names recorded in processed_events.
const (
	ConsumerAlertEmail = "cds.alert_email"
	ConsumerAlertQueue = "cds.alert_queue"
)

// BuildEmailSender picks the provider named by EMAIL_PROVIDER, falling back to
// the stub when the chosen provider is missing credentials.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger), "stub"
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender, "sendgrid"
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; using stub email sender")
	case "ses":
		if ses != nil && cfg.SESFromEmail != "" {
			return notify.NewSESSender(ses, notify.SESConfig{
				FromEmail:        cfg.SESFromEmail,
				FromName:         cfg.SendGridFromName,
				ConfigurationSet: cfg.SESConfigSet,
			}, logger), "ses"
		}
		logger.Warn("ses selected but client or SES_FROM_EMAIL missing; using stub email sender")
	}
	return notify.NewStubEmailSender(logger), "stub"
}

// AlertDeps are the optional sinks for critical risk alerts.
type AlertDeps struct {
	Email     notify.EmailSender
	Queue     events.SQSAPI
	Processed *events.ProcessedStore
}

// BuildAlertHandler fans outbox entries out to email and SQS. Each sink is
// deduplicated through processed_events when a store is available. It
// returns nil when no sink is configured.
func BuildAlertHandler(cfg *appconfig.Config, deps AlertDeps, logger *logging.Logger) events.DeliveryHandler {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var sinks events.MultiHandler
	wrap := func(consumer string, h events.DeliveryHandler) events.DeliveryHandler {
		if deps.Processed == nil {
			return h
		}
		return events.NewOnceHandler(consumer, deps.Processed, h, logger)
	}

	if deps.Email != nil && len(cfg.AlertRecipients) > 0 {
		sinks = append(sinks, wrap(ConsumerAlertEmail, notify.NewRiskAlertHandler(deps.Email, cfg.AlertRecipients, logger)))
	}
	if deps.Queue != nil && cfg.AlertQueueURL != "" {
		sinks = append(sinks, wrap(ConsumerAlertQueue, events.NewSQSForwarder(deps.Queue, cfg.AlertQueueURL)))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}
