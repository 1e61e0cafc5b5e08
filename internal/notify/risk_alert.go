package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/clinic-cds/internal/events"
	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// RiskAlertCategory labels critical risk emails at the provider.
const RiskAlertCategory = "cds-risk-critical"

// RiskAlertHandler emails critical risk alerts from the outbox to the
// configured clinical staff.
type RiskAlertHandler struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewRiskAlertHandler creates the handler. Blank recipients are dropped.
func NewRiskAlertHandler(email EmailSender, recipients []string, logger *logging.Logger) *RiskAlertHandler {
	if logger == nil {
		logger = logging.Default()
	}
	clean := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			clean = append(clean, r)
		}
	}
	return &RiskAlertHandler{email: email, recipients: clean, logger: logger}
}

// Handle implements events.DeliveryHandler. Other event types are ignored.
func (h *RiskAlertHandler) Handle(ctx context.Context, entry events.OutboxEntry) error {
	if entry.Type != events.EventRiskCritical {
		return nil
	}
	if h.email == nil || len(h.recipients) == 0 {
		h.logger.Debug("notify: risk alert email not configured, skipping", "event_id", entry.ID)
		return nil
	}

	var alert events.RiskAlertV1
	if err := json.Unmarshal(entry.Payload, &alert); err != nil {
		// A payload that will never decode should not block the outbox.
		h.logger.Error("notify: invalid risk alert payload", "error", err, "event_id", entry.ID)
		return nil
	}

	msg := BuildRiskAlertEmail(alert)
	var errs []error
	for _, to := range h.recipients {
		msg.To = to
		if err := h.email.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("notify: risk alert to %s: %w", to, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	h.logger.Info("risk alert sent", "clinic_id", alert.ClinicID, "patient_id", alert.PatientID,
		"risk_score", alert.RiskScore, "recipients", len(h.recipients))
	return nil
}

// BuildRiskAlertEmail renders the alert without a recipient. Only factor
// labels are included, never patient free text.
func BuildRiskAlertEmail(alert events.RiskAlertV1) EmailMessage {
	patient := alert.PatientID
	if patient == "" {
		patient = "unidentified patient"
	}
	subject := fmt.Sprintf("Critical risk assessment: %s (score %d)", patient, alert.RiskScore)

	var body strings.Builder
	fmt.Fprintf(&body, "A risk assessment for %s scored %d (%s).\n", patient, alert.RiskScore, alert.OverallRisk)
	if !alert.AssessedAt.IsZero() {
		fmt.Fprintf(&body, "Assessed at: %s\n", alert.AssessedAt.Format("January 2, 2006 at 3:04 PM MST"))
	}
	if alert.AssessmentID != "" {
		fmt.Fprintf(&body, "Assessment ID: %s\n", alert.AssessmentID)
	}
	if len(alert.Factors) > 0 {
		body.WriteString("\nContributing factors:\n")
		for _, f := range alert.Factors {
			fmt.Fprintf(&body, "- %s\n", f)
		}
	}
	body.WriteString("\nPlease review the patient record.")

	var htmlBody strings.Builder
	fmt.Fprintf(&htmlBody, "<p>A risk assessment for <strong>%s</strong> scored <strong>%d</strong> (%s).</p>",
		html.EscapeString(patient), alert.RiskScore, html.EscapeString(alert.OverallRisk))
	if len(alert.Factors) > 0 {
		htmlBody.WriteString("<ul>")
		for _, f := range alert.Factors {
			fmt.Fprintf(&htmlBody, "<li>%s</li>", html.EscapeString(f))
		}
		htmlBody.WriteString("</ul>")
	}
	htmlBody.WriteString("<p>Please review the patient record.</p>")

	tags := map[string]string{"clinic_id": alert.ClinicID}
	if alert.AssessmentID != "" {
		tags["assessment_id"] = alert.AssessmentID
	}
	return EmailMessage{
		Subject:  subject,
		Body:     body.String(),
		HTML:     htmlBody.String(),
		Category: RiskAlertCategory,
		Tags:     tags,
	}
}
