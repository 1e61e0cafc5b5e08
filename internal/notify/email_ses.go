package notify

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/wolfman30/clinic-cds/pkg/logging"
)

// SESAPI is the subset of the SES v2 client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers alert emails through SES v2. When a configuration set
// is named, Category and Tags become SES message tags so bounce and
// delivery events can be attributed per clinic.
type SESSender struct {
	client    SESAPI
	from      string
	configSet string
	logger    *logging.Logger
}

type SESConfig struct {
	FromEmail        string
	FromName         string
	ConfigurationSet string
}

// NewSESSender returns nil without a client.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	from := (&mail.Address{Name: cfg.FromName, Address: cfg.FromEmail}).String()
	return &SESSender{
		client:    client,
		from:      from,
		configSet: cfg.ConfigurationSet,
		logger:    logger.Component("ses"),
	}
}

// SES tag names and values allow only this character set.
var sesTagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_\-.@]`)

func sesTag(name, value string) types.MessageTag {
	return types.MessageTag{
		Name:  aws.String(sesTagUnsafe.ReplaceAllString(name, "_")),
		Value: aws.String(sesTagUnsafe.ReplaceAllString(value, "_")),
	}
}

func utf8Content(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

func (s *SESSender) buildInput(msg EmailMessage) *sesv2.SendEmailInput {
	body := &types.Body{}
	if msg.Body != "" {
		body.Text = utf8Content(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}
	to := msg.To
	if msg.ToName != "" {
		to = (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{Subject: utf8Content(msg.Subject), Body: body},
		},
	}
	if s.configSet == "" {
		return input
	}
	input.ConfigurationSetName = aws.String(s.configSet)
	if msg.Category != "" {
		input.EmailTags = append(input.EmailTags, sesTag("category", msg.Category))
	}
	for _, k := range msg.tagKeys() {
		input.EmailTags = append(input.EmailTags, sesTag(k, msg.Tags[k]))
	}
	return input
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}
	recipient := maskAddress(msg.To)

	out, err := s.client.SendEmail(ctx, s.buildInput(msg))
	if err != nil {
		s.logger.Error("alert email failed", "error", err, "to", recipient, "category", msg.Category)
		return fmt.Errorf("notify: SES send failed: %w", err)
	}
	s.logger.Info("alert email accepted", "to", recipient, "category", msg.Category, "message_id", aws.ToString(out.MessageId))
	return nil
}

var _ EmailSender = (*SESSender)(nil)
