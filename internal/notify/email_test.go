package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestNewSendGridSender(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "alerts@clinic.test"}, nil), "no API key")

	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "alerts@clinic.test"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Clinic Alerts", sender.fromName)

	sender = NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "alerts@clinic.test", FromName: "Ward 4"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Ward 4", sender.fromName)
}

func TestSendGridSender_BuildsTrackedMail(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "alerts@clinic.test"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "dr@clinic.test",
		ToName:   "Dr. Okafor",
		Subject:  "Critical",
		Body:     "plain",
		HTML:     "<p>html</p>",
		Category: "risk-critical",
		Tags:     map[string]string{"clinic_id": "clinic-1", "empty": ""},
	})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	m := client.sent[0]
	assert.Equal(t, "Critical", m.Subject)
	assert.Equal(t, "alerts@clinic.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "dr@clinic.test", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
	assert.Equal(t, []string{"risk-critical"}, m.Categories)
	assert.Equal(t, map[string]string{"clinic_id": "clinic-1"}, m.CustomArgs)
}

func TestSendGridSender_PlainFallsBackToSubject(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "alerts@clinic.test"}, nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "dr@clinic.test", Subject: "Critical"}))
	require.Len(t, client.sent[0].Content, 1)
	assert.Equal(t, "Critical", client.sent[0].Content[0].Value)
}

func TestSendGridSender_Errors(t *testing.T) {
	assert.Error(t, (&SendGridSender{}).Send(context.Background(), EmailMessage{To: "dr@clinic.test"}), "nil client")

	client := &fakeSendGrid{status: 401}
	sender := newSendGridSender(client, SendGridConfig{}, nil)
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "dr@clinic.test"}), "401")

	client.err = errors.New("dial tcp: timeout")
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "dr@clinic.test"}), "timeout")
}

func TestStubEmailSender_Send(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "dr@clinic.test", Subject: "x"}))
}

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "d***@clinic.test", maskAddress("dr.okafor@clinic.test"))
	assert.Equal(t, "***", maskAddress("not-an-address"))
	assert.Equal(t, "***", maskAddress("@clinic.test"))
}
