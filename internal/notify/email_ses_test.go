package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "alerts@clinic.test"}, nil))
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "alerts@clinic.test"}, nil)
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "dr@clinic.test",
		Subject:  "Critical",
		Body:     "plain",
		HTML:     "<p>html</p>",
		Category: "risk-critical",
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, `"Clinic Alerts" <alerts@clinic.test>`, aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"dr@clinic.test"}, in.Destination.ToAddresses)
	assert.Equal(t, "Critical", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(in.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	assert.Nil(t, in.ConfigurationSetName)
	assert.Empty(t, in.EmailTags, "tags need a configuration set")
}

func TestSESSender_ConfigurationSetTags(t *testing.T) {
	client := &fakeSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "alerts@clinic.test", ConfigurationSet: "cds-alerts"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:       "dr@clinic.test",
		ToName:   "Dr Okafor",
		Subject:  "Critical",
		Body:     "plain",
		Category: "risk-critical",
		Tags:     map[string]string{"clinic_id": "clinic 1", "assessment_id": "a-1"},
	})
	require.NoError(t, err)

	in := client.inputs[0]
	assert.Equal(t, "cds-alerts", aws.ToString(in.ConfigurationSetName))
	assert.Equal(t, []string{`"Dr Okafor" <dr@clinic.test>`}, in.Destination.ToAddresses)
	require.Len(t, in.EmailTags, 3)
	assert.Equal(t, "category", aws.ToString(in.EmailTags[0].Name))
	assert.Equal(t, "assessment_id", aws.ToString(in.EmailTags[1].Name))
	assert.Equal(t, "clinic_id", aws.ToString(in.EmailTags[2].Name))
	assert.Equal(t, "clinic_1", aws.ToString(in.EmailTags[2].Value))
}

func TestSESSender_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("MessageRejected")}
	sender := NewSESSender(client, SESConfig{FromEmail: "alerts@clinic.test", FromName: "Ward 4"}, nil)

	err := sender.Send(context.Background(), EmailMessage{To: "dr@clinic.test", Subject: "x", Body: "y"})
	assert.ErrorContains(t, err, "MessageRejected")
}
