package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/alumninet/internal/models"
)

func TestSESMailer_SendModerationNotice(t *testing.T) {
	client := &MockSESAPI{}
	mailer := NewSESMailer(client, "alumni@example.org", "https://alumni.example.org", discardLogger())

	require.NoError(t, mailer.SendModerationNotice(context.Background(), "m@example.org", "Asha", models.ModerationApproved))
	require.Len(t, client.Inputs, 1)

	in := client.Inputs[0]
	assert.Equal(t, "alumni@example.org", *in.Source)
	assert.Equal(t, []string{"m@example.org"}, in.Destination.ToAddresses)
	assert.Contains(t, *in.Message.Subject.Data, "approved")
	assert.Contains(t, *in.Message.Body.Text.Data, "Hello Asha")
	assert.Contains(t, *in.Message.Body.Text.Data, "https://alumni.example.org/directory")
}

func TestSESMailer_Rejected(t *testing.T) {
	client := &MockSESAPI{}
	mailer := NewSESMailer(client, "alumni@example.org", "https://alumni.example.org", discardLogger())

	require.NoError(t, mailer.SendModerationNotice(context.Background(), "m@example.org", "", models.ModerationRejected))
	body := *client.Inputs[0].Message.Body.Text.Data
	assert.Contains(t, body, "Hello,")
	assert.Contains(t, body, "/onboarding")
}

func TestSESMailer_Error(t *testing.T) {
	client := &MockSESAPI{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected")
		},
	}
	mailer := NewSESMailer(client, "alumni@example.org", "", discardLogger())

	assert.Error(t, mailer.SendModerationNotice(context.Background(), "m@example.org", "", models.ModerationApproved))
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(discardLogger()).SendModerationNotice(context.Background(), "m@example.org", "", models.ModerationApproved))
}
