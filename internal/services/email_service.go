package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/BradenHooton/alumninet/internal/models"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

// Mailer notifies members about moderation outcomes.
type Mailer interface {
	SendModerationNotice(ctx context.Context, to string, name string, decision models.Moderation) error
}

// SESAPI is the subset of the SES client used for sending.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends emails using AWS SES
type SESMailer struct {
	client      SESAPI
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

func NewSESMailer(client SESAPI, fromAddress, baseURL string, logger *slog.Logger) *SESMailer {
	return &SESMailer{
		client:      client,
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// NewSESMailerFromRegion loads the default AWS credential chain.
func NewSESMailerFromRegion(ctx context.Context, region, fromAddress, baseURL string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESMailer(ses.NewFromConfig(cfg), fromAddress, baseURL, logger), nil
}

func moderationMessage(name string, decision models.Moderation, baseURL string) (subject, text string) {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	switch decision {
	case models.ModerationApproved:
		subject = "Your alumni profile has been approved"
		text = fmt.Sprintf(`%s,

Your profile has been reviewed and approved. You can now browse the alumni directory:

%s/directory

This is an automated message. Please do not reply to this email.
`, greeting, baseURL)
	default:
		subject = "An update on your alumni profile"
		text = fmt.Sprintf(`%s,

Your profile could not be approved at this time. Please review your details and contact the alumni office if you believe this is a mistake:

%s/onboarding

This is an automated message. Please do not reply to this email.
`, greeting, baseURL)
	}
	return subject, text
}

func (m *SESMailer) SendModerationNotice(ctx context.Context, to, name string, decision models.Moderation) error {
	subject, text := moderationMessage(name, decision, m.baseURL)

	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		m.logger.Error("failed to send moderation email via SES",
			slog.String("email", pkglogger.SanitizedEmail(to)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("moderation email sent",
		slog.String("email", pkglogger.SanitizedEmail(to)),
		slog.String("decision", string(decision)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogMailer is used when no SES sender is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendModerationNotice(_ context.Context, to, _ string, decision models.Moderation) error {
	m.logger.Info("moderation email skipped: no sender configured",
		slog.String("email", pkglogger.SanitizedEmail(to)),
		slog.String("decision", string(decision)))
	return nil
}
