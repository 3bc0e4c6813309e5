package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	log "github.com/sirupsen/logrus"
)

// SESSender is the part of the SES client used here.
type SESSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client SESSender
	from   string
}

func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config load failed: %w", err)
	}
	return NewSESMailerWithClient(ses.NewFromConfig(cfg), from), nil
}

func NewSESMailerWithClient(client SESSender, from string) *SESMailer {
	return &SESMailer{client: client, from: from}
}

func (m *SESMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return m.send(ctx, passwordResetMessage(to, link))
}

func (m *SESMailer) SendMagicLink(ctx context.Context, to, link string) error {
	return m.send(ctx, magicLinkMessage(to, link))
}

func (m *SESMailer) send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(msg.Subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(msg.Body),
				},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		log.WithError(err).WithField("to", msg.To).Error("SES send error")
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}
