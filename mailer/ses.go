package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/medisys-health/diagnostics/config"
)

// SESClient is the subset of the SES v2 API used to send email
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

func NewSESClient(cfg aws.Config) SESClient {
	return sesv2.NewFromConfig(cfg)
}

type SESSender struct {
	client SESClient
	from   string
}

var _ Sender = &SESSender{}

func NewSESSender(client SESClient, cfg *config.Config) *SESSender {
	return &SESSender{client: client, from: cfg.SenderEmail}
}

func (s *SESSender) Send(ctx context.Context, to []string, subject string, body string) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("unable to send email: %w", err)
	}
	return nil
}
