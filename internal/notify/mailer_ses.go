package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/dimitrije/gather-api/internal/config"
	log "github.com/sirupsen/logrus"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client sesAPI
	source string
}

func NewSESMailer(cfg config.SESConfig, fromAddress, fromName string) *SESMailer {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	}
	return &SESMailer{
		client: ses.NewFromConfig(awsCfg),
		source: formatFrom(fromName, fromAddress),
	}
}

func (m *SESMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return Permanent(fmt.Errorf("email has no recipients"))
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(m.source),
		Destination: &types.Destination{ToAddresses: email.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body:    &types.Body{},
		},
	}
	if email.HTML != "" {
		input.Message.Body.Html = &types.Content{Data: aws.String(email.HTML), Charset: aws.String("UTF-8")}
	}
	if email.Text != "" {
		input.Message.Body.Text = &types.Content{Data: aws.String(email.Text), Charset: aws.String("UTF-8")}
	}

	out, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	log.WithField("message_id", aws.ToString(out.MessageId)).Debug("Email sent via SES")
	return nil
}
