package notifier

import (
	"context"
	"fmt"
	"strings"

	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/notifier"
	"github.com/amirhossein-jamali/payment-reconciler/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// emailAPI is the part of *sesv2.Client the sender uses
type emailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender e-mails the billing address when an order is paid
type SESSender struct {
	client emailAPI
	from   string
	logger coreport.Logger
}

var _ notifier.Notifier = (*SESSender)(nil)

// NewSESSender loads AWS credentials from the default chain
func NewSESSender(ctx context.Context, cfg config.SESConfig, logger coreport.Logger) (*SESSender, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("ses notifier: from address is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses notifier: load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg.FromAddress, logger), nil
}

func newSESSender(client emailAPI, from string, logger coreport.Logger) *SESSender {
	return &SESSender{client: client, from: from, logger: logger}
}

// PaymentConfirmed sends the receipt e-mail. Orders without an e-mail address are skipped.
func (s *SESSender) PaymentConfirmed(ctx context.Context, confirmation notifier.PaymentConfirmation) error {
	order := confirmation.Order
	if order == nil || strings.TrimSpace(order.Billing.Email) == "" {
		s.logger.Debug("No billing e-mail, skipping confirmation", map[string]any{
			"correlation_id": confirmation.CorrelationID,
		})
		return nil
	}

	subject, body := confirmationEmail(confirmation)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{order.Billing.Email},
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
		return fmt.Errorf("send confirmation e-mail: %w", err)
	}
	return nil
}

func confirmationEmail(c notifier.PaymentConfirmation) (string, string) {
	order := c.Order
	subject := fmt.Sprintf("Order #%d confirmed", order.ID)

	var b strings.Builder
	name := order.Billing.FullName()
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "We received your payment of KES %s for order #%d.\n", c.Amount.String(), order.ID)
	if c.ReceiptRef != "" {
		fmt.Fprintf(&b, "Receipt: %s\n", c.ReceiptRef)
	}
	fmt.Fprintf(&b, "Paid via: %s\n", c.Method)
	b.WriteString("\nYour order is confirmed and will be prepared for delivery.\n")
	return subject, b.String()
}
