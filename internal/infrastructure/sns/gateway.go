// Package sns delivers SMS notifications through AWS SNS.
package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awssns "github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"

	"MuralNotifier/internal/ports"
)

// Gateway publishes text messages straight to phone numbers.
type Gateway struct {
	client snsiface.SNSAPI
}

var _ ports.SMSGateway = (*Gateway)(nil)

// NewGateway builds an SNS client for the given region using the
// default credential chain.
func NewGateway(region string) (*Gateway, error) {
	if region == "" {
		return nil, fmt.Errorf("sns region is required")
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create sns session: %w", err)
	}

	return &Gateway{client: awssns.New(sess)}, nil
}

// NewGatewayWithClient wires an explicit client, used by tests.
func NewGatewayWithClient(client snsiface.SNSAPI) *Gateway {
	return &Gateway{client: client}
}

// SendSMS publishes one message to one phone number.
func (g *Gateway) SendSMS(ctx context.Context, phoneNumber, text string) error {
	if g.client == nil {
		return fmt.Errorf("sns gateway misconfigured")
	}
	if phoneNumber == "" {
		return fmt.Errorf("phone number is empty")
	}

	input := &awssns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(text),
	}

	if _, err := g.client.PublishWithContext(ctx, input); err != nil {
		return fmt.Errorf("publish sms: %w", err)
	}
	return nil
}
