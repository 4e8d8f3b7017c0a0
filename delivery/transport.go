package delivery

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Transport pushes one encoded message to the mail system and returns
// the provider message id, when the provider assigns one.
type Transport interface {
	Send(ctx context.Context, from, to string, raw []byte) (string, error)
}

// SESAPI is the slice of SES used for raw sending.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends through the SES v2 raw email API.
type SESTransport struct {
	client SESAPI
}

// NewSESTransport creates an SES-backed transport.
func NewSESTransport(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

// Send submits the raw message. From and To already live in the MIME
// headers; SES takes them again as envelope addresses.
func (t *SESTransport) Send(ctx context.Context, from, to string, raw []byte) (string, error) {
	out, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
