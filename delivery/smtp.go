package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI fetches SMTP credentials.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type smtpCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// sendFunc matches smtp.SendMail, swappable in tests.
type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPTransport sends through an SMTP relay, authenticating with
// credentials held in Secrets Manager. Credentials are fetched once
// and reused for the lifetime of the transport.
type SMTPTransport struct {
	secrets   SecretsAPI
	endpoint  string
	secretARN string
	send      sendFunc

	mu    sync.Mutex
	creds *smtpCredentials
}

// NewSMTPTransport creates an SMTP-backed transport. endpoint is
// host:port of the relay.
func NewSMTPTransport(secrets SecretsAPI, endpoint, secretARN string) *SMTPTransport {
	return &SMTPTransport{
		secrets:   secrets,
		endpoint:  endpoint,
		secretARN: secretARN,
		send:      smtp.SendMail,
	}
}

// Send relays the raw message. SMTP assigns no message id, so the
// returned id is always empty on success.
func (t *SMTPTransport) Send(ctx context.Context, from, to string, raw []byte) (string, error) {
	creds, err := t.credentials(ctx)
	if err != nil {
		return "", err
	}

	host, _, err := net.SplitHostPort(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid smtp endpoint %q: %w", t.endpoint, err)
	}

	auth := smtp.PlainAuth("", creds.Username, creds.Password, host)
	if err := t.send(t.endpoint, auth, from, []string{to}, raw); err != nil {
		return "", fmt.Errorf("smtp send via %s: %w", t.endpoint, err)
	}
	return "", nil
}

func (t *SMTPTransport) credentials(ctx context.Context) (*smtpCredentials, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.creds != nil {
		return t.creds, nil
	}

	out, err := t.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(t.secretARN),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching smtp credentials: %w", err)
	}

	var creds smtpCredentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("decoding smtp credentials: %w", err)
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("smtp credential secret is missing username or password")
	}

	t.creds = &creds
	return t.creds, nil
}
