package delivery

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSES struct {
	lastInput *sesv2.SendEmailInput
	err       error
}

func (s *stubSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastInput = params
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

func TestSESTransportSend(t *testing.T) {
	client := &stubSES{}
	transport := NewSESTransport(client)

	id, err := transport.Send(context.Background(), "inventory@example.com", "ops@example.com", []byte("raw message"))
	require.NoError(t, err)
	assert.Equal(t, "ses-msg-1", id)

	require.NotNil(t, client.lastInput)
	assert.Equal(t, "inventory@example.com", aws.ToString(client.lastInput.FromEmailAddress))
	assert.Equal(t, []string{"ops@example.com"}, client.lastInput.Destination.ToAddresses)
	assert.Equal(t, []byte("raw message"), client.lastInput.Content.Raw.Data)
}

func TestSESTransportSendError(t *testing.T) {
	transport := NewSESTransport(&stubSES{err: assert.AnError})
	_, err := transport.Send(context.Background(), "a@example.com", "b@example.com", []byte("raw"))
	assert.ErrorIs(t, err, assert.AnError)
}

type stubSecrets struct {
	value string
	err   error
	calls int
}

func (s *stubSecrets) GetSecretValue(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s.value)}, nil
}

func TestSMTPTransportSend(t *testing.T) {
	secrets := &stubSecrets{value: `{"username":"AKIA","password":"hunter2"}`}
	transport := NewSMTPTransport(secrets, "smtp.example.com:587", "arn:aws:secretsmanager:us-east-1:111111111111:secret:smtp")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	transport.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	id, err := transport.Send(context.Background(), "inventory@example.com", "ops@example.com", []byte("raw"))
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "inventory@example.com", gotFrom)
	assert.Equal(t, []string{"ops@example.com"}, gotTo)
	assert.Equal(t, []byte("raw"), gotMsg)

	// Second send reuses the cached credentials.
	_, err = transport.Send(context.Background(), "inventory@example.com", "ops@example.com", []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, 1, secrets.calls)
}

func TestSMTPTransportBadSecret(t *testing.T) {
	transport := NewSMTPTransport(&stubSecrets{value: `{"username":"AKIA"}`}, "smtp.example.com:587", "arn")
	transport.send = func(string, smtp.Auth, string, []string, []byte) error { return nil }

	_, err := transport.Send(context.Background(), "a@example.com", "b@example.com", []byte("raw"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username or password")
}

func TestSMTPTransportBadEndpoint(t *testing.T) {
	transport := NewSMTPTransport(&stubSecrets{value: `{"username":"u","password":"p"}`}, "no-port", "arn")
	transport.send = func(string, smtp.Auth, string, []string, []byte) error { return nil }

	_, err := transport.Send(context.Background(), "a@example.com", "b@example.com", []byte("raw"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid smtp endpoint")
}
