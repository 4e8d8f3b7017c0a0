package delivery

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/orchestrator"
	"github.com/mkarlsen/orgscan/types"
)

type stubTransport struct {
	raws     [][]byte
	failures int
	calls    int
}

func (s *stubTransport) Send(_ context.Context, _, _ string, raw []byte) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", assert.AnError
	}
	s.raws = append(s.raws, raw)
	return "msg-" + string(rune('0'+s.calls)), nil
}

func testMailer(transport Transport) *Mailer {
	return NewMailer(transport, config.Delivery{
		Sender:  "inventory@example.com",
		ReplyTo: "noreply@example.com",
	}, config.Retry{MaxAttempts: 3, BaseDelay: time.Millisecond})
}

func testRun() *orchestrator.RunResult {
	return &orchestrator.RunResult{
		Results: map[types.ResultKey]types.CollectionResult{
			{AccountID: "111111111111", Kind: "EC2"}: {
				Status: types.StatusSuccess,
				Table:  types.Table{Header: []string{"AccountId"}, Rows: [][]string{{"111111111111"}}},
			},
			{AccountID: "111111111111", Kind: "RDS"}: {
				Status: types.StatusFailed,
				Err:    &types.CollectionError{AccountID: "111111111111", Kind: "RDS", Region: "us-east-1", Err: assert.AnError},
			},
		},
		AccountsProcessed: 1,
		EndTime:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSendReportReceipt(t *testing.T) {
	transport := &stubTransport{}
	mailer := testMailer(transport)

	artifacts := []types.Artifact{
		{Name: "111111111111_EC2.csv", Data: []byte("AccountId\n111111111111\n"), Rows: 1},
	}
	receipt, err := mailer.SendReport(context.Background(), "ops@example.com", "acct-prod", testRun(), artifacts)
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.MessageID)
	assert.Equal(t, 1, receipt.ArtifactCount)
	assert.Equal(t, 1, receipt.TotalRows)
	assert.Equal(t, int64(len(transport.raws[0])), receipt.TotalBytes)

	parsed, err := mail.ReadMessage(bytes.NewReader(transport.raws[0]))
	require.NoError(t, err)
	assert.Equal(t, "Resource inventory for acct-prod", parsed.Header.Get("Subject"))

	all, err := io.ReadAll(parsed.Body)
	require.NoError(t, err)
	assert.Contains(t, string(all), "Accounts processed: 1")
	assert.Contains(t, string(all), "111111111111_EC2.csv (1 rows)")
	assert.Contains(t, string(all), "Failed collections")
	assert.Contains(t, string(all), "111111111111/RDS")
}

func TestSendReportNoData(t *testing.T) {
	transport := &stubTransport{}
	mailer := testMailer(transport)

	run := testRun()
	receipt, err := mailer.SendReport(context.Background(), "ops@example.com", "acct-prod", run, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, receipt.ArtifactCount)
	assert.Equal(t, 0, receipt.TotalRows)

	parsed, err := mail.ReadMessage(bytes.NewReader(transport.raws[0]))
	require.NoError(t, err)
	assert.Equal(t, "Resource inventory for acct-prod: no resources found", parsed.Header.Get("Subject"))

	all, err := io.ReadAll(parsed.Body)
	require.NoError(t, err)
	assert.Contains(t, string(all), "No resources of the requested kinds were found")
}

func TestSendReportRetriesTransientFailure(t *testing.T) {
	transport := &stubTransport{failures: 2}
	mailer := testMailer(transport)

	_, err := mailer.SendReport(context.Background(), "ops@example.com", "acct-prod", testRun(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, transport.calls)
}

func TestSendReportExhaustedRetries(t *testing.T) {
	transport := &stubTransport{failures: 10}
	mailer := testMailer(transport)

	_, err := mailer.SendReport(context.Background(), "ops@example.com", "acct-prod", testRun(), nil)
	var de *types.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ops@example.com", de.Recipient)
	assert.Equal(t, 3, transport.calls)
}
