package delivery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/orchestrator"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

// Mailer composes and sends one report email per run.
type Mailer struct {
	transport Transport
	sender    string
	replyTo   string
	retry     config.Retry
	logger    *telemetry.Logger
	metrics   *telemetry.RunMetrics
}

// NewMailer creates a mailer over the given transport.
func NewMailer(transport Transport, delivery config.Delivery, retry config.Retry) *Mailer {
	return &Mailer{
		transport: transport,
		sender:    delivery.Sender,
		replyTo:   delivery.ReplyTo,
		retry:     retry,
		logger:    telemetry.NewLogger("delivery"),
	}
}

// WithMetrics attaches run metrics.
func (m *Mailer) WithMetrics(metrics *telemetry.RunMetrics) *Mailer {
	m.metrics = metrics
	return m
}

// SendReport mails the artifacts to the recipient. With no artifacts
// it still sends, with a subject and body that say so outright. The
// send is retried up to the configured attempt count before the
// failure surfaces as a DeliveryError.
func (m *Mailer) SendReport(ctx context.Context, recipient, target string, run *orchestrator.RunResult, artifacts []types.Artifact) (*types.DeliveryReceipt, error) {
	message := &Message{
		From:        m.sender,
		To:          recipient,
		ReplyTo:     m.replyTo,
		Subject:     subject(target, artifacts),
		Body:        summaryBody(target, run, artifacts),
		Attachments: artifacts,
	}

	raw, err := message.Encode()
	if err != nil {
		return nil, &types.DeliveryError{Recipient: recipient, Err: err}
	}

	messageID, err := m.sendWithRetry(ctx, recipient, raw)
	if err != nil {
		return nil, &types.DeliveryError{Recipient: recipient, Err: err}
	}
	if messageID == "" {
		messageID = uuid.NewString()
	}

	totalRows := 0
	for _, artifact := range artifacts {
		totalRows += artifact.Rows
	}

	m.logger.WithContext(ctx).Info().
		Str("recipient", recipient).
		Str("message_id", messageID).
		Int("artifacts", len(artifacts)).
		Int("bytes", len(raw)).
		Msg("report delivered")
	if m.metrics != nil {
		m.metrics.BytesDelivered.Add(ctx, int64(len(raw)))
	}

	return &types.DeliveryReceipt{
		MessageID:     messageID,
		ArtifactCount: len(artifacts),
		TotalRows:     totalRows,
		TotalBytes:    int64(len(raw)),
	}, nil
}

func (m *Mailer) sendWithRetry(ctx context.Context, recipient string, raw []byte) (string, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = m.retry.BaseDelay

	attempt := 0
	operation := func() (string, error) {
		attempt++
		id, err := m.transport.Send(ctx, m.sender, recipient, raw)
		if err != nil {
			m.logger.Warn().
				Int("attempt", attempt).
				Err(err).
				Msg("send failed")
		}
		return id, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(m.retry.MaxAttempts)),
	)
}

func subject(target string, artifacts []types.Artifact) string {
	if len(artifacts) == 0 {
		return fmt.Sprintf("Resource inventory for %s: no resources found", target)
	}
	return fmt.Sprintf("Resource inventory for %s", target)
}

// summaryBody renders the plain-text report summary.
func summaryBody(target string, run *orchestrator.RunResult, artifacts []types.Artifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Resource inventory for %s, completed %s.\n\n",
		target, run.EndTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Accounts processed: %d\n", run.AccountsProcessed)
	fmt.Fprintf(&b, "Accounts skipped:   %d\n\n", run.AccountsSkipped)

	if len(artifacts) == 0 {
		b.WriteString("No resources of the requested kinds were found. Nothing is attached.\n")
	} else {
		b.WriteString("Attachments:\n")
		for _, artifact := range artifacts {
			if artifact.Offloaded {
				fmt.Fprintf(&b, "  %s (%d rows, report too large to attach, download link enclosed)\n",
					artifact.Name, artifact.Rows)
			} else {
				fmt.Fprintf(&b, "  %s (%d rows)\n", artifact.Name, artifact.Rows)
			}
		}
	}

	if failures := run.Failures(); len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			if failures[i].AccountID != failures[j].AccountID {
				return failures[i].AccountID < failures[j].AccountID
			}
			return failures[i].Kind < failures[j].Kind
		})
		b.WriteString("\nFailed collections (not included above):\n")
		for _, key := range failures {
			fmt.Fprintf(&b, "  %s/%s\n", key.AccountID, key.Kind)
		}
	}

	return b.String()
}
