// Package identity exchanges an account ID for short-lived delegated
// credentials by assuming a well-known role in the target account.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v5"

	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

const sessionName = "orgscan-inventory"

// STSClient is the subset of STS operations the broker uses.
type STSClient interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Broker delegates into member accounts. One delegation per account per
// run; callers must not cache credentials across accounts.
type Broker struct {
	client   STSClient
	roleName string
	retry    config.Retry
	logger   *telemetry.Logger
}

// NewBroker creates a broker that assumes roleName in target accounts.
func NewBroker(client STSClient, roleName string, retry config.Retry) *Broker {
	return &Broker{
		client:   client,
		roleName: roleName,
		retry:    retry,
		logger:   telemetry.NewLogger("identity"),
	}
}

// Delegate assumes the member role in the given account and returns a
// credentials provider bound to it. Throttled calls are retried with
// exponential backoff; trust-policy rejections surface immediately.
func (b *Broker) Delegate(ctx context.Context, accountID string) (aws.CredentialsProvider, error) {
	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, b.roleName)

	operation := func() (*sts.AssumeRoleOutput, error) {
		out, err := b.client.AssumeRole(ctx, &sts.AssumeRoleInput{
			RoleArn:         aws.String(roleARN),
			RoleSessionName: aws.String(sessionName),
			DurationSeconds: aws.Int32(3600),
		})
		if err != nil {
			if !isThrottle(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = b.retry.BaseDelay

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(b.retry.MaxAttempts)),
	)
	if err != nil {
		return nil, &types.AuthzError{AccountID: accountID, Err: err}
	}

	creds := out.Credentials
	b.logger.WithContext(ctx).Info().
		Str("account_id", accountID).
		Time("expires", aws.ToTime(creds.Expiration)).
		Msg("assumed member role")

	provider := credentials.NewStaticCredentialsProvider(
		aws.ToString(creds.AccessKeyId),
		aws.ToString(creds.SecretAccessKey),
		aws.ToString(creds.SessionToken),
	)
	return provider, nil
}

// isThrottle reports whether err is a transient rate-limit rejection.
func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "Throttling", "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
		return true
	}
	return false
}
