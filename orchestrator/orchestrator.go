// Package orchestrator drives collection across accounts, kinds and
// regions, isolating failures to the unit that caused them.
package orchestrator

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/cenkalti/backoff/v5"

	"github.com/mkarlsen/orgscan/collectors"
	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

// globalRegion is where clients for region-agnostic kinds are built.
const globalRegion = "us-east-1"

// Broker delegates into one member account.
type Broker interface {
	Delegate(ctx context.Context, accountID string) (aws.CredentialsProvider, error)
}

// Orchestrator walks accounts in resolver order, kinds in request order
// and regions in configured order. One credential lifetime per account;
// a failing unit never aborts its siblings.
type Orchestrator struct {
	broker      Broker
	registry    *collectors.Registry
	factory     collectors.ClientFactory
	regions     []string
	callTimeout time.Duration
	retry       config.Retry
	logger      *telemetry.Logger
	metrics     *telemetry.RunMetrics
}

// New creates an orchestrator.
func New(broker Broker, registry *collectors.Registry, factory collectors.ClientFactory, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		broker:      broker,
		registry:    registry,
		factory:     factory,
		regions:     cfg.Regions,
		callTimeout: cfg.CallTimeout,
		retry:       cfg.Retry,
		logger:      telemetry.NewLogger("orchestrator"),
	}
}

// WithMetrics attaches run metrics.
func (o *Orchestrator) WithMetrics(m *telemetry.RunMetrics) *Orchestrator {
	o.metrics = m
	return o
}

// Run collects every requested kind for every account. The returned
// error is non-nil only when the run itself was cancelled; per-unit
// failures live in the results map.
func (o *Orchestrator) Run(ctx context.Context, accounts []string, kinds []string) (*RunResult, error) {
	result := &RunResult{
		Results:   make(map[types.ResultKey]types.CollectionResult),
		StartTime: time.Now(),
	}

	o.logger.WithContext(ctx).Info().
		Int("accounts", len(accounts)).
		Strs("kinds", kinds).
		Msg("starting collection run")

	for _, accountID := range accounts {
		if err := ctx.Err(); err != nil {
			return o.finish(result), err
		}
		o.collectAccount(ctx, accountID, kinds, result)
	}

	return o.finish(result), ctx.Err()
}

// collectAccount runs the per-account state machine: delegate, then
// collect each kind. Delegation failure skips the whole account.
func (o *Orchestrator) collectAccount(ctx context.Context, accountID string, kinds []string, result *RunResult) {
	creds, err := o.delegate(ctx, accountID)
	if err != nil {
		result.AccountsSkipped++
		if o.metrics != nil {
			o.metrics.AccountsSkipped.Add(ctx, 1)
		}
		o.logger.LogAccountSkipped(ctx, accountID, err)
		return
	}
	result.AccountsProcessed++
	if o.metrics != nil {
		o.metrics.AccountsProcessed.Add(ctx, 1)
	}

	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return
		}
		collector, ok := o.registry.Get(kind)
		if !ok {
			o.logger.WithContext(ctx).Warn().
				Str("kind", kind).
				Msg("unknown resource kind, skipping")
			continue
		}
		o.collectKind(ctx, creds, accountID, collector, result)
	}
}

// collectKind runs one (account, kind) pair across its region set and
// records exactly one result for it.
func (o *Orchestrator) collectKind(ctx context.Context, creds aws.CredentialsProvider, accountID string, collector collectors.Collector, result *RunResult) {
	key := types.ResultKey{AccountID: accountID, Kind: collector.Kind()}
	started := time.Now()

	regions := o.regions
	if collector.Global() {
		regions = []string{globalRegion}
	}

	table := types.Table{Header: collector.Header()}
	for _, region := range regions {
		rows, err := o.collectRegion(ctx, creds, collector, accountID, region)
		if err != nil {
			o.logger.LogCollectionError(ctx, accountID, collector.Kind(), region, err)
			if o.metrics != nil {
				o.metrics.CollectionFailures.Add(ctx, 1)
			}
			result.Results[key] = types.CollectionResult{
				Status:  types.StatusFailed,
				Table:   table,
				Regions: regions,
				Err:     &types.CollectionError{AccountID: accountID, Kind: collector.Kind(), Region: region, Err: err},
			}
			return
		}
		table.Rows = append(table.Rows, rows...)
		o.logger.LogCollection(ctx, accountID, collector.Kind(), region, len(rows))
	}

	status := types.StatusSuccess
	if table.RowCount() == 0 {
		status = types.StatusEmpty
	}
	result.Results[key] = types.CollectionResult{
		Status:  status,
		Table:   table,
		Regions: regions,
	}

	if o.metrics != nil {
		o.metrics.RowsCollected.Add(ctx, int64(table.RowCount()))
		o.metrics.CollectDuration.Record(ctx, time.Since(started).Seconds())
	}
}

// collectRegion invokes the collector once with a per-call timeout,
// retrying transient failures with backoff.
func (o *Orchestrator) collectRegion(ctx context.Context, creds aws.CredentialsProvider, collector collectors.Collector, accountID, region string) ([][]string, error) {
	clients := o.factory(creds, region)

	operation := func() ([][]string, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
		return collector.Collect(callCtx, clients, accountID, region)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = o.retry.BaseDelay

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(o.retry.MaxAttempts)),
	)
}

// delegate acquires the account's credential under the call timeout.
func (o *Orchestrator) delegate(ctx context.Context, accountID string) (aws.CredentialsProvider, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return o.broker.Delegate(callCtx, accountID)
}

func (o *Orchestrator) finish(result *RunResult) *RunResult {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	o.logger.Info().
		Int("accounts_processed", result.AccountsProcessed).
		Int("accounts_skipped", result.AccountsSkipped).
		Int("results", len(result.Results)).
		Int("rows", result.TotalRows()).
		Dur("duration", result.Duration).
		Msg("collection run complete")

	return result
}
