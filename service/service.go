// Package service runs the full inventory pipeline: validate the
// request, resolve its scope to accounts, collect, package, deliver.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/orgscan/orchestrator"
	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

// Resolver turns a request scope into concrete account ids.
type Resolver interface {
	ResolveAccounts(ctx context.Context, scope types.Scope, target string) ([]string, error)
}

// Runner drives collection across the resolved accounts.
type Runner interface {
	Run(ctx context.Context, accounts []string, kinds []string) (*orchestrator.RunResult, error)
}

// Packager turns collection results into delivery artifacts.
type Packager interface {
	Build(ctx context.Context, results map[types.ResultKey]types.CollectionResult) ([]types.Artifact, error)
}

// Sender delivers the artifact set to one recipient.
type Sender interface {
	SendReport(ctx context.Context, recipient, target string, run *orchestrator.RunResult, artifacts []types.Artifact) (*types.DeliveryReceipt, error)
}

// PackagerFactory builds a packager bound to one run id, so offloaded
// artifacts from concurrent runs land under distinct keys.
type PackagerFactory func(runID string) Packager

// Inventory is the pipeline entry point.
type Inventory struct {
	resolver    Resolver
	runner      Runner
	newPackager PackagerFactory
	sender      Sender
	knownKinds  map[string]bool
	logger      *telemetry.Logger
	metrics     *telemetry.RunMetrics
}

// New assembles the pipeline. knownKinds is the closed set of
// registered resource kinds; requests naming anything else are
// rejected up front.
func New(resolver Resolver, runner Runner, newPackager PackagerFactory, sender Sender, knownKinds []string) *Inventory {
	known := make(map[string]bool, len(knownKinds))
	for _, kind := range knownKinds {
		known[kind] = true
	}
	return &Inventory{
		resolver:    resolver,
		runner:      runner,
		newPackager: newPackager,
		sender:      sender,
		knownKinds:  known,
		logger:      telemetry.NewLogger("service"),
	}
}

// WithMetrics attaches run metrics.
func (s *Inventory) WithMetrics(m *telemetry.RunMetrics) *Inventory {
	s.metrics = m
	return s
}

// Run executes one inventory request end to end. Errors carry the
// failing stage: InvalidRequestError, NotFoundError or DeliveryError.
// Per-artifact packaging failures are logged and dropped downstream,
// never surfaced here.
func (s *Inventory) Run(ctx context.Context, req *types.InventoryRequest) (*types.InventoryResponse, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, kind := range req.ResourceKinds {
		if !s.knownKinds[kind] {
			return nil, &types.InvalidRequestError{
				Field:  "resourceKinds",
				Reason: fmt.Sprintf("unknown resource kind %q", kind),
			}
		}
	}

	runID := uuid.NewString()
	s.logger.WithContext(ctx).Info().
		Str("run_id", runID).
		Str("scope", string(req.Scope)).
		Str("target", req.Target).
		Strs("kinds", req.ResourceKinds).
		Msg("inventory run accepted")

	accounts, err := s.resolver.ResolveAccounts(ctx, req.Scope, req.Target)
	if err != nil {
		return nil, err
	}

	run, err := s.runner.Run(ctx, accounts, req.ResourceKinds)
	if err != nil {
		return nil, err
	}

	artifacts, err := s.newPackager(runID).Build(ctx, run.Results)
	if err != nil {
		return nil, err
	}

	receipt, err := s.sender.SendReport(ctx, req.Recipient, req.Target, run, artifacts)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RunDuration.Record(ctx, time.Since(started).Seconds())
	}

	return &types.InventoryResponse{
		Status:            runStatus(run, receipt),
		AccountsProcessed: run.AccountsProcessed,
		ArtifactCount:     receipt.ArtifactCount,
		RowsCount:         receipt.TotalRows,
	}, nil
}

func runStatus(run *orchestrator.RunResult, receipt *types.DeliveryReceipt) string {
	if receipt.ArtifactCount == 0 {
		return fmt.Sprintf("completed with no data across %d accounts, notification sent", run.AccountsProcessed)
	}
	status := fmt.Sprintf("delivered %d artifacts (%d rows) for %d accounts",
		receipt.ArtifactCount, receipt.TotalRows, run.AccountsProcessed)
	if run.AccountsSkipped > 0 {
		status += fmt.Sprintf(", %d accounts skipped", run.AccountsSkipped)
	}
	if failed := len(run.Failures()); failed > 0 {
		status += fmt.Sprintf(", %d collections failed", failed)
	}
	return status
}
