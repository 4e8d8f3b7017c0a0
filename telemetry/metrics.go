package telemetry

import (
	"go.opentelemetry.io/otel/metric"
)

// RunMetrics holds all inventory run metrics.
type RunMetrics struct {
	// Counters
	AccountsProcessed  metric.Int64Counter
	AccountsSkipped    metric.Int64Counter
	RowsCollected      metric.Int64Counter
	CollectionFailures metric.Int64Counter
	ArtifactsBuilt     metric.Int64Counter
	ArtifactsOffloaded metric.Int64Counter
	BytesDelivered     metric.Int64Counter

	// Histograms
	RunDuration     metric.Float64Histogram
	CollectDuration metric.Float64Histogram
}

// InitRunMetrics initializes all inventory run metrics.
func InitRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	m := &RunMetrics{}

	if err := m.initCounters(meter); err != nil {
		return nil, err
	}

	if err := m.initHistograms(meter); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *RunMetrics) initCounters(meter metric.Meter) error {
	var err error

	m.AccountsProcessed, err = meter.Int64Counter(
		"orgscan.accounts.processed.total",
		metric.WithDescription("Total number of accounts that passed credential delegation"),
		metric.WithUnit("accounts"),
	)
	if err != nil {
		return err
	}

	m.AccountsSkipped, err = meter.Int64Counter(
		"orgscan.accounts.skipped.total",
		metric.WithDescription("Total number of accounts skipped because delegation failed"),
		metric.WithUnit("accounts"),
	)
	if err != nil {
		return err
	}

	m.RowsCollected, err = meter.Int64Counter(
		"orgscan.rows.collected.total",
		metric.WithDescription("Total number of inventory rows collected"),
		metric.WithUnit("rows"),
	)
	if err != nil {
		return err
	}

	m.CollectionFailures, err = meter.Int64Counter(
		"orgscan.collections.failed.total",
		metric.WithDescription("Total number of failed (account, kind) collections"),
		metric.WithUnit("collections"),
	)
	if err != nil {
		return err
	}

	m.ArtifactsBuilt, err = meter.Int64Counter(
		"orgscan.artifacts.built.total",
		metric.WithDescription("Total number of artifacts packaged"),
		metric.WithUnit("artifacts"),
	)
	if err != nil {
		return err
	}

	m.ArtifactsOffloaded, err = meter.Int64Counter(
		"orgscan.artifacts.offloaded.total",
		metric.WithDescription("Total number of oversize artifacts offloaded to blob storage"),
		metric.WithUnit("artifacts"),
	)
	if err != nil {
		return err
	}

	m.BytesDelivered, err = meter.Int64Counter(
		"orgscan.bytes.delivered.total",
		metric.WithDescription("Total bytes of artifact data delivered"),
		metric.WithUnit("By"),
	)
	return err
}

func (m *RunMetrics) initHistograms(meter metric.Meter) error {
	var err error

	m.RunDuration, err = meter.Float64Histogram(
		"orgscan.run.duration",
		metric.WithDescription("Duration of complete inventory runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.CollectDuration, err = meter.Float64Histogram(
		"orgscan.collect.duration",
		metric.WithDescription("Duration of one (account, kind) collection"),
		metric.WithUnit("s"),
	)
	return err
}
