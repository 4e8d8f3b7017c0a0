// Package report turns collection tables into named artifacts ready
// for delivery, offloading the ones too large to attach.
package report

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/mkarlsen/orgscan/telemetry"
	"github.com/mkarlsen/orgscan/types"
)

// Offloader stores an artifact out of band and returns a fetch URL.
type Offloader interface {
	Offload(ctx context.Context, name string, body []byte) (string, error)
}

// Packager encodes per-(account, kind) tables as CSV. Artifacts at or
// under maxBytes attach directly; larger ones are gzipped, offloaded
// and replaced with a URL reference.
type Packager struct {
	offloader Offloader
	maxBytes  int64
	logger    *telemetry.Logger
	metrics   *telemetry.RunMetrics
}

// NewPackager creates a packager. offloader may be nil when no bucket
// is configured; oversize artifacts are then dropped.
func NewPackager(offloader Offloader, maxBytes int64) *Packager {
	return &Packager{
		offloader: offloader,
		maxBytes:  maxBytes,
		logger:    telemetry.NewLogger("report"),
	}
}

// WithMetrics attaches run metrics.
func (p *Packager) WithMetrics(m *telemetry.RunMetrics) *Packager {
	p.metrics = m
	return p
}

// Build packages every successful collection into an artifact, in
// account-then-kind order. Empty and failed collections produce
// nothing. Packaging failures are scoped to one artifact: the artifact
// is dropped with a loud log and the remaining keys continue.
func (p *Packager) Build(ctx context.Context, results map[types.ResultKey]types.CollectionResult) ([]types.Artifact, error) {
	keys := make([]types.ResultKey, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AccountID != keys[j].AccountID {
			return keys[i].AccountID < keys[j].AccountID
		}
		return keys[i].Kind < keys[j].Kind
	})

	var artifacts []types.Artifact
	for _, key := range keys {
		result := results[key]
		if result.Status != types.StatusSuccess {
			continue
		}

		name := fmt.Sprintf("%s_%s.csv", key.AccountID, key.Kind)
		data, err := encodeCSV(result.Table)
		if err != nil {
			p.dropArtifact(name, err)
			continue
		}

		artifact, ok := p.place(ctx, name, data, result.Table.RowCount())
		if !ok {
			continue
		}
		artifacts = append(artifacts, artifact)

		if p.metrics != nil {
			p.metrics.ArtifactsBuilt.Add(ctx, 1)
		}
	}
	return artifacts, nil
}

// place decides between direct attachment and offload. The boolean is
// false when the artifact had to be dropped.
func (p *Packager) place(ctx context.Context, name string, data []byte, rows int) (types.Artifact, bool) {
	if int64(len(data)) <= p.maxBytes {
		return types.Artifact{Name: name, Data: data, Rows: rows}, true
	}

	if p.offloader == nil {
		p.logger.Error().
			Str("artifact", name).
			Int("bytes", len(data)).
			Msg("artifact over attachment limit and no offload bucket configured, dropping")
		return types.Artifact{}, false
	}

	compressed, err := gzipBytes(data)
	if err != nil {
		p.dropArtifact(name, err)
		return types.Artifact{}, false
	}

	url, err := p.offloader.Offload(ctx, name+".gz", compressed)
	if err != nil {
		p.dropArtifact(name, err)
		return types.Artifact{}, false
	}

	p.logger.Info().
		Str("artifact", name).
		Int("bytes", len(data)).
		Int("compressed_bytes", len(compressed)).
		Msg("artifact offloaded")
	if p.metrics != nil {
		p.metrics.ArtifactsOffloaded.Add(ctx, 1)
	}

	reference := types.Artifact{
		Name:      name + ".url.txt",
		Data:      []byte(url + "\n"),
		Rows:      rows,
		Offloaded: true,
	}
	return reference, true
}

// dropArtifact records a per-artifact packaging failure. The error
// taxonomy marks it, the batch moves on.
func (p *Packager) dropArtifact(name string, err error) {
	p.logger.Error().
		Err(&types.PackagingError{Artifact: name, Err: err}).
		Str("artifact", name).
		Msg("packaging failed, dropping artifact")
}

// encodeCSV writes the header row followed by the data rows.
func encodeCSV(table types.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
