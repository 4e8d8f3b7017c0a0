// Package blobstore stores oversize report artifacts in S3 and hands
// out presigned URLs for retrieval.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/telemetry"
)

// API is the slice of the S3 surface the store writes through.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner signs GET requests for stored objects.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store namespaces every object under <prefix>/<runID>/ so artifacts
// from concurrent runs never collide.
type Store struct {
	client    API
	presigner Presigner
	bucket    string
	prefix    string
	runID     string
	expiry    time.Duration
	logger    *telemetry.Logger
}

// NewStore creates a store bound to one run.
func NewStore(client *s3.Client, cfg config.Offload, runID string) *Store {
	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		runID:     runID,
		expiry:    cfg.URLExpiry,
		logger:    telemetry.NewLogger("blobstore"),
	}
}

// Offload uploads the body and returns a presigned GET URL valid for
// the configured expiry.
func (s *Store) Offload(ctx context.Context, name string, body []byte) (string, error) {
	key := path.Join(s.prefix, s.runID, name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	signed, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}

	s.logger.WithContext(ctx).Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("bytes", len(body)).
		Dur("expiry", s.expiry).
		Msg("artifact stored")

	return signed.URL, nil
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
