package blobstore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/orgscan/telemetry"
)

type stubS3 struct {
	lastPut *s3.PutObjectInput
	body    []byte
	putErr  error
}

func (s *stubS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.lastPut = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	s.body = body
	return &s3.PutObjectOutput{}, nil
}

type stubPresigner struct {
	lastKey string
}

func (p *stubPresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.lastKey = aws.ToString(params.Key)
	return &v4.PresignedHTTPRequest{URL: "https://reports.s3.amazonaws.com/" + p.lastKey + "?sig=abc"}, nil
}

func testStore(client API, presigner Presigner) *Store {
	return &Store{
		client:    client,
		presigner: presigner,
		bucket:    "reports",
		prefix:    "inventory",
		runID:     "run-1234",
		expiry:    72 * time.Hour,
		logger:    telemetry.NewLogger("blobstore"),
	}
}

func TestOffloadKeyAndURL(t *testing.T) {
	client := &stubS3{}
	presigner := &stubPresigner{}
	store := testStore(client, presigner)

	url, err := store.Offload(context.Background(), "111111111111_EC2.csv.gz", []byte("payload"))
	require.NoError(t, err)

	require.NotNil(t, client.lastPut)
	assert.Equal(t, "reports", aws.ToString(client.lastPut.Bucket))
	assert.Equal(t, "inventory/run-1234/111111111111_EC2.csv.gz", aws.ToString(client.lastPut.Key))
	assert.Equal(t, "application/gzip", aws.ToString(client.lastPut.ContentType))
	assert.Equal(t, "payload", string(client.body))

	assert.Equal(t, "inventory/run-1234/111111111111_EC2.csv.gz", presigner.lastKey)
	assert.Contains(t, url, "https://reports.s3.amazonaws.com/inventory/run-1234/")
}

func TestOffloadPutFailure(t *testing.T) {
	store := testStore(&stubS3{putErr: assert.AnError}, &stubPresigner{})

	_, err := store.Offload(context.Background(), "x.csv", []byte("payload"))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/gzip", contentType("a.csv.gz"))
	assert.Equal(t, "text/csv", contentType("a.csv"))
	assert.Equal(t, "application/octet-stream", contentType("a.url.txt"))
}
