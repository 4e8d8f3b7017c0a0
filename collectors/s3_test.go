package collectors

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct {
	buckets   []s3types.Bucket
	locations map[string]s3types.BucketLocationConstraint
	locErr    error
}

func (s *stubS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{Buckets: s.buckets}, nil
}

func (s *stubS3) GetBucketLocation(_ context.Context, in *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	if s.locErr != nil {
		return nil, s.locErr
	}
	return &s3.GetBucketLocationOutput{
		LocationConstraint: s.locations[aws.ToString(in.Bucket)],
	}, nil
}

func TestS3Collect(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clients := &Clients{S3: &stubS3{
		buckets: []s3types.Bucket{
			{Name: aws.String("data-lake"), CreationDate: aws.Time(created)},
			{Name: aws.String("logs")},
		},
		locations: map[string]s3types.BucketLocationConstraint{
			"data-lake": s3types.BucketLocationConstraintEuWest1,
		},
	}}

	c := &S3Collector{}
	rows, err := c.Collect(context.Background(), clients, "111111111111", "ignored-region")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"111111111111", "data-lake", "eu-west-1", "2024-03-01T12:00:00Z"}, rows[0])
	// Empty location constraint means us-east-1; missing creation date is blank.
	assert.Equal(t, []string{"111111111111", "logs", "us-east-1", ""}, rows[1])
}

func TestS3CollectEmptyKeepsHeader(t *testing.T) {
	clients := &Clients{S3: &stubS3{}}

	c := &S3Collector{}
	rows, err := c.Collect(context.Background(), clients, "111111111111", "")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, []string{"AccountId", "BucketName", "Region", "CreationDate"}, c.Header())
}
