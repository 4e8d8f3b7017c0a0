package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Collector lists S3 buckets. Bucket listing is account-wide, so the
// collector is global and runs once per account regardless of the
// configured region list.
type S3Collector struct{}

func (c *S3Collector) Kind() string { return "S3" }
func (c *S3Collector) Global() bool { return true }

func (c *S3Collector) Header() []string {
	return []string{"AccountId", "BucketName", "Region", "CreationDate"}
}

func (c *S3Collector) Collect(ctx context.Context, clients *Clients, accountID, _ string) ([][]string, error) {
	output, err := clients.S3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		if accessDenied(err) {
			return nil, nil
		}
		return nil, err
	}

	rows := make([][]string, 0, len(output.Buckets))
	for _, bucket := range output.Buckets {
		rows = append(rows, []string{
			accountID,
			aws.ToString(bucket.Name),
			c.bucketRegion(ctx, clients, aws.ToString(bucket.Name)),
			formatTime(bucket.CreationDate),
		})
	}

	return rows, nil
}

// bucketRegion resolves a bucket's home region. An empty location
// constraint means us-east-1; lookup failures leave the column blank
// rather than failing the listing.
func (c *S3Collector) bucketRegion(ctx context.Context, clients *Clients, name string) string {
	output, err := clients.S3.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return ""
	}
	if output.LocationConstraint == "" {
		return "us-east-1"
	}
	return string(output.LocationConstraint)
}
