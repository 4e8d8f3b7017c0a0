package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

// Per-service client interfaces. Each covers only the operations the
// matching collector uses, so tests inject stubs without the SDK. The
// SDK's generated *APIClient interfaces are reused where a paginator
// exists for the operation.

// EC2Client lists instances.
type EC2Client interface {
	ec2.DescribeInstancesAPIClient
}

// S3Client lists buckets and their locations. Bucket listing is a single
// unpaginated call; S3 returns every bucket in the account.
type S3Client interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
}

// LambdaClient lists functions.
type LambdaClient interface {
	lambda.ListFunctionsAPIClient
}

// RDSClient lists database instances.
type RDSClient interface {
	rds.DescribeDBInstancesAPIClient
}

// DynamoDBClient lists and describes tables.
type DynamoDBClient interface {
	dynamodb.ListTablesAPIClient
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// GlueClient lists jobs.
type GlueClient interface {
	glue.GetJobsAPIClient
}

// EventbridgeClient lists rules. The ListRules operation pages by
// NextToken without a generated paginator.
type EventbridgeClient interface {
	ListRules(ctx context.Context, params *eventbridge.ListRulesInput, optFns ...func(*eventbridge.Options)) (*eventbridge.ListRulesOutput, error)
}

// SFNClient lists state machines.
type SFNClient interface {
	sfn.ListStateMachinesAPIClient
}

// SecurityHubClient pages findings.
type SecurityHubClient interface {
	securityhub.GetFindingsAPIClient
}

// ConfigClient queries the discovered-resource inventory.
type ConfigClient interface {
	configservice.SelectResourceConfigAPIClient
}

// Clients bundles every service client a collector may need for one
// (account, region) pair.
type Clients struct {
	EC2         EC2Client
	S3          S3Client
	Lambda      LambdaClient
	RDS         RDSClient
	DynamoDB    DynamoDBClient
	Glue        GlueClient
	Eventbridge EventbridgeClient
	SFN         SFNClient
	SecurityHub SecurityHubClient
	Config      ConfigClient
}

// ClientFactory builds a client set from delegated credentials and a
// region. The orchestrator calls it once per (account, region).
type ClientFactory func(creds aws.CredentialsProvider, region string) *Clients

// NewClientFactory returns the production factory: SDK clients built
// from a copy of the base config carrying the delegated credentials.
func NewClientFactory(base aws.Config) ClientFactory {
	return func(creds aws.CredentialsProvider, region string) *Clients {
		cfg := base.Copy()
		cfg.Credentials = creds
		cfg.Region = region

		return &Clients{
			EC2:         ec2.NewFromConfig(cfg),
			S3:          s3.NewFromConfig(cfg),
			Lambda:      lambda.NewFromConfig(cfg),
			RDS:         rds.NewFromConfig(cfg),
			DynamoDB:    dynamodb.NewFromConfig(cfg),
			Glue:        glue.NewFromConfig(cfg),
			Eventbridge: eventbridge.NewFromConfig(cfg),
			SFN:         sfn.NewFromConfig(cfg),
			SecurityHub: securityhub.NewFromConfig(cfg),
			Config:      configservice.NewFromConfig(cfg),
		}
	}
}
