package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// RDSCollector lists RDS database instances.
type RDSCollector struct{}

func (c *RDSCollector) Kind() string { return "RDS" }
func (c *RDSCollector) Global() bool { return false }

func (c *RDSCollector) Header() []string {
	return []string{
		"AccountId", "Region", "DBInstanceIdentifier", "Engine", "EngineVersion",
		"DBInstanceClass", "AllocatedStorage", "MultiAZ", "Status", "Endpoint",
	}
}

func (c *RDSCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := rds.NewDescribeDBInstancesPaginator(clients.RDS, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, instance := range output.DBInstances {
			rows = append(rows, c.row(instance, accountID, region))
		}
	}

	return rows, nil
}

func (c *RDSCollector) row(instance rdstypes.DBInstance, accountID, region string) []string {
	var endpoint string
	if instance.Endpoint != nil {
		endpoint = aws.ToString(instance.Endpoint.Address)
	}

	return []string{
		accountID,
		region,
		aws.ToString(instance.DBInstanceIdentifier),
		aws.ToString(instance.Engine),
		aws.ToString(instance.EngineVersion),
		aws.ToString(instance.DBInstanceClass),
		formatInt32(instance.AllocatedStorage),
		formatBool(instance.MultiAZ),
		aws.ToString(instance.DBInstanceStatus),
		endpoint,
	}
}
