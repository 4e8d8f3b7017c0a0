package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBCollector lists DynamoDB tables with size details.
type DynamoDBCollector struct{}

func (c *DynamoDBCollector) Kind() string { return "DynamoDB" }
func (c *DynamoDBCollector) Global() bool { return false }

func (c *DynamoDBCollector) Header() []string {
	return []string{
		"AccountId", "Region", "TableName", "Status", "ItemCount",
		"TableSizeBytes", "BillingMode",
	}
}

func (c *DynamoDBCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := dynamodb.NewListTablesPaginator(clients.DynamoDB, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, name := range output.TableNames {
			rows = append(rows, c.row(ctx, clients, accountID, region, name))
		}
	}

	return rows, nil
}

// row describes one table. A failed describe keeps the table in the
// output with its name only, rather than dropping it.
func (c *DynamoDBCollector) row(ctx context.Context, clients *Clients, accountID, region, name string) []string {
	output, err := clients.DynamoDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil || output.Table == nil {
		return []string{accountID, region, name, "", "", "", ""}
	}

	table := output.Table
	var billing string
	if table.BillingModeSummary != nil {
		billing = string(table.BillingModeSummary.BillingMode)
	}

	return []string{
		accountID,
		region,
		name,
		string(table.TableStatus),
		formatInt64(table.ItemCount),
		formatInt64(table.TableSizeBytes),
		billing,
	}
}
