package collectors

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaCollector lists Lambda functions.
type LambdaCollector struct{}

func (c *LambdaCollector) Kind() string { return "Lambda" }
func (c *LambdaCollector) Global() bool { return false }

func (c *LambdaCollector) Header() []string {
	return []string{
		"AccountId", "Region", "FunctionName", "Runtime", "Handler",
		"MemorySize", "Timeout", "CodeSize", "LastModified",
	}
}

func (c *LambdaCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := lambda.NewListFunctionsPaginator(clients.Lambda, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, function := range output.Functions {
			rows = append(rows, []string{
				accountID,
				region,
				aws.ToString(function.FunctionName),
				string(function.Runtime),
				aws.ToString(function.Handler),
				formatInt32(function.MemorySize),
				formatInt32(function.Timeout),
				strconv.FormatInt(function.CodeSize, 10),
				aws.ToString(function.LastModified),
			})
		}
	}

	return rows, nil
}
