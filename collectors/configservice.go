package collectors

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
)

const configQuery = "SELECT resourceId, resourceType, resourceName, awsRegion, resourceCreationTime"

// ConfigCollector queries the AWS Config discovered-resource inventory.
type ConfigCollector struct{}

func (c *ConfigCollector) Kind() string { return "Config" }
func (c *ConfigCollector) Global() bool { return false }

func (c *ConfigCollector) Header() []string {
	return []string{
		"AccountId", "Region", "ResourceId", "ResourceType",
		"ResourceName", "ResourceRegion", "CreationTime",
	}
}

// configItem matches the JSON documents SelectResourceConfig returns for
// the query above.
type configItem struct {
	ResourceID           string `json:"resourceId"`
	ResourceType         string `json:"resourceType"`
	ResourceName         string `json:"resourceName"`
	AwsRegion            string `json:"awsRegion"`
	ResourceCreationTime string `json:"resourceCreationTime"`
}

func (c *ConfigCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	input := &configservice.SelectResourceConfigInput{
		Expression: aws.String(configQuery),
	}

	paginator := configservice.NewSelectResourceConfigPaginator(clients.Config, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			// Accounts without a configuration recorder reject the call.
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, result := range output.Results {
			var item configItem
			if err := json.Unmarshal([]byte(result), &item); err != nil {
				// One malformed document must not fail the account.
				continue
			}
			rows = append(rows, []string{
				accountID,
				region,
				item.ResourceID,
				item.ResourceType,
				item.ResourceName,
				item.AwsRegion,
				item.ResourceCreationTime,
			})
		}
	}

	return rows, nil
}
