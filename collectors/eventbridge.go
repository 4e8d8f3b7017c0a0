package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// EventbridgeCollector lists EventBridge rules on the default bus.
type EventbridgeCollector struct{}

func (c *EventbridgeCollector) Kind() string { return "Eventbridge" }
func (c *EventbridgeCollector) Global() bool { return false }

func (c *EventbridgeCollector) Header() []string {
	return []string{
		"AccountId", "Region", "RuleName", "State", "ScheduleExpression",
		"EventBusName", "Description",
	}
}

func (c *EventbridgeCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string
	var nextToken *string

	for {
		output, err := clients.Eventbridge.ListRules(ctx, &eventbridge.ListRulesInput{
			NextToken: nextToken,
		})
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, rule := range output.Rules {
			rows = append(rows, []string{
				accountID,
				region,
				aws.ToString(rule.Name),
				string(rule.State),
				aws.ToString(rule.ScheduleExpression),
				aws.ToString(rule.EventBusName),
				aws.ToString(rule.Description),
			})
		}

		if output.NextToken == nil {
			return rows, nil
		}
		nextToken = output.NextToken
	}
}
