package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

// StepFunctionsCollector lists Step Functions state machines.
type StepFunctionsCollector struct{}

func (c *StepFunctionsCollector) Kind() string { return "StepFunctions" }
func (c *StepFunctionsCollector) Global() bool { return false }

func (c *StepFunctionsCollector) Header() []string {
	return []string{"AccountId", "Region", "Name", "StateMachineArn", "Type", "CreationDate"}
}

func (c *StepFunctionsCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := sfn.NewListStateMachinesPaginator(clients.SFN, &sfn.ListStateMachinesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, machine := range output.StateMachines {
			rows = append(rows, []string{
				accountID,
				region,
				aws.ToString(machine.Name),
				aws.ToString(machine.StateMachineArn),
				string(machine.Type),
				formatTime(machine.CreationDate),
			})
		}
	}

	return rows, nil
}
