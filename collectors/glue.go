package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

// GlueCollector lists Glue jobs.
type GlueCollector struct{}

func (c *GlueCollector) Kind() string { return "Glue" }
func (c *GlueCollector) Global() bool { return false }

func (c *GlueCollector) Header() []string {
	return []string{
		"AccountId", "Region", "JobName", "Role", "GlueVersion",
		"WorkerType", "NumberOfWorkers", "CreatedOn",
	}
}

func (c *GlueCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := glue.NewGetJobsPaginator(clients.Glue, &glue.GetJobsInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, job := range output.Jobs {
			rows = append(rows, []string{
				accountID,
				region,
				aws.ToString(job.Name),
				aws.ToString(job.Role),
				aws.ToString(job.GlueVersion),
				string(job.WorkerType),
				formatInt32(job.NumberOfWorkers),
				formatTime(job.CreatedOn),
			})
		}
	}

	return rows, nil
}
