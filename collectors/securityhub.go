package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	shtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"
)

// SecurityHubCollector pages active Security Hub findings.
type SecurityHubCollector struct{}

func (c *SecurityHubCollector) Kind() string { return "SecurityHub" }
func (c *SecurityHubCollector) Global() bool { return false }

func (c *SecurityHubCollector) Header() []string {
	return []string{
		"AccountId", "Region", "FindingId", "Title", "Severity",
		"ResourceId", "ComplianceStatus", "WorkflowStatus", "UpdatedAt",
	}
}

func (c *SecurityHubCollector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	input := &securityhub.GetFindingsInput{
		Filters: &shtypes.AwsSecurityFindingFilters{
			RecordState: []shtypes.StringFilter{
				{Value: aws.String("ACTIVE"), Comparison: shtypes.StringFilterComparisonEquals},
			},
		},
	}

	paginator := securityhub.NewGetFindingsPaginator(clients.SecurityHub, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			// Accounts without Security Hub enabled reject the call.
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, finding := range output.Findings {
			rows = append(rows, c.row(finding, accountID, region))
		}
	}

	return rows, nil
}

func (c *SecurityHubCollector) row(finding shtypes.AwsSecurityFinding, accountID, region string) []string {
	var severity string
	if finding.Severity != nil {
		severity = string(finding.Severity.Label)
	}
	var resourceID string
	if len(finding.Resources) > 0 {
		resourceID = aws.ToString(finding.Resources[0].Id)
	}
	var compliance string
	if finding.Compliance != nil {
		compliance = string(finding.Compliance.Status)
	}
	var workflow string
	if finding.Workflow != nil {
		workflow = string(finding.Workflow.Status)
	}

	return []string{
		accountID,
		region,
		aws.ToString(finding.Id),
		aws.ToString(finding.Title),
		severity,
		resourceID,
		compliance,
		workflow,
		aws.ToString(finding.UpdatedAt),
	}
}
