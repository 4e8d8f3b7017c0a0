package collectors

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EC2Collector lists EC2 instances.
type EC2Collector struct{}

func (c *EC2Collector) Kind() string { return "EC2" }
func (c *EC2Collector) Global() bool { return false }

func (c *EC2Collector) Header() []string {
	return []string{
		"AccountId", "Region", "InstanceId", "Name", "State", "InstanceType",
		"PrivateIpAddress", "PublicIpAddress", "VpcId", "SubnetId", "LaunchTime",
	}
}

func (c *EC2Collector) Collect(ctx context.Context, clients *Clients, accountID, region string) ([][]string, error) {
	var rows [][]string

	paginator := ec2.NewDescribeInstancesPaginator(clients.EC2, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			if accessDenied(err) {
				return rows, nil
			}
			return nil, err
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				rows = append(rows, c.row(instance, accountID, region))
			}
		}
	}

	return rows, nil
}

func (c *EC2Collector) row(instance ec2types.Instance, accountID, region string) []string {
	var state string
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	return []string{
		accountID,
		region,
		aws.ToString(instance.InstanceId),
		ec2TagValue(instance.Tags, "Name"),
		state,
		string(instance.InstanceType),
		aws.ToString(instance.PrivateIpAddress),
		aws.ToString(instance.PublicIpAddress),
		aws.ToString(instance.VpcId),
		aws.ToString(instance.SubnetId),
		formatTime(instance.LaunchTime),
	}
}

func ec2TagValue(tags []ec2types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
