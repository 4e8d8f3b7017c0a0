package collectors

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEC2 struct {
	reservations []ec2types.Reservation
	err          error
}

func (s *stubEC2) DescribeInstances(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ec2.DescribeInstancesOutput{Reservations: s.reservations}, nil
}

func instance(id, name string) ec2types.Instance {
	inst := ec2types.Instance{
		InstanceId:       aws.String(id),
		State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
		InstanceType:     ec2types.InstanceTypeT3Micro,
		PrivateIpAddress: aws.String("10.0.0.5"),
		VpcId:            aws.String("vpc-1"),
		SubnetId:         aws.String("subnet-1"),
	}
	if name != "" {
		inst.Tags = []ec2types.Tag{{Key: aws.String("Name"), Value: aws.String(name)}}
	}
	return inst
}

func TestEC2Collect(t *testing.T) {
	clients := &Clients{EC2: &stubEC2{reservations: []ec2types.Reservation{
		{Instances: []ec2types.Instance{instance("i-abc", "web-1"), instance("i-def", "")}},
	}}}

	c := &EC2Collector{}
	rows, err := c.Collect(context.Background(), clients, "111111111111", "us-east-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		assert.Len(t, row, len(c.Header()))
	}
	assert.Equal(t, "111111111111", rows[0][0])
	assert.Equal(t, "us-east-1", rows[0][1])
	assert.Equal(t, "i-abc", rows[0][2])
	assert.Equal(t, "web-1", rows[0][3])
	assert.Equal(t, "running", rows[0][4])

	// Missing optional fields default to empty, not failure.
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, "", rows[1][7]) // no public IP
}

func TestEC2CollectEmpty(t *testing.T) {
	clients := &Clients{EC2: &stubEC2{}}

	c := &EC2Collector{}
	rows, err := c.Collect(context.Background(), clients, "111111111111", "us-east-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Len(t, c.Header(), 11)
}

func TestEC2CollectAccessDenied(t *testing.T) {
	clients := &Clients{EC2: &stubEC2{err: &smithy.GenericAPIError{Code: "UnauthorizedOperation"}}}

	c := &EC2Collector{}
	rows, err := c.Collect(context.Background(), clients, "111111111111", "us-east-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEC2CollectTransportError(t *testing.T) {
	clients := &Clients{EC2: &stubEC2{err: &smithy.GenericAPIError{Code: "InternalError"}}}

	c := &EC2Collector{}
	_, err := c.Collect(context.Background(), clients, "111111111111", "us-east-1")
	assert.Error(t, err)
}
