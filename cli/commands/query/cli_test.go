package query_test

import (
	"bytes"
	"testing"

	"github.com/seek-and-deploy/deployer/cli/commands/query"
	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrint(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, query.Print(&out, nil))
	assert.Equal(t, "[]\n", out.String())

	out.Reset()

	resource, err := discovery.NewResourceDescriptor("arn:aws:ec2:us-east-1:123456789012:instance/i-0abc", map[string]string{"env_name": "qa"})
	require.NoError(t, err)

	require.NoError(t, query.Print(&out, []discovery.ResourceDescriptor{resource}))
	assert.JSONEq(t, `[{
		"arn": "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc",
		"service": "ec2",
		"region": "us-east-1",
		"account": "123456789012",
		"resource_type": "instance",
		"resource_id": "i-0abc",
		"tags": {"env_name": "qa"}
	}]`, out.String())
}
