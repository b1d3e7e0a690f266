package discovery_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceDescriptor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		arn          string
		service      string
		resourceType string
		resourceID   string
	}{
		{arn: "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc", service: "ec2", resourceType: "instance", resourceID: "i-0abc"},
		{arn: "arn:aws:ec2:us-east-1:123456789012:natgateway/nat-01", service: "ec2", resourceType: "natgateway", resourceID: "nat-01"},
		{arn: "arn:aws:lambda:us-east-1:123456789012:function:web", service: "lambda", resourceType: "function", resourceID: "web"},
		{arn: "arn:aws:s3:::123-web-data", service: "s3", resourceType: "", resourceID: "123-web-data"},
	}

	for _, tc := range testCases {
		t.Run(tc.arn, func(t *testing.T) {
			t.Parallel()

			resource, err := discovery.NewResourceDescriptor(tc.arn, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.service, resource.Service)
			assert.Equal(t, tc.resourceType, resource.ResourceType)
			assert.Equal(t, tc.resourceID, resource.ResourceID)
		})
	}

	_, err := discovery.NewResourceDescriptor("not-an-arn", nil)
	require.Error(t, err)
}

func TestOracleFilters(t *testing.T) {
	t.Parallel()

	oracle := discovery.NewOracle(&fakeProvider{}, log.Discard(), discovery.WithDiscriminatorKey("stack"))

	assert.Equal(t, discovery.TagSet{
		"env_name":       {"dev"},
		"env_version":    {"b"},
		"stack":          {"web"},
		"deployer_state": {"running"},
	}, oracle.Filters(discovery.Query{Name: "dev", Version: "b", Discriminator: "web"}, discovery.StateRunning))

	assert.Equal(t, discovery.TagSet{"env_name": {"dev"}}, oracle.Filters(discovery.Query{Name: "dev"}))
}

func TestOracleExistsLiveness(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{states: map[string]string{
		"i-running": "running",
		"i-stopped": "stopped",
		"nat-ok":    "available",
		"nat-gone":  "deleted",
	}}

	provider.add(instanceARN("i-running"), envTags("dev", "a", "running"))
	provider.add(instanceARN("i-stopped"), envTags("dev", "a", "running"))
	provider.add(instanceARN("i-missing"), envTags("dev", "a", "running"))
	provider.add(natARN("nat-ok"), envTags("dev", "a", "running"))
	provider.add(natARN("nat-gone"), envTags("dev", "a", "running"))
	provider.add(natARN("nat-missing"), envTags("dev", "a", "running"))
	provider.add("arn:aws:s3:::123-dev-a", envTags("dev", "a", "running"))
	provider.add("arn:aws:s3:::123-dev-a-untagged", envTags("dev", "a", ""))
	provider.add("arn:aws:s3:::123-dev-a-destroying", envTags("dev", "a", "destroying"))

	oracle := discovery.NewOracle(provider, log.Discard())

	resources, err := oracle.Exists(context.Background(), discovery.Query{Name: "dev", Version: "a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		instanceARN("i-running"),
		natARN("nat-ok"),
		"arn:aws:s3:::123-dev-a",
	}, discovery.ARNs(resources))

	resources, err = oracle.ExistsInStates(context.Background(), discovery.Query{Name: "dev", Version: "a"}, discovery.StateRunning, discovery.StateDestroying)
	require.NoError(t, err)
	assert.Len(t, resources, 4)
}

func TestOracleExistsSkipsStateLookupForOtherTypes(t *testing.T) {
	t.Parallel()

	// Any state lookup fails, so only instances and NAT gateways may reach one.
	provider := &fakeProvider{stateErr: fmt.Errorf("InvalidInstanceID.Malformed")} //nolint:err113

	arns := []string{
		"arn:aws:iam::123456789012:instance-profile/web",
		"arn:aws:ec2:us-east-1:123456789012:instance-connect-endpoint/eice-0abc",
		"arn:aws:rds:us-east-1:123456789012:db:instance-web",
		"arn:aws:ec2:us-east-1:123456789012:natgateway-attachment/nga-01",
	}

	for _, arn := range arns {
		provider.add(arn, envTags("dev", "a", "running"))
	}

	resources, err := discovery.NewOracle(provider, log.Discard()).Exists(context.Background(), discovery.Query{Name: "dev", Version: "a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, arns, discovery.ARNs(resources))
}

func TestOracleExistsEmpty(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	provider.add("arn:aws:s3:::123-qa-a", envTags("qa", "a", "running"))

	resources, err := discovery.NewOracle(provider, log.Discard()).Exists(context.Background(), discovery.Query{Name: "dev"})
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestOracleExistsPropagatesProviderErrors(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{stateErr: fmt.Errorf("throttled")} //nolint:err113
	provider.add(instanceARN("i-1"), envTags("dev", "", "running"))

	_, err := discovery.NewOracle(provider, log.Discard()).Exists(context.Background(), discovery.Query{Name: "dev"})

	var providerErr discovery.ProviderError
	require.ErrorAs(t, err, &providerErr)

	provider = &fakeProvider{queryErr: fmt.Errorf("denied")} //nolint:err113
	_, err = discovery.NewOracle(provider, log.Discard()).Exists(context.Background(), discovery.Query{Name: "dev"})
	require.ErrorAs(t, err, &providerErr)
}

func TestOracleTagAsState(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{states: map[string]string{}}
	for i := range 45 {
		// stopped and untagged resources are tagged as well
		provider.add(instanceARN(fmt.Sprintf("i-%02d", i)), envTags("dev", "a", ""))
	}

	provider.add(instanceARN("i-other"), envTags("qa", "a", ""))

	oracle := discovery.NewOracle(provider, log.Discard())

	tagged, err := oracle.TagAsState(context.Background(), discovery.Query{Name: "dev", Version: "a"}, discovery.StateDestroying)
	require.NoError(t, err)
	assert.Equal(t, 45, tagged)

	require.Len(t, provider.batches, 3)
	assert.Len(t, provider.batches[0], 20)
	assert.Len(t, provider.batches[1], 20)
	assert.Len(t, provider.batches[2], 5)

	for _, resource := range provider.resources {
		if resource.Tags["env_name"] == "dev" {
			assert.Equal(t, "destroying", resource.Tags["deployer_state"])
		} else {
			assert.NotContains(t, resource.Tags, "deployer_state")
		}
	}
}

func TestOracleTagAsStateStopsAtFailedBatch(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{failBatch: map[int]error{1: fmt.Errorf("throttled")}} //nolint:err113
	for i := range 50 {
		provider.add(instanceARN(fmt.Sprintf("i-%02d", i)), envTags("dev", "", ""))
	}

	tagged, err := discovery.NewOracle(provider, log.Discard()).TagAsState(context.Background(), discovery.Query{Name: "dev"}, discovery.StateRunning)

	var batchErr discovery.BatchTagError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Batch)
	assert.Equal(t, 20, batchErr.Tagged)
	assert.Equal(t, 50, batchErr.Total)
	assert.Equal(t, 20, tagged)
	assert.Len(t, provider.batches, 1)
}

func TestOracleTagAsStateNothingToTag(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}

	tagged, err := discovery.NewOracle(provider, log.Discard()).TagAsState(context.Background(), discovery.Query{Name: "dev"}, discovery.StateRunning)
	require.NoError(t, err)
	assert.Zero(t, tagged)
	assert.Empty(t, provider.batches)
}

func TestOracleLedger(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{}
	provider.add("arn:aws:s3:::dev-c", envTags("dev", "c", "running"))
	provider.add("arn:aws:s3:::dev-a", envTags("dev", "a", "running"))
	provider.add("arn:aws:s3:::dev-a-2", envTags("dev", "a", "running"))
	provider.add("arn:aws:s3:::dev-b", envTags("dev", "b", "destroying"))

	ledger, err := discovery.NewOracle(provider, log.Discard()).Ledger(context.Background(), "dev", "web")
	require.NoError(t, err)
	assert.Equal(t, discovery.VersionLedger{"a", "c"}, ledger)
	assert.True(t, ledger.Contains("c"))
	assert.False(t, ledger.Contains("b"))
}
