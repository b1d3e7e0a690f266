package discovery

import (
	"context"
	"sort"

	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
)

const (
	// TagBatchSize is the largest number of resources the tagging API accepts per call.
	TagBatchSize = 20

	instanceRunning   = "running"
	natGatewayDeleted = "deleted"

	serviceEC2             = "ec2"
	resourceTypeInstance   = "instance"
	resourceTypeNatGateway = "natgateway"
)

// Provider is the cloud API used by the Oracle.
type Provider interface {
	// QueryByTags returns every resource matching all the filters.
	QueryByTags(ctx context.Context, filters TagSet) ([]ResourceDescriptor, error)
	// WriteTags sets the first value of each tag on every resource, in one call.
	WriteTags(ctx context.Context, arns []string, tags TagSet) error
	// InstanceState returns the run state of an instance, or ErrNotFound.
	InstanceState(ctx context.Context, instanceID string) (string, error)
	// NatGatewayState returns the state of a NAT gateway, or ErrNotFound.
	NatGatewayState(ctx context.Context, gatewayID string) (string, error)
}

// Query selects the resources of one environment.
type Query struct {
	// Name is the environment base name.
	Name string
	// Version narrows the query to one version when set.
	Version string
	// Discriminator narrows the query to one system type when set.
	Discriminator string
}

// Oracle answers whether an environment exists and maintains its lifecycle tag.
type Oracle struct {
	provider         Provider
	logger           log.Logger
	discriminatorKey string
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithDiscriminatorKey sets the tag key holding the discriminator.
func WithDiscriminatorKey(key string) Option {
	return func(oracle *Oracle) {
		if key != "" {
			oracle.discriminatorKey = key
		}
	}
}

// NewOracle returns an Oracle backed by provider.
func NewOracle(provider Provider, logger log.Logger, opts ...Option) *Oracle {
	oracle := &Oracle{
		provider:         provider,
		logger:           logger,
		discriminatorKey: DefaultDiscriminatorKey,
	}

	for _, opt := range opts {
		opt(oracle)
	}

	return oracle
}

// Filters returns the tag filters selecting the environment's resources in any of
// the given lifecycle states, or in any state when none is given.
func (oracle *Oracle) Filters(query Query, states ...string) TagSet {
	filters := TagSet{TagKeyEnvName: {query.Name}}

	if len(states) > 0 {
		filters[TagKeyState] = append([]string(nil), states...)
	}

	if query.Version != "" {
		filters[TagKeyEnvVersion] = []string{query.Version}
	}

	if query.Discriminator != "" {
		filters[oracle.discriminatorKey] = []string{query.Discriminator}
	}

	return filters
}

// Exists returns the live resources of a running environment. An empty result
// means the environment does not exist.
func (oracle *Oracle) Exists(ctx context.Context, query Query) ([]ResourceDescriptor, error) {
	return oracle.ExistsInStates(ctx, query, StateRunning)
}

// ExistsInStates is Exists for resources tagged with any of the given states.
func (oracle *Oracle) ExistsInStates(ctx context.Context, query Query, states ...string) ([]ResourceDescriptor, error) {
	resources, err := oracle.provider.QueryByTags(ctx, oracle.Filters(query, states...))
	if err != nil {
		return nil, errors.New(ProviderError{Op: "query resources by tags", Err: err})
	}

	live := make([]ResourceDescriptor, 0, len(resources))

	for _, resource := range resources {
		ok, err := oracle.isLive(ctx, resource)
		if err != nil {
			return nil, err
		}

		if ok {
			live = append(live, resource)
		}
	}

	oracle.logger.Debugf("Found %d live of %d tagged resources for %s", len(live), len(resources), query.Name)

	return live, nil
}

func (oracle *Oracle) isLive(ctx context.Context, resource ResourceDescriptor) (bool, error) {
	logger := oracle.logger.WithField(log.FieldKeyARN, resource.ARN)

	switch {
	case resource.Service == serviceEC2 && resource.ResourceType == resourceTypeInstance:
		state, err := oracle.provider.InstanceState(ctx, resource.ResourceID)
		if errors.Is(err, ErrNotFound) {
			logger.Debugf("Instance %s no longer exists", resource.ResourceID)
			return false, nil
		}

		if err != nil {
			return false, errors.New(ProviderError{Op: "describe instance " + resource.ResourceID, Err: err})
		}

		if state != instanceRunning {
			logger.Debugf("Ignoring instance %s in state %s", resource.ResourceID, state)
			return false, nil
		}

	case resource.Service == serviceEC2 && resource.ResourceType == resourceTypeNatGateway:
		state, err := oracle.provider.NatGatewayState(ctx, resource.ResourceID)
		if errors.Is(err, ErrNotFound) {
			logger.Debugf("NAT gateway %s no longer exists", resource.ResourceID)
			return false, nil
		}

		if err != nil {
			return false, errors.New(ProviderError{Op: "describe NAT gateway " + resource.ResourceID, Err: err})
		}

		if state == natGatewayDeleted {
			logger.Debugf("Ignoring deleted NAT gateway %s", resource.ResourceID)
			return false, nil
		}
	}

	return true, nil
}

// TagAsState sets the lifecycle tag of every resource of the environment,
// whatever its current state or liveness, and returns the number of resources
// tagged. Batches are written one after the other; the first failure stops the
// run and earlier batches stay applied.
func (oracle *Oracle) TagAsState(ctx context.Context, query Query, state string) (int, error) {
	resources, err := oracle.provider.QueryByTags(ctx, oracle.Filters(query))
	if err != nil {
		return 0, errors.New(ProviderError{Op: "query resources by tags", Err: err})
	}

	arns := ARNs(resources)
	payload := TagSet{TagKeyState: {state}}
	tagged := 0

	for batch, start := 0, 0; start < len(arns); batch, start = batch+1, start+TagBatchSize {
		end := min(start+TagBatchSize, len(arns))

		if err := oracle.provider.WriteTags(ctx, arns[start:end], payload); err != nil {
			return tagged, errors.New(BatchTagError{Batch: batch, Tagged: tagged, Total: len(arns), Err: err})
		}

		tagged = end
	}

	oracle.logger.Infof("Tagged %d resources of %s as %s", tagged, query.Name, state)

	return tagged, nil
}

// VersionLedger is the sorted set of versions in use for a base name.
type VersionLedger []string

// Contains reports whether version is in use.
func (ledger VersionLedger) Contains(version string) bool {
	idx := sort.SearchStrings(ledger, version)
	return idx < len(ledger) && ledger[idx] == version
}

// Ledger returns the versions of the running environments named base.
func (oracle *Oracle) Ledger(ctx context.Context, base, discriminator string) (VersionLedger, error) {
	resources, err := oracle.Exists(ctx, Query{Name: base, Discriminator: discriminator})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ledger := VersionLedger{}

	for _, resource := range resources {
		version := resource.Tags[TagKeyEnvVersion]
		if _, ok := seen[version]; ok || version == "" {
			continue
		}

		seen[version] = struct{}{}
		ledger = append(ledger, version)
	}

	sort.Strings(ledger)

	return ledger, nil
}
