package discovery_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/seek-and-deploy/deployer/internal/discovery"
)

// fakeProvider keeps tagged resources in memory and applies tag filters the way
// the tagging API does.
type fakeProvider struct {
	states    map[string]string
	failBatch map[int]error
	queryErr  error
	stateErr  error
	resources []discovery.ResourceDescriptor
	batches   [][]string
	mu        sync.Mutex
}

func (fake *fakeProvider) add(arn string, tags map[string]string) {
	resource, err := discovery.NewResourceDescriptor(arn, tags)
	if err != nil {
		panic(err)
	}

	fake.resources = append(fake.resources, resource)
}

func (fake *fakeProvider) QueryByTags(_ context.Context, filters discovery.TagSet) ([]discovery.ResourceDescriptor, error) {
	if fake.queryErr != nil {
		return nil, fake.queryErr
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	var matched []discovery.ResourceDescriptor

	for _, resource := range fake.resources {
		ok := true

		for key, values := range filters {
			if value, found := resource.Tags[key]; !found || !slices.Contains(values, value) {
				ok = false
				break
			}
		}

		if ok {
			matched = append(matched, resource)
		}
	}

	return matched, nil
}

func (fake *fakeProvider) WriteTags(_ context.Context, arns []string, tags discovery.TagSet) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if err := fake.failBatch[len(fake.batches)]; err != nil {
		return err
	}

	fake.batches = append(fake.batches, append([]string(nil), arns...))

	for i := range fake.resources {
		if slices.Contains(arns, fake.resources[i].ARN) {
			for key, value := range tags.Flatten() {
				fake.resources[i].Tags[key] = value
			}
		}
	}

	return nil
}

func (fake *fakeProvider) InstanceState(_ context.Context, id string) (string, error) {
	return fake.state(id)
}

func (fake *fakeProvider) NatGatewayState(_ context.Context, id string) (string, error) {
	return fake.state(id)
}

func (fake *fakeProvider) state(id string) (string, error) {
	if fake.stateErr != nil {
		return "", fake.stateErr
	}

	state, ok := fake.states[id]
	if !ok {
		return "", discovery.ErrNotFound
	}

	return state, nil
}

func instanceARN(id string) string {
	return fmt.Sprintf("arn:aws:ec2:us-east-1:123456789012:instance/%s", id)
}

func natARN(id string) string {
	return fmt.Sprintf("arn:aws:ec2:us-east-1:123456789012:natgateway/%s", id)
}

func envTags(name, version, state string) map[string]string {
	tags := map[string]string{discovery.TagKeyEnvName: name, discovery.TagKeyEnvVersion: version, "system_type": "web"}
	if state != "" {
		tags[discovery.TagKeyState] = state
	}

	return tags
}
