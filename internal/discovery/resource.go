// Package discovery finds the cloud resources that belong to an environment by
// their tags and decides whether the environment exists.
//
// Resources are tagged by Terraform with the environment name, version and
// discriminator. The deployer adds a lifecycle tag, deployer_state, once an
// environment has been created or while it is being destroyed.
package discovery

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/seek-and-deploy/deployer/internal/errors"
)

// Tag vocabulary.
const (
	TagKeyEnvName    = "env_name"
	TagKeyEnvVersion = "env_version"
	TagKeyState      = "deployer_state"

	DefaultDiscriminatorKey = "system_type"
)

// Lifecycle states written to TagKeyState.
const (
	StateRunning    = "running"
	StateDestroying = "destroying"
)

// TagSet maps a tag key to its accepted values. As a query filter a resource
// matches when it carries every key with any of the values; as a write payload
// only the first value of each key is used.
type TagSet map[string][]string

// Keys returns the sorted keys.
func (tags TagSet) Keys() []string {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Flatten returns the first value of every key that has one.
func (tags TagSet) Flatten() map[string]string {
	flat := make(map[string]string, len(tags))

	for key, values := range tags {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}

	return flat
}

// Clone returns a deep copy.
func (tags TagSet) Clone() TagSet {
	clone := make(TagSet, len(tags))
	for key, values := range tags {
		clone[key] = append([]string(nil), values...)
	}

	return clone
}

// ResourceDescriptor is a tagged resource found by discovery.
type ResourceDescriptor struct {
	Tags         map[string]string `json:"tags,omitempty"`
	ARN          string            `json:"arn"`
	Service      string            `json:"service"`
	Region       string            `json:"region"`
	Account      string            `json:"account"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
}

// NewResourceDescriptor parses the ARN into its components.
func NewResourceDescriptor(resourceARN string, tags map[string]string) (ResourceDescriptor, error) {
	parsed, err := arn.Parse(resourceARN)
	if err != nil {
		return ResourceDescriptor{}, errors.Errorf("invalid resource ARN %q: %w", resourceARN, err)
	}

	descriptor := ResourceDescriptor{
		ARN:        resourceARN,
		Service:    parsed.Service,
		Region:     parsed.Region,
		Account:    parsed.AccountID,
		ResourceID: parsed.Resource,
		Tags:       tags,
	}

	if idx := strings.IndexAny(parsed.Resource, "/:"); idx >= 0 {
		descriptor.ResourceType = parsed.Resource[:idx]
		descriptor.ResourceID = parsed.Resource[idx+1:]
	}

	return descriptor, nil
}

// ARNs returns the ARNs of the resources.
func ARNs(resources []ResourceDescriptor) []string {
	arns := make([]string, len(resources))
	for i, resource := range resources {
		arns[i] = resource.ARN
	}

	return arns
}
