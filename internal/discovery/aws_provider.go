package discovery

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/aws/smithy-go"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
)

const (
	errCodeInstanceNotFound   = "InvalidInstanceID.NotFound"
	errCodeNatGatewayNotFound = "NatGatewayNotFound"
)

// TaggingAPI is the part of the Resource Groups Tagging API client used here.
type TaggingAPI interface {
	resourcegroupstaggingapi.GetResourcesAPIClient
	TagResources(ctx context.Context, params *resourcegroupstaggingapi.TagResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.TagResourcesOutput, error)
}

// EC2API is the part of the EC2 client used for liveness checks.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
}

// AWSProvider implements Provider on the AWS tagging and EC2 APIs.
type AWSProvider struct {
	tagging TaggingAPI
	ec2     EC2API
	logger  log.Logger
}

// NewAWSProvider returns a Provider backed by the given clients.
func NewAWSProvider(tagging TaggingAPI, ec2Client EC2API, logger log.Logger) *AWSProvider {
	return &AWSProvider{tagging: tagging, ec2: ec2Client, logger: logger}
}

// QueryByTags implements Provider.
func (provider *AWSProvider) QueryByTags(ctx context.Context, filters TagSet) ([]ResourceDescriptor, error) {
	input := &resourcegroupstaggingapi.GetResourcesInput{}

	for _, key := range filters.Keys() {
		input.TagFilters = append(input.TagFilters, taggingtypes.TagFilter{
			Key:    aws.String(key),
			Values: filters[key],
		})
	}

	var resources []ResourceDescriptor

	paginator := resourcegroupstaggingapi.NewGetResourcesPaginator(provider.tagging, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(err)
		}

		for _, mapping := range page.ResourceTagMappingList {
			tags := make(map[string]string, len(mapping.Tags))
			for _, tag := range mapping.Tags {
				tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
			}

			resource, err := NewResourceDescriptor(aws.ToString(mapping.ResourceARN), tags)
			if err != nil {
				return nil, err
			}

			resources = append(resources, resource)
		}
	}

	provider.logger.Debugf("Tag query %v matched %d resources", filters, len(resources))

	return resources, nil
}

// WriteTags implements Provider.
func (provider *AWSProvider) WriteTags(ctx context.Context, arns []string, tags TagSet) error {
	output, err := provider.tagging.TagResources(ctx, &resourcegroupstaggingapi.TagResourcesInput{
		ResourceARNList: arns,
		Tags:            tags.Flatten(),
	})
	if err != nil {
		return errors.New(err)
	}

	if len(output.FailedResourcesMap) > 0 {
		failures := make(map[string]string, len(output.FailedResourcesMap))
		for resourceARN, info := range output.FailedResourcesMap {
			failures[resourceARN] = aws.ToString(info.ErrorMessage)
		}

		return errors.New(FailedResourcesError{Failures: failures})
	}

	return nil
}

// InstanceState implements Provider.
func (provider *AWSProvider) InstanceState(ctx context.Context, instanceID string) (string, error) {
	output, err := provider.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		if hasErrorCode(err, errCodeInstanceNotFound) {
			return "", ErrNotFound
		}

		return "", errors.New(err)
	}

	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			if instance.State != nil {
				return string(instance.State.Name), nil
			}
		}
	}

	return "", ErrNotFound
}

// NatGatewayState implements Provider.
func (provider *AWSProvider) NatGatewayState(ctx context.Context, gatewayID string) (string, error) {
	output, err := provider.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{gatewayID},
	})
	if err != nil {
		if hasErrorCode(err, errCodeNatGatewayNotFound) {
			return "", ErrNotFound
		}

		return "", errors.New(err)
	}

	if len(output.NatGateways) == 0 {
		return "", ErrNotFound
	}

	return string(output.NatGateways[0].State), nil
}

func hasErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
