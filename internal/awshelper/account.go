package awshelper

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/seek-and-deploy/deployer/internal/errors"
)

// STSAPI is the part of the STS client used here.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IAMAPI is the part of the IAM client used here.
type IAMAPI interface {
	ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error)
}

// ZonesAPI is the part of the EC2 client used here.
type ZonesAPI interface {
	DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
}

// GetAccountID returns the account id of the caller.
func GetAccountID(ctx context.Context, client STSAPI) (string, error) {
	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", errors.Errorf("Error getting AWS caller identity: %w", err)
	}

	return aws.ToString(result.Account), nil
}

// GetAccountAlias returns the first alias of the account, or "" when it has none.
func GetAccountAlias(ctx context.Context, client IAMAPI) (string, error) {
	result, err := client.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		return "", errors.Errorf("Error listing AWS account aliases: %w", err)
	}

	if len(result.AccountAliases) == 0 {
		return "", nil
	}

	return result.AccountAliases[0], nil
}

// VerifyProfile makes sure the credentials in use belong to the account whose
// alias is the configured profile name, so that a stale AWS_PROFILE can never
// deploy into the wrong account.
func VerifyProfile(ctx context.Context, client IAMAPI, profile string) error {
	alias, err := GetAccountAlias(ctx, client)
	if err != nil {
		return err
	}

	if alias != profile {
		return ProfileMismatchError{Profile: profile, Alias: alias}
	}

	return nil
}

// AvailabilityZones returns the sorted names of the zones available in the
// client's region.
func AvailabilityZones(ctx context.Context, client ZonesAPI) ([]string, error) {
	result, err := client.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{string(ec2types.AvailabilityZoneStateAvailable)}},
		},
	})
	if err != nil {
		return nil, errors.Errorf("Error describing availability zones: %w", err)
	}

	zones := make([]string, 0, len(result.AvailabilityZones))
	for _, zone := range result.AvailabilityZones {
		zones = append(zones, aws.ToString(zone.ZoneName))
	}

	sort.Strings(zones)

	return zones, nil
}
