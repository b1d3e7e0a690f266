// Package awshelper builds AWS SDK configuration from a CloudContext and answers
// account-level questions: who am I, which alias does the account carry and which
// availability zones does the region offer.
package awshelper

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/gruntwork-io/go-commons/version"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
)

const (
	DefaultRegion = "us-east-1"

	EnvNameProfile         = "AWS_PROFILE"
	EnvNameRegion          = "AWS_REGION"
	EnvNameDefaultRegion   = "AWS_DEFAULT_REGION"
	EnvNameAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvNameSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvNameSessionToken    = "AWS_SESSION_TOKEN"
)

// CloudContext identifies the AWS account and region an operation runs against.
// It is passed by value to every AWS client and to the terraform process; the
// deployer never exports it through its own process environment.
type CloudContext struct {
	Profile         string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewCloudContext returns a CloudContext for the profile and region. Static
// credentials found in env take precedence over the profile, as they do for the
// AWS CLI.
func NewCloudContext(profile, region string, env map[string]string) CloudContext {
	cloud := CloudContext{Profile: profile, Region: region}

	if env[EnvNameAccessKeyID] != "" && env[EnvNameSecretAccessKey] != "" {
		cloud.AccessKeyID = env[EnvNameAccessKeyID]
		cloud.SecretAccessKey = env[EnvNameSecretAccessKey]
		cloud.SessionToken = env[EnvNameSessionToken]
	}

	if cloud.Region == "" {
		cloud.Region = regionFromEnv(env)
	}

	return cloud
}

// HasStaticCredentials reports whether explicit keys were supplied.
func (cloud CloudContext) HasStaticCredentials() bool {
	return cloud.AccessKeyID != "" && cloud.SecretAccessKey != ""
}

// Build loads the AWS SDK configuration for the context.
func (cloud CloudContext) Build(ctx context.Context, logger log.Logger) (aws.Config, error) {
	region := cloud.Region
	if region == "" {
		region = DefaultRegion
	}

	opts := []func(*config.LoadOptions) error{
		config.WithAppID("deployer/" + version.GetVersion()),
		config.WithRegion(region),
	}

	if cloud.HasStaticCredentials() {
		logger.Debugf("Using static AWS credentials from the environment")

		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cloud.AccessKeyID, cloud.SecretAccessKey, cloud.SessionToken),
		))
	} else if cloud.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cloud.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Errorf("Error loading AWS config for profile %q: %w", cloud.Profile, err)
	}

	return cfg, nil
}

// Env returns a copy of base with the context's profile, region and credentials
// set, for child processes such as terraform.
func (cloud CloudContext) Env(base map[string]string) map[string]string {
	env := make(map[string]string, len(base)+6) //nolint:mnd
	for key, value := range base {
		env[key] = value
	}

	if cloud.Profile != "" {
		env[EnvNameProfile] = cloud.Profile
	}

	if cloud.Region != "" {
		env[EnvNameRegion] = cloud.Region
		env[EnvNameDefaultRegion] = cloud.Region
	}

	if cloud.HasStaticCredentials() {
		env[EnvNameAccessKeyID] = cloud.AccessKeyID
		env[EnvNameSecretAccessKey] = cloud.SecretAccessKey

		if cloud.SessionToken != "" {
			env[EnvNameSessionToken] = cloud.SessionToken
		}
	}

	return env
}

func regionFromEnv(env map[string]string) string {
	if region := env[EnvNameRegion]; region != "" {
		return region
	}

	return env[EnvNameDefaultRegion]
}
