// Package storage manages the S3 objects owned by an environment: its folder in
// the project data bucket, its terraform state object and staged artifacts.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/util"
)

const (
	s3MaxRetries          = 3
	s3SleepBetweenRetries = 5 * time.Second

	folderDelimiter = "/"

	errCodeNotFound  = "NotFound"
	errCodeNoSuchKey = "NoSuchKey"
)

var retriableErrorCodes = []string{"InternalError", "SlowDown", "ServiceUnavailable", "RequestTimeout", "OperationAborted"}

// S3API is the part of the S3 client used here.
type S3API interface {
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Client wraps S3 for the environment lifecycle.
type Client struct {
	s3                  S3API
	logger              log.Logger
	region              string
	sleepBetweenRetries time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithSleepBetweenRetries overrides the delay between retried deletes.
func WithSleepBetweenRetries(sleep time.Duration) Option {
	return func(client *Client) {
		client.sleepBetweenRetries = sleep
	}
}

// NewClient returns a Client for buckets in region.
func NewClient(s3Client S3API, region string, logger log.Logger, opts ...Option) *Client {
	client := &Client{
		s3:                  s3Client,
		logger:              logger,
		region:              region,
		sleepBetweenRetries: s3SleepBetweenRetries,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BucketName returns the name of a project bucket, `<account>-<project>-<suffix>`.
func BucketName(account, project, suffix string) string {
	return fmt.Sprintf("%s-%s-%s", account, project, suffix)
}

// BucketExists returns true if the bucket exists and is reachable.
func (client *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if _, err := client.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, errors.Errorf("Error checking bucket %s: %w", bucket, err)
	}

	return true, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (client *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil || exists {
		return err
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if client.region != "" && client.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(client.region),
		}
	}

	client.logger.Infof("Creating S3 bucket %s", bucket)

	if _, err := client.s3.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}

		return errors.Errorf("Error creating bucket %s: %w", bucket, err)
	}

	return nil
}

// ObjectExists returns true if the object exists.
func (client *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	input := &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}

	if _, err := client.s3.HeadObject(ctx, input); err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, errors.Errorf("Error checking object s3://%s/%s: %w", bucket, key, err)
	}

	return true, nil
}

// CreateFolder creates the empty `<folder>/` marker object.
func (client *Client) CreateFolder(ctx context.Context, bucket, folder string) error {
	key := folderKey(folder)

	_, err := client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return errors.Errorf("Error creating folder s3://%s/%s: %w", bucket, key, err)
	}

	client.logger.Debugf("Created folder s3://%s/%s", bucket, key)

	return nil
}

// DeleteFolder deletes every object under `<folder>/`, the marker included.
func (client *Client) DeleteFolder(ctx context.Context, bucket, folder string) error {
	prefix := folderKey(folder)

	paginator := s3.NewListObjectsV2Paginator(client.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	deleted := 0

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errors.Errorf("failed to list objects under s3://%s/%s: %w", bucket, prefix, err)
		}

		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, item := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: item.Key})
		}

		output, err := client.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return errors.Errorf("failed to delete objects under s3://%s/%s: %w", bucket, prefix, err)
		}

		if len(output.Errors) > 0 {
			first := output.Errors[0]
			return errors.Errorf("failed to delete %d objects under s3://%s/%s, first: %s: %s",
				len(output.Errors), bucket, prefix, aws.ToString(first.Key), aws.ToString(first.Message))
		}

		deleted += len(objects)
	}

	client.logger.Infof("Deleted %d objects under s3://%s/%s", deleted, bucket, prefix)

	return nil
}

// DeleteObject deletes the object if it exists, retrying throttled calls.
func (client *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	if exists, err := client.ObjectExists(ctx, bucket, key); err != nil || !exists {
		return err
	}

	description := fmt.Sprintf("Delete S3 object s3://%s/%s", bucket, key)

	return util.DoWithRetry(ctx, description, s3MaxRetries, client.sleepBetweenRetries, client.logger, func(ctx context.Context) error {
		_, err := client.s3.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err == nil {
			return nil
		}

		if isRetriable(err) {
			return err
		}

		return util.FatalError{Underlying: errors.Errorf("Error deleting s3://%s/%s: %w", bucket, key, err)}
	})
}

// Download writes the object to dest, creating parent directories.
func (client *Client) Download(ctx context.Context, bucket, key, dest string) error {
	output, err := client.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return errors.Errorf("Error downloading s3://%s/%s: %w", bucket, key, err)
	}
	defer output.Body.Close()

	if err := util.EnsureDirectory(filepath.Dir(dest)); err != nil {
		return err
	}

	file, err := os.Create(dest)
	if err != nil {
		return errors.New(err)
	}

	if _, err := io.Copy(file, output.Body); err != nil {
		file.Close()    //nolint:errcheck
		os.Remove(dest) //nolint:errcheck

		return errors.Errorf("Error writing %s: %w", dest, err)
	}

	if err := file.Close(); err != nil {
		return errors.Errorf("Error writing %s: %w", dest, err)
	}

	client.logger.Debugf("Downloaded s3://%s/%s to %s", bucket, key, dest)

	return nil
}

func folderKey(folder string) string {
	return strings.TrimSuffix(folder, folderDelimiter) + folderDelimiter
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	code := apiErr.ErrorCode()

	return code == errCodeNotFound || code == errCodeNoSuchKey
}

func isRetriable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	for _, code := range retriableErrorCodes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}

	return false
}
