// Package aws defines functions used to interact with S3 compatible object storage
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

type Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the AWS endpoint, used for MinIO and R2
	Endpoint string
	// UsePathStyle addresses buckets as <endpoint>/<bucket>, required by MinIO
	UsePathStyle bool
}

// NewS3 creates a client for the configured bucket and makes sure the bucket exists
func NewS3(o Options) (*S3Client, error) {
	if o.Bucket == "" {
		return nil, errors.New("bucket can't be empty")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}

	// Without keys the default chain (env, shared config, IAM role) is used
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), loadOpts...)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
		}
		opts.UsePathStyle = o.UsePathStyle

		// Not every S3 compatible backend understands the newer default checksums
		opts.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		opts.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}
