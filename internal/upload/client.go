// Package upload pushes generated artifacts (CSV exports, packs, run
// state) to S3 so a server admin can fetch them from elsewhere.
package upload

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is the subset of S3 operations the uploader needs.
type S3Client interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentType string) error
}

// AWSS3Client is the concrete implementation of S3Client using the AWS SDK.
type AWSS3Client struct {
	client *s3.Client
	config aws.Config
	bucket string
}

// NewAWSS3Client creates a new AWS S3 client with credential chain support.
// Environment variables, IAM roles and profiles all work.
func NewAWSS3Client(ctx context.Context, region, bucket string) (*AWSS3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSS3Client{
		client: s3.NewFromConfig(cfg),
		config: cfg,
		bucket: bucket,
	}, nil
}

// NewAWSS3ClientWithConfig creates a new AWS S3 client with custom
// configuration.
func NewAWSS3ClientWithConfig(cfg aws.Config, bucket string) *AWSS3Client {
	return &AWSS3Client{
		client: s3.NewFromConfig(cfg),
		config: cfg,
		bucket: bucket,
	}
}

// PutObject uploads a single object to the configured bucket.
func (c *AWSS3Client) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, c.bucket, err)
	}
	return nil
}

// GetRegion returns the region configured for this client.
func (c *AWSS3Client) GetRegion() string {
	return c.config.Region
}
