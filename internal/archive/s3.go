// Package archive stores report snapshots in an S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"wetmill-backend/internal/config"
	"wetmill-backend/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver returns nil when no bucket is configured.
func NewS3Archiver(ctx context.Context, cfg *config.Config) (*S3Archiver, error) {
	if cfg.Archive.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Archive.Region),
	}
	if cfg.Archive.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})

	logging.Module("archive").WithField("bucket", cfg.Archive.Bucket).Info("report archive enabled")
	return &S3Archiver{client: client, bucket: cfg.Archive.Bucket}, nil
}

func (a *S3Archiver) Bucket() string {
	return a.bucket
}

func (a *S3Archiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
