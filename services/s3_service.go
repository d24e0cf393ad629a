package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ObjectStore is the blob storage behind inspiration images
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Settings locates the bucket inspiration images are written to
type S3Settings struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PresignTTL bounds how long generated download links stay valid
	PresignTTL time.Duration
}

// S3Service stores objects in a private S3 bucket and hands out presigned URLs
type S3Service struct {
	client     *s3.Client
	presign    *s3.PresignClient
	bucket     string
	presignTTL time.Duration
}

// NewS3Service builds an S3 client. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewS3Service(ctx context.Context, settings S3Settings) (*S3Service, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)
	ttl := settings.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &S3Service{
		client:     client,
		presign:    s3.NewPresignClient(client),
		bucket:     settings.Bucket,
		presignTTL: ttl,
	}, nil
}

// Put uploads body under key
func (s *S3Service) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// URL returns a presigned GET link for key
func (s *S3Service) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = s.presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	logger.Log.Debug("generated presigned URL", zap.String("key", key))
	return request.URL, nil
}

// Delete removes key from the bucket
func (s *S3Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
