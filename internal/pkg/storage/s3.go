package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrBucketNotFound is returned when the target bucket does not exist.
// Retrying cannot fix it.
var ErrBucketNotFound = errors.New("storage bucket not found")

// S3Config configures an S3-compatible endpoint (Supabase storage S3
// gateway, MinIO or AWS itself).
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Store implements ObjectStore over the S3 API.
type S3Store struct {
	client    *s3.Client
	publicURL string
}

// NewS3Store creates a path-style S3 client.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{
		client:    client,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores an object.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, classify(err))
	}
	return nil
}

// Remove deletes keys in one batch request.
func (s *S3Store) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ids := make([]types.ObjectIdentifier, len(keys))
	for i, k := range keys {
		ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("remove from %s: %w", bucket, classify(err))
	}

	var failed []string
	for _, e := range out.Errors {
		if aws.ToString(e.Code) == "NoSuchKey" {
			continue
		}
		failed = append(failed, aws.ToString(e.Key)+": "+aws.ToString(e.Message))
	}
	if len(failed) > 0 {
		return fmt.Errorf("remove from %s: %s", bucket, strings.Join(failed, "; "))
	}
	return nil
}

// PublicURL returns the public object URL.
func (s *S3Store) PublicURL(bucket, key string) string {
	return s.publicURL + "/" + bucket + "/" + key
}

func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return ErrBucketNotFound
	}
	return err
}
