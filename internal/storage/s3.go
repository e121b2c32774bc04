package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/pkg/errors"
)

const csvContentType = "text/csv; charset=utf-8"

// s3API is the part of the S3 client the store uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store writes export files to an S3-compatible bucket (AWS S3, MinIO)
type S3Store struct {
	client s3API
	bucket string
	prefix string
	logger *zap.Logger
}

// S3StoreOption is a functional option for configuring S3Store
type S3StoreOption func(*S3Store)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3StoreOption {
	return func(s *S3Store) {
		s.logger = logger
	}
}

// WithClient replaces the S3 client
func WithClient(client s3API) S3StoreOption {
	return func(s *S3Store) {
		s.client = client
	}
}

// NewS3Store creates an S3Store from configuration. Static credentials are used when set,
// otherwise the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg config.S3Config, opts ...S3StoreOption) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, &errors.ErrValidation{Message: "storage bucket is required"}
	}

	store := &S3Store{
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.client != nil {
		return store, nil
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return store, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Save uploads data and returns its s3:// location. The upload is conditional on the
// key not existing yet; an existing object yields *errors.ErrConflict.
func (s *S3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	key := s.key(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(csvContentType),
		IfNoneMatch:   aws.String("*"),
	})
	if isPreconditionFailure(err) {
		return "", &errors.ErrConflict{Resource: "export file", ID: key}
	}
	if err != nil {
		s.logger.Error("Failed to upload export file",
			zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload export file: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Delete removes the object for name
func (s *S3Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete export file: %w", err)
	}
	return nil
}

// isPreconditionFailure reports whether a conditional write was rejected because the
// object already exists (412) or a concurrent conditional write won (409).
func isPreconditionFailure(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ ErrorCode() string }
	if stderrors.As(err, &coded) {
		switch coded.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	var status interface{ HTTPStatusCode() int }
	if stderrors.As(err, &status) {
		return status.HTTPStatusCode() == http.StatusPreconditionFailed
	}
	return false
}
