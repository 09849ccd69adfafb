package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/notionmap"
	"go.uber.org/zap"
)

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Exporter uploads rendered views to a bucket.
type S3Exporter struct {
	uploader objectUploader
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// ValidateExportConfig performs basic sanity checks on export settings.
func ValidateExportConfig(cfg notionmap.ExportConfig) error {
	if cfg.Bucket == "" {
		return notionmap.NewValidationError("export.bucket", "bucket is required")
	}
	if cfg.Endpoint != "" && !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return notionmap.NewValidationError("export.endpoint", "must be an http(s) URL")
	}
	return nil
}

// NewS3Exporter loads AWS configuration from the environment. A custom endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3Exporter(ctx context.Context, cfg notionmap.ExportConfig, logger *zap.Logger) (*S3Exporter, error) {
	if err := ValidateExportConfig(cfg); err != nil {
		return nil, err
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return newS3Exporter(manager.NewUploader(client), cfg, logger), nil
}

// NewStaticS3Exporter builds an exporter with fixed credentials, for S3-compatible stores.
func NewStaticS3Exporter(ctx context.Context, cfg notionmap.ExportConfig, accessKey, secretKey string, logger *zap.Logger) (*S3Exporter, error) {
	if err := ValidateExportConfig(cfg); err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return newS3Exporter(manager.NewUploader(client), cfg, logger), nil
}

func newS3Exporter(uploader objectUploader, cfg notionmap.ExportConfig, logger *zap.Logger) *S3Exporter {
	if logger == nil {
		logger = zap.L()
	}
	return &S3Exporter{
		uploader: uploader,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		logger:   logger.Named("export"),
	}
}

// Key returns the object key for name under the configured prefix.
func (e *S3Exporter) Key(name string) string {
	name = strings.TrimLeft(name, "/")
	if e.prefix == "" {
		return name
	}
	return path.Join(e.prefix, name)
}

// Export uploads body under name and returns its s3:// location.
func (e *S3Exporter) Export(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := e.Key(name)
	if key == "" {
		return "", notionmap.NewValidationError("name", "object name is empty")
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := e.uploader.Upload(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", notionmap.NewRemoteError(0, apiErr.ErrorCode(), apiErr.ErrorMessage()).
				WithDetail("bucket", e.bucket).
				WithCause(err)
		}
		return "", notionmap.NewConnectionError("s3 upload failed", err)
	}

	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	e.logger.Info("view exported", zap.String("location", location))
	return location, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", notionmap.NewValidationError("uri", fmt.Sprintf("'%s' is not an s3:// URI", uri))
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", notionmap.NewValidationError("uri", fmt.Sprintf("'%s' needs both bucket and key", uri))
	}
	return bucket, key, nil
}
