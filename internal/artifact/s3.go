package artifact

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/and161185/minuteminds/internal/config"
)

type uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 stores artifacts in a bucket using the multipart upload manager.
type S3 struct {
	up     uploader
	bucket string
	prefix string
}

// NewS3 wraps an uploader for bucket; prefix is prepended to every key.
func NewS3(up uploader, bucket, prefix string) *S3 {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{up: up, bucket: bucket, prefix: prefix}
}

// NewS3FromConfig loads AWS settings (static keys when configured, the default chain otherwise).
func NewS3FromConfig(ctx context.Context, cfg config.ArtifactConfig) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 artifacts require s3_bucket to be set")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3(manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix), nil
}

// Put uploads r to s3://bucket/prefix+key.
func (s *S3) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	full := s.prefix + key
	_, err := s.up.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(full),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", full, err)
	}
	return "s3://" + s.bucket + "/" + full, nil
}
