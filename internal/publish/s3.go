// Package publish uploads rendered graph artifacts to remote object storage.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Publisher writes rendered artifacts to an S3-compatible bucket.
type S3Publisher struct {
	client *s3.Client
	bucket string
}

// NewS3Publisher creates a publisher for the given bucket. If endpoint is
// non-empty, path-style addressing is enabled (for MinIO and similar).
func NewS3Publisher(ctx context.Context, bucket, region, endpoint string) (*S3Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Publisher{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
	}, nil
}

// Put uploads data as the given object key with the given content type.
func (p *S3Publisher) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}

// ParseS3URL splits an "s3://bucket/prefix" destination into bucket and key
// prefix. The prefix may be empty.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	const scheme = "s3://"
	if !strings.HasPrefix(raw, scheme) {
		return "", "", fmt.Errorf("not an s3 URL: %q", raw)
	}
	rest := strings.TrimPrefix(raw, scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", raw)
	}
	return bucket, strings.TrimSuffix(prefix, "/"), nil
}
