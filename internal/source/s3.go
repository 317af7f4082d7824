package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options hold settings for reading access logs from S3.
type S3Options struct {
	// Region is the AWS region for the bucket. Empty uses the default
	// credential chain's region.
	Region string

	// Endpoint is an optional custom endpoint (for MinIO, LocalStack,
	// and other S3-compatible storage).
	Endpoint string

	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool
}

// parseS3URL splits an s3://bucket/key URL into bucket and key.
func parseS3URL(url string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(url, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("source: invalid S3 location %q, want s3://bucket/key", url)
	}
	return bucket, key, nil
}

// openS3 fetches an access log object and returns its body, decoded
// per the key's suffix.
func openS3(ctx context.Context, url string, opts S3Options) (io.ReadCloser, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("source: failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}
	if opts.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("source: failed to fetch s3://%s/%s: %w", bucket, key, err)
	}

	return decode(key, resp.Body)
}
