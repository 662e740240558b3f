package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/vellumworks/sheetglot/pkg/blobstore"
)

// Store implements blobstore.Store for AWS S3 and S3-compatible storage.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// Ensure Store implements the interfaces.
var (
	_ blobstore.Store     = (*Store)(nil)
	_ blobstore.Presigner = (*Store)(nil)
)

// New creates a new S3 store with the given configuration.
//
// The store uses AWS SDK v2's default credential chain unless explicit
// credentials are provided in the config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &blobstore.StoreError{
			Op:      "New",
			Backend: blobstore.BackendS3,
			Bucket:  cfg.Bucket,
			Err:     err,
		}
	}

	// Build S3 client options
	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error

	// Only apply explicit region if user set one in config.
	// Let SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	// Set profile if specified
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, awsconfig.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

// Put stores body under key, overwriting any existing blob.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		return s.wrapError("Put", key, err)
	}
	return nil
}

// Get returns the blob stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrapError("Get", key, err)
	}
	defer func() { _ = output.Body.Close() }()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, s.wrapError("Get", key, err)
	}
	return body, nil
}

// Delete removes the blob under key. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.wrapError("Delete", key, err)
	}
	return nil
}

// List returns all keys starting with prefix, following pagination to the end.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		}

		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, s.wrapError("List", "", err)
		}

		for _, obj := range output.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		continuationToken = output.NextContinuationToken
	}

	return keys, nil
}

// PresignGet returns a time-limited download URL for key.
func (s *Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", s.wrapError("PresignGet", key, err)
	}
	return req.URL, nil
}

// Close releases any resources held by the store.
// The S3 client doesn't require explicit cleanup, but this satisfies the interface.
func (s *Store) Close() error {
	return nil
}

// wrapError converts S3 errors to store errors with appropriate sentinel errors.
func (s *Store) wrapError(op, key string, err error) error {
	wrapped := &blobstore.StoreError{
		Op:      op,
		Backend: blobstore.BackendS3,
		Bucket:  s.bucket,
		Key:     key,
		Err:     err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = blobstore.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = blobstore.ErrBucketNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			wrapped.Err = blobstore.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = blobstore.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = blobstore.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = blobstore.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = blobstore.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = blobstore.ErrUnavailable
		}
		return wrapped
	}

	// Fallback: check error message for common cases
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "NoSuchKey") || strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "404"):
		wrapped.Err = blobstore.ErrNotFound
	case strings.Contains(errMsg, "NoSuchBucket"):
		wrapped.Err = blobstore.ErrBucketNotFound
	case strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Forbidden") || strings.Contains(errMsg, "403"):
		wrapped.Err = blobstore.ErrAccessDenied
	case strings.Contains(errMsg, "InvalidAccessKeyId") || strings.Contains(errMsg, "SignatureDoesNotMatch"):
		wrapped.Err = blobstore.ErrInvalidCredentials
	case strings.Contains(errMsg, "SlowDown") || strings.Contains(errMsg, "Throttling") || strings.Contains(errMsg, "429"):
		wrapped.Err = blobstore.ErrThrottled
	case strings.Contains(errMsg, "ServiceUnavailable") || strings.Contains(errMsg, "503"):
		wrapped.Err = blobstore.ErrUnavailable
	}

	return wrapped
}

// resolveRegion applies the fallback default region.
//
// The sdkRegion parameter is the region after SDK loading, which already
// incorporates explicit config (if set) or env/profile resolution. Only when
// that is empty AND no custom endpoint is set do we default to us-east-1;
// S3-compatible stores may not need a region at all.
func resolveRegion(endpoint, sdkRegion string) string {
	if sdkRegion != "" {
		return sdkRegion
	}
	if endpoint == "" {
		return DefaultAWSRegion
	}
	return ""
}
