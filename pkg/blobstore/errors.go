package blobstore

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrBucketNotFound indicates the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnavailable indicates the store service is unavailable.
	ErrUnavailable = errors.New("store unavailable")

	// ErrThrottled indicates the request was rate limited by the store.
	ErrThrottled = errors.New("request throttled")
)

// BackendType identifies a blob store backend.
type BackendType string

const (
	// BackendS3 represents AWS S3 or S3-compatible storage.
	BackendS3 BackendType = "s3"

	// BackendMemory represents the in-process test store.
	BackendMemory BackendType = "memory"
)

// String returns the string representation of the backend type.
func (b BackendType) String() string {
	return string(b)
}

// StoreError wraps backend-specific errors with context.
type StoreError struct {
	// Op is the operation that failed (e.g., "Put", "Get").
	Op string

	// Backend is the backend type (e.g., "s3").
	Backend BackendType

	// Bucket is the bucket name, if applicable.
	Bucket string

	// Key is the blob key, if applicable.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s/%s: %v", e.Backend, e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a blob was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAccessDenied returns true if the error indicates insufficient permissions.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsThrottled returns true if the error indicates the request was rate limited.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}

// IsUnavailable returns true if the error indicates the store service is unavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
