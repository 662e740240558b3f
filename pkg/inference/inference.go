// Package inference defines the boundary to the text-generation service that
// performs the actual translation.
//
// The pipeline only needs prompt-in, text-out. Everything else (models,
// endpoints, auth) is implementation detail behind the Client interface.
package inference

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for inference calls.
var (
	// ErrThrottled indicates the service rate-limited the request.
	// Throttled calls are the only class callers should retry with backoff.
	ErrThrottled = errors.New("inference throttled")

	// ErrUnavailable indicates the service (or its circuit breaker) refused
	// the call outright.
	ErrUnavailable = errors.New("inference unavailable")
)

// Request is one prompt sent to the service.
type Request struct {
	// Prompt is the full instruction text.
	Prompt string

	// MaxTokens bounds the response length. Zero uses the client default.
	MaxTokens int

	// Temperature controls sampling. Translation wants it low.
	Temperature float32
}

// Client sends a prompt and returns the raw response text.
//
// Implementations must be safe for concurrent use: many Map units call
// Complete in parallel.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CallError wraps a failed inference call with context.
type CallError struct {
	// Model is the model identifier, if known.
	Model string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("inference %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("inference: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CallError) Unwrap() error {
	return e.Err
}

// IsThrottled returns true if the error indicates a rate-limited call.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
