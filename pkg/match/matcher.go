// Package match filters sheet names with glob patterns.
//
// A job that only needs part of a workbook translated names the sheets it
// wants with include patterns and carves out exceptions with excludes:
//
//	includes: ["Report *", "Summary"]
//	excludes: ["* (draft)"]
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Errors returned by Matcher operations.
var (
	// ErrNoIncludes is returned when no include patterns are provided.
	ErrNoIncludes = errors.New("at least one include pattern is required")

	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns a name must match (at least one).
	// Required: at least one include pattern must be specified.
	Includes []string

	// Excludes are glob patterns a name must not match (any).
	// Optional: if empty, no excludes are applied.
	Excludes []string
}

// Matcher evaluates include and exclude patterns against names.
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
	excludes []string
}

// New creates a Matcher from the given configuration.
//
// Every pattern is compiled up front, so an invalid pattern fails job setup
// instead of silently matching nothing later.
func New(cfg Config) (*Matcher, error) {
	if len(cfg.Includes) == 0 {
		return nil, ErrNoIncludes
	}

	for _, p := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, Err: ErrInvalidPattern}
		}
	}

	return &Matcher{
		includes: append([]string{}, cfg.Includes...),
		excludes: append([]string{}, cfg.Excludes...),
	}, nil
}

// Match reports whether name matches at least one include and no exclude.
func (m *Matcher) Match(name string) bool {
	included := false
	for _, p := range m.includes {
		if ok, _ := doublestar.Match(p, name); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range m.excludes {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	return true
}
