// Package manifest provides loading and validation of sheetglot job manifests.
//
// A job manifest is a YAML or JSON file that configures a translation job:
// the document to translate, the storage backends, and translation behavior.
//
// Manifests are validated against a JSON Schema before execution. The schema
// enforces strict typing and disallows unknown properties.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	document:
//	  key: uploads/inventory.xlsx
//	  source_language: Japanese
//	  target_language: English
//	storage:
//	  provider: s3
//	  bucket: sheetglot-artifacts
//	  region: us-east-1
//	translation:
//	  batch_size: 100
//	  concurrency: 4
package manifest

// Manifest represents a validated job manifest.
//
// Required fields are Version and Document. Storage, Jobs, Translation, and
// Output are optional with sensible defaults.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	// Example: "https://schemas.vellumworks.dev/sheetglot/v1.0.0/job-manifest.schema.json"
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Document identifies the source document and the language pair.
	Document DocumentConfig `json:"document" yaml:"document"`

	// Storage configures the artifact blob store (optional).
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`

	// Jobs configures the job record store (optional).
	Jobs JobsConfig `json:"jobs,omitempty" yaml:"jobs,omitempty"`

	// Translation configures translation behavior (optional).
	Translation TranslationConfig `json:"translation,omitempty" yaml:"translation,omitempty"`

	// Output configures completion artifacts (optional).
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// DocumentConfig identifies the document to translate.
type DocumentConfig struct {
	// Key is the storage key of the source document.
	Key string `json:"key" yaml:"key"`

	// SourceLanguage is the language of the document's text.
	SourceLanguage string `json:"source_language" yaml:"source_language"`

	// TargetLanguage is the language to translate into.
	TargetLanguage string `json:"target_language" yaml:"target_language"`

	// Sheets restricts translation to matching sheet names (optional).
	Sheets *SheetsConfig `json:"sheets,omitempty" yaml:"sheets,omitempty"`
}

// SheetsConfig selects sheets by glob pattern.
//
// When present, only sheets matching at least one include pattern and no
// exclude pattern are scanned. All other sheets pass through untranslated.
type SheetsConfig struct {
	// Includes are glob patterns a sheet name must match. At least one
	// pattern is required when the sheets block is present.
	Includes []string `json:"includes" yaml:"includes"`

	// Excludes are glob patterns that remove sheets from scope. Optional.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// StorageConfig configures the blob store holding work artifacts and output.
type StorageConfig struct {
	// Provider is the store type: "s3" or "memory". Default: "s3".
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Bucket is the bucket name. Required when Provider is "s3".
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Region is the AWS region (e.g., "us-east-1"). Optional.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom endpoint URL for S3-compatible storage. Optional.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the AWS credential profile name. Optional.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// ForcePathStyle enables path-style addressing for S3-compatible stores.
	ForcePathStyle bool `json:"force_path_style,omitempty" yaml:"force_path_style,omitempty"`
}

// JobsConfig configures the job record store.
type JobsConfig struct {
	// Backend is the store type: "redis" or "memory". Default: "memory".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Addr is the redis address (host:port). Required when Backend is "redis".
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// Password is the redis password. Optional.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// DB is the redis database number. Default: 0.
	DB int `json:"db,omitempty" yaml:"db,omitempty"`
}

// TranslationConfig configures translation behavior.
//
// All fields are optional with defaults applied during loading.
type TranslationConfig struct {
	// Model is the inference model name. Default: the provider's default.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// BatchSize is the maximum unique texts per batch.
	// Range: 1-1000. Default: 100.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`

	// Concurrency is the number of batches translated at once.
	// Range: 1-32. Default: 4.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// RateLimit is the maximum inference requests per second (0 = unlimited).
	// Default: 0.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// Temperature is the sampling temperature. Default: 0.1.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Breaker enables the circuit breaker around inference calls.
	Breaker *bool `json:"breaker,omitempty" yaml:"breaker,omitempty"`
}

// OutputConfig configures completion artifacts.
type OutputConfig struct {
	// PresignExpiry is the download URL lifetime as a Go duration string
	// (e.g., "1h", "30m"). Default: "1h".
	PresignExpiry string `json:"presign_expiry,omitempty" yaml:"presign_expiry,omitempty"`

	// Progress enables progress reporting to the job store. Default: true.
	Progress *bool `json:"progress,omitempty" yaml:"progress,omitempty"`

	// Export is a local file path receiving a JSONL record per translated
	// unique text plus a summary. Empty disables export.
	Export string `json:"export,omitempty" yaml:"export,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultStorageProvider is the default blob store type.
	DefaultStorageProvider = "s3"

	// DefaultJobsBackend is the default job store type.
	DefaultJobsBackend = "memory"

	// DefaultBatchSize is the default unique texts per batch.
	DefaultBatchSize = 100

	// DefaultConcurrency is the default number of concurrent batch translations.
	DefaultConcurrency = 4

	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.1

	// DefaultPresignExpiry is the default download URL lifetime.
	DefaultPresignExpiry = "1h"

	// DefaultProgress is the default value for progress reporting.
	DefaultProgress = true
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest so callers
// don't need to reason about zero values.
func (m *Manifest) ApplyDefaults() {
	if m.Storage.Provider == "" {
		m.Storage.Provider = DefaultStorageProvider
	}
	if m.Jobs.Backend == "" {
		m.Jobs.Backend = DefaultJobsBackend
	}

	if m.Translation.BatchSize == 0 {
		m.Translation.BatchSize = DefaultBatchSize
	}
	if m.Translation.Concurrency == 0 {
		m.Translation.Concurrency = DefaultConcurrency
	}
	if m.Translation.Temperature == 0 {
		m.Translation.Temperature = DefaultTemperature
	}
	// RateLimit: 0 is a valid value (unlimited), so no default needed

	if m.Output.PresignExpiry == "" {
		m.Output.PresignExpiry = DefaultPresignExpiry
	}
	if m.Output.Progress == nil {
		defaultProgress := DefaultProgress
		m.Output.Progress = &defaultProgress
	}
}

// BreakerEnabled returns whether the inference circuit breaker is on.
// Defaults to true when not set.
func (t *TranslationConfig) BreakerEnabled() bool {
	if t.Breaker == nil {
		return true
	}
	return *t.Breaker
}

// ProgressEnabled returns whether progress should be reported.
// Returns the configured value, or DefaultProgress if not set.
func (o *OutputConfig) ProgressEnabled() bool {
	if o.Progress == nil {
		return DefaultProgress
	}
	return *o.Progress
}
