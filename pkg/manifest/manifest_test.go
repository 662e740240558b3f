package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
version: "1.0"
document:
  key: uploads/inventory.xlsx
  source_language: Japanese
  target_language: English
storage:
  provider: s3
  bucket: sheetglot-artifacts
  region: us-east-1
translation:
  batch_size: 50
  concurrency: 8
`

const validJSON = `{
  "version": "1.0",
  "document": {
    "key": "uploads/inventory.xlsx",
    "source_language": "Japanese",
    "target_language": "English"
  },
  "storage": {
    "provider": "memory"
  }
}`

func TestLoadFromBytes_YAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Version)
	assert.Equal(t, "uploads/inventory.xlsx", m.Document.Key)
	assert.Equal(t, "Japanese", m.Document.SourceLanguage)
	assert.Equal(t, "English", m.Document.TargetLanguage)
	assert.Equal(t, "s3", m.Storage.Provider)
	assert.Equal(t, "sheetglot-artifacts", m.Storage.Bucket)
	assert.Equal(t, 50, m.Translation.BatchSize)
	assert.Equal(t, 8, m.Translation.Concurrency)
}

func TestLoadFromBytes_JSON(t *testing.T) {
	m, err := LoadFromBytes([]byte(validJSON), "job.json")
	require.NoError(t, err)

	assert.Equal(t, "memory", m.Storage.Provider)
	assert.Equal(t, "English", m.Document.TargetLanguage)
}

func TestLoadFromBytes_AppliesDefaults(t *testing.T) {
	minimal := `
version: "1.0"
document:
  key: doc.xlsx
  source_language: Japanese
  target_language: English
storage:
  provider: memory
`
	m, err := LoadFromBytes([]byte(minimal), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchSize, m.Translation.BatchSize)
	assert.Equal(t, DefaultConcurrency, m.Translation.Concurrency)
	assert.InDelta(t, DefaultTemperature, m.Translation.Temperature, 1e-9)
	assert.Equal(t, DefaultJobsBackend, m.Jobs.Backend)
	assert.Equal(t, DefaultPresignExpiry, m.Output.PresignExpiry)
	assert.True(t, m.Output.ProgressEnabled())
	assert.True(t, m.Translation.BreakerEnabled())
}

func TestLoadFromBytes_SheetsAndExport(t *testing.T) {
	withSheets := `
version: "1.0"
document:
  key: doc.xlsx
  source_language: Japanese
  target_language: English
  sheets:
    includes: ["Report *", "Summary"]
    excludes: ["* (draft)"]
storage:
  provider: memory
output:
  export: out/translations.jsonl
`
	m, err := LoadFromBytes([]byte(withSheets), "job.yaml")
	require.NoError(t, err)

	require.NotNil(t, m.Document.Sheets)
	assert.Equal(t, []string{"Report *", "Summary"}, m.Document.Sheets.Includes)
	assert.Equal(t, []string{"* (draft)"}, m.Document.Sheets.Excludes)
	assert.Equal(t, "out/translations.jsonl", m.Output.Export)
}

func TestLoadFromBytes_RejectsEmptySheetIncludes(t *testing.T) {
	bad := `
version: "1.0"
document:
  key: doc.xlsx
  source_language: Japanese
  target_language: English
  sheets:
    excludes: ["Draft"]
storage:
  provider: memory
`
	_, err := LoadFromBytes([]byte(bad), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_RejectsUnknownFields(t *testing.T) {
	withUnknown := strings.Replace(validYAML, "translation:", "surprise: true\ntranslation:", 1)
	_, err := LoadFromBytes([]byte(withUnknown), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_RejectsMissingDocument(t *testing.T) {
	_, err := LoadFromBytes([]byte(`version: "1.0"`), "job.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoadFromBytes_RejectsBadVersion(t *testing.T) {
	bad := strings.Replace(validYAML, `version: "1.0"`, `version: "2.0"`, 1)
	_, err := LoadFromBytes([]byte(bad), "job.yaml")
	require.Error(t, err)
}

func TestLoadFromBytes_Empty(t *testing.T) {
	_, err := LoadFromBytes(nil, "job.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestCheck_CrossFieldConstraints(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr string
	}{
		{
			name:    "s3 requires bucket",
			mutate:  func(m *Manifest) { m.Storage.Bucket = "" },
			wantErr: "storage.bucket",
		},
		{
			name:    "redis requires addr",
			mutate:  func(m *Manifest) { m.Jobs.Backend = "redis"; m.Jobs.Addr = "" },
			wantErr: "jobs.addr",
		},
		{
			name:    "presign expiry must parse",
			mutate:  func(m *Manifest) { m.Output.PresignExpiry = "tomorrow" },
			wantErr: "presign_expiry",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadFromBytes([]byte(validYAML), "job.yaml")
			require.NoError(t, err)
			tt.mutate(m)
			err = m.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uploads/inventory.xlsx", m.Document.Key)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadFromBytes_UnknownExtensionFallsBackToYAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "job.manifest")
	require.NoError(t, err)
	assert.Equal(t, "uploads/inventory.xlsx", m.Document.Key)
}

func TestPresignExpiryDuration(t *testing.T) {
	o := OutputConfig{PresignExpiry: "30m"}
	assert.Equal(t, "30m0s", o.PresignExpiryDuration().String())

	o = OutputConfig{PresignExpiry: "garbage"}
	assert.Equal(t, "1h0m0s", o.PresignExpiryDuration().String())
}
