package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)

	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "memory", cfg.Jobs.Backend)
	assert.True(t, cfg.Inference.Breaker)

	assert.Equal(t, 100, cfg.Translation.BatchSize)
	assert.Equal(t, 4, cfg.Translation.Concurrency)
	assert.InDelta(t, 0.1, cfg.Translation.Temperature, 1e-9)

	assert.Equal(t, time.Hour, cfg.Output.PresignExpiry)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHEETGLOT_SERVER_PORT", "9000")
	t.Setenv("SHEETGLOT_LOGGING_LEVEL", "debug")
	t.Setenv("SHEETGLOT_STORAGE_BUCKET", "artifacts")
	t.Setenv("SHEETGLOT_JOBS_BACKEND", "redis")
	t.Setenv("SHEETGLOT_JOBS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "artifacts", cfg.Storage.Bucket)
	assert.Equal(t, "redis", cfg.Jobs.Backend)
	assert.Equal(t, "localhost:6379", cfg.Jobs.Addr)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetglot.yaml")
	body := `
server:
  host: 0.0.0.0
  port: 9090
storage:
  provider: memory
translation:
  batch_size: 25
output:
  presign_expiry: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Provider)
	assert.Equal(t, 25, cfg.Translation.BatchSize)
	assert.Equal(t, 30*time.Minute, cfg.Output.PresignExpiry)

	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Translation.Concurrency)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetglot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))
	t.Setenv("SHEETGLOT_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}
