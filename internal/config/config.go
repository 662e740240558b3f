// Package config loads service configuration from file and environment.
//
// Precedence, lowest to highest: built-in defaults, an optional sheetglot
// config file, then SHEETGLOT_* environment variables. Nested keys map to
// environment names with underscores: server.port becomes
// SHEETGLOT_SERVER_PORT.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix for all settings.
const EnvPrefix = "SHEETGLOT"

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Jobs        JobsConfig        `mapstructure:"jobs"`
	Inference   InferenceConfig   `mapstructure:"inference"`
	Translation TranslationConfig `mapstructure:"translation"`
	Output      OutputConfig      `mapstructure:"output"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Structured bool   `mapstructure:"structured"`
}

// StorageConfig configures the artifact blob store.
type StorageConfig struct {
	Provider       string `mapstructure:"provider"`
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	Profile        string `mapstructure:"profile"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// JobsConfig configures the job record store.
type JobsConfig struct {
	Backend  string `mapstructure:"backend"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// InferenceConfig configures the translation model provider.
type InferenceConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Breaker bool   `mapstructure:"breaker"`
}

// TranslationConfig configures pipeline translation behavior.
type TranslationConfig struct {
	BatchSize   int     `mapstructure:"batch_size"`
	Concurrency int     `mapstructure:"concurrency"`
	RateLimit   float64 `mapstructure:"rate_limit"`
	Temperature float64 `mapstructure:"temperature"`
}

// OutputConfig configures completion artifacts.
type OutputConfig struct {
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// Load reads configuration from the optional config file and environment.
//
// path names an explicit config file; when empty, a sheetglot.yaml in the
// working directory is used if present, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sheetglot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.structured", true)

	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("jobs.backend", "memory")
	v.SetDefault("jobs.db", 0)

	v.SetDefault("inference.breaker", true)

	v.SetDefault("translation.batch_size", 100)
	v.SetDefault("translation.concurrency", 4)
	v.SetDefault("translation.rate_limit", 0.0)
	v.SetDefault("translation.temperature", 0.1)

	v.SetDefault("output.presign_expiry", time.Hour)
}
