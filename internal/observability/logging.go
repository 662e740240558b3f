// Package observability provides the process-wide loggers.
//
// Two loggers are exposed: Logger emits structured JSON for services and
// pipelines, CLILogger emits human-readable console output for command
// feedback. Both default to info level and are safe to use before Init.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the structured logger for services and pipeline internals.
	Logger *zap.Logger

	// CLILogger is the console logger for command-line feedback.
	CLILogger *zap.Logger
)

func init() {
	Logger = mustBuild(zap.NewProductionConfig(), zapcore.InfoLevel)
	CLILogger = mustBuild(cliConfig(), zapcore.InfoLevel)
}

// Init reconfigures both loggers at the given level.
//
// structured selects JSON output for Logger; the CLILogger stays console
// formatted either way.
func Init(level string, structured bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if !structured {
		cfg = cliConfig()
	}
	Logger = mustBuild(cfg, lvl)
	CLILogger = mustBuild(cliConfig(), lvl)
	return nil
}

// Sync flushes buffered log entries. Called on process exit.
func Sync() {
	_ = Logger.Sync()
	_ = CLILogger.Sync()
}

func cliConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

func mustBuild(cfg zap.Config, lvl zapcore.Level) *zap.Logger {
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		// Config is fully owned by this package; a build failure is a bug.
		panic(err)
	}
	return logger
}
