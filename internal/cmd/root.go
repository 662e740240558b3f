// Package cmd implements the sheetglot command-line interface.
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vellumworks/sheetglot/internal/observability"
)

// versionInfo holds build metadata injected at link time.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sheetglot",
	Short: "Batch spreadsheet translation",
	Long: `sheetglot translates spreadsheet documents between languages.

A run scans the document, deduplicates its translatable texts, translates
them in parallel batches, and merges the results into a new document with
non-translatable cells untouched.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return observability.Init(logLevel, false)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sheetglot %s (commit %s, built %s)\n",
			versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer observability.Sync()

	if err := rootCmd.Execute(); err != nil {
		observability.CLILogger.Error(err.Error())
		var ee *exitCodeError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

// exitCodeError carries a process exit code alongside the cause.
type exitCodeError struct {
	code int
	msg  string
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

// exitError creates an error that makes the CLI exit with the given code.
func exitError(code int, message string, err error) error {
	return &exitCodeError{code: code, msg: message, err: err}
}
