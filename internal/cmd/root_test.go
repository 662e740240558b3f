package cmd

import (
	"errors"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{"set all values", "1.0.0", "abc123", "2026-08-31"},
		{"set dev version", "dev", "HEAD", "unknown"},
		{"set empty values", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("boom")
	err := exitError(foundry.ExitInvalidArgument, "Invalid manifest", cause)

	assert.Contains(t, err.Error(), "Invalid manifest")
	assert.Contains(t, err.Error(), "boom")
	assert.ErrorIs(t, err, cause)

	var ee *exitCodeError
	assert.ErrorAs(t, err, &ee)
	assert.Equal(t, foundry.ExitInvalidArgument, ee.code)
}
