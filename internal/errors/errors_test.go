package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrExec,
		ErrTelemetry,
		ErrInput,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in config.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "exec error",
			code:       ErrExec,
			message:    "Operation failed",
			suggestion: "Check command output for details",
		},
		{
			name:       "telemetry error",
			code:       ErrTelemetry,
			message:    "Couldn't read /proc/stat",
			suggestion: "Telemetry is only available on Linux",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestError_Format(t *testing.T) {
	cause := fmt.Errorf("open /proc/stat: no such file or directory")
	err := WrapWithCode(cause, ErrTelemetry, "Couldn't sample CPU", "Run on a Linux host")

	out := err.Error()
	lines := strings.Split(out, "\n")

	assert.Equal(t, "✗ Couldn't sample CPU", lines[0])
	assert.Contains(t, out, "open /proc/stat")
	assert.Contains(t, out, "Run on a Linux host")
	assert.Less(t, strings.Index(out, "open /proc/stat"), strings.Index(out, "Run on a Linux host"))
}

func TestError_MessageOnly(t *testing.T) {
	err := New(ErrInput, "Unknown operation", "")
	assert.Equal(t, "✗ Unknown operation\n", err.Error())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(ErrConfig, "bad", ""))

	assert.True(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(wrapped, ErrExec))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrConfig))
}

func TestMessage(t *testing.T) {
	structured := WrapWithCode(errors.New("boom"), ErrTelemetry, "Telemetry is only supported on Linux", "Run aegis on a Linux host")

	assert.Equal(t, "Telemetry is only supported on Linux", Message(structured))
	assert.Equal(t, "Telemetry is only supported on Linux", Message(fmt.Errorf("tick: %w", structured)))
	assert.Equal(t, "first", Message(errors.New("first\nsecond")))
	assert.Equal(t, "", Message(nil))
}
