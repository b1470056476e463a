package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.SlogLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	assert.Contains(t, output, "test message 42")
	assert.Contains(t, output, "subsystem=test-subsystem")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.False(t, Enabled(LevelDebug))
	assert.True(t, Enabled(LevelWarn))
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("test", errors.New("boom"), "operation failed")

	output := buf.String()
	assert.Contains(t, output, "operation failed")
	assert.True(t, strings.Contains(output, "error=boom"), "expected error attribute in %q", output)
}
