package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closer, err := NewLogger("debug", path, false)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Str("source", "activity").Msg("loaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source":"activity"`)
	assert.Contains(t, string(data), `"message":"loaded"`)
}

func TestNewLogger_RequiresDestination(t *testing.T) {
	_, _, err := NewLogger("info", "", false)
	assert.Error(t, err)
}

func TestNewLogger_BadPath(t *testing.T) {
	_, _, err := NewLogger("info", filepath.Join(t.TempDir(), "missing", "dir", "app.log"), false)
	assert.Error(t, err)
}
