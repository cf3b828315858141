package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
		err      bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.name)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, err := New(Settings{Level: "warn", Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("hidden")
	logger.Warn("immediate truncated", "line", 3)

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "immediate truncated")
	assert.Contains(t, console.String(), "line=3")
}

func TestNew_FanoutToFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "armemit.log")

	logger, err := New(Settings{Level: "debug", Console: &console, File: path})
	require.NoError(t, err)

	logger.Debug("emitted instruction", "address", "00010000")
	require.NoError(t, logger.Close())

	assert.Contains(t, console.String(), "emitted instruction")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &record))
	assert.Equal(t, "emitted instruction", record["msg"])
	assert.Equal(t, "00010000", record["address"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Settings{Level: "chatty"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(Settings{File: filepath.Join(t.TempDir(), "missing", "armemit.log")})
	assert.Error(t, err)
}
