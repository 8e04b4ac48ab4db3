package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestConsoleSplitsErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, closers, err := setupLogger(Config{Level: "info"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, closers)

	logger.Debug("hidden")
	logger.Info("hello", "button", 3)
	logger.Error("boom")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "button=3")
	assert.NotContains(t, stdout.String(), "boom")
	assert.Contains(t, stderr.String(), "boom")
}

func TestFileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "macropad.log")
	var stdout, stderr bytes.Buffer
	logger, closers, err := setupLogger(Config{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1}, &stdout, &stderr)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug("to file")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, stderr.String(), "to file")
	assert.Empty(t, stdout.String())
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf).(*rawLogger)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	r.Log(false, []byte{0x01, 0x01, 0x18})
	r.Log(true, []byte{0x02})
	r.Log(false, nil)

	assert.Equal(t,
		"2024/01/02 03:04:05.000 pad->host 3 bytes: 01 01 18\n"+
			"2024/01/02 03:04:05.000 host->pad 1 bytes: 02\n",
		buf.String())

	NewRaw(nil).Log(false, []byte{1})
}
