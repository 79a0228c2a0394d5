package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{Level: "info", Format: FormatJSON}, &buf)

	cl := ComponentLogger(l, "artic")
	cl.Info().Int("page", 3).Msg("page fetched")
	l.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "artic", entry["component"])
	assert.InDelta(t, 3, entry["page"], 0)
	assert.Equal(t, "page fetched", entry["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerWithPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagesel.log")

	result := NewLoggerWithPath(Config{Level: "info", Format: FormatJSON, Output: OutputFile, File: path})
	require.True(t, result.UsingFile)
	assert.False(t, result.FallbackUsed)
	assert.Equal(t, path, result.FilePath)

	result.Logger.Info().Msg("to file")
	require.NoError(t, result.Close())
	require.NoError(t, result.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewLoggerWithPath_Fallback(t *testing.T) {
	result := NewLoggerWithPath(Config{Output: OutputFile})
	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.Contains(t, result.FallbackReason, "no log file configured")
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	_, ok := TraceIDFromContext(ctx)
	assert.False(t, ok)

	generated := GetOrGenerateTraceID(ctx)
	assert.Len(t, generated, 26)

	ctx = ContextWithTraceID(ctx, "01TESTTRACE")
	assert.Equal(t, "01TESTTRACE", GetOrGenerateTraceID(ctx))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{Format: FormatJSON}, &buf)

	ctx := l.WithContext(context.Background())
	ctx = ContextWithTraceID(ctx, "trace-1")

	logger := FromContext(ctx)
	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"trace_id":"trace-1"`)

	// No logger attached: nothing is written and nothing panics.
	nop := FromContext(context.Background())
	nop.Info().Msg("dropped")
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	PrintLogPathMessage(&buf, "/tmp/x.log")
	PrintFallbackWarning(&buf, "denied")
	assert.Contains(t, buf.String(), "Logging to /tmp/x.log")
	assert.Contains(t, buf.String(), "denied")
}
