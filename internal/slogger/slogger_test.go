package slogger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_VerbosityLevels(t *testing.T) {
	var buf bytes.Buffer

	t.Run("default logs errors only", func(t *testing.T) {
		buf.Reset()
		logger := New(Config{Output: &buf})
		logger.Info("hidden")
		logger.Error("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("-v enables info", func(t *testing.T) {
		buf.Reset()
		logger := New(Config{Verbosity: 1, Output: &buf})
		logger.Info("shown")
		logger.Debug("hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("-vv enables debug", func(t *testing.T) {
		buf.Reset()
		logger := New(Config{Verbosity: 2, Output: &buf})
		logger.Debug("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestForExecution_AttachesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ForExecution(logger, 7, "deploy", "alice").Info("started")

	out := buf.String()
	assert.Contains(t, out, "execution=7")
	assert.Contains(t, out, "script=deploy")
	assert.Contains(t, out, "owner=alice")
}

func TestFromContext_Fallback(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)

	// Discarding logger: nothing is enabled.
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "hello")
}
