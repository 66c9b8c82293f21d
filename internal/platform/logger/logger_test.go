// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	testCases := []struct {
		name        string
		level       string
		logDebug    bool
		wantWarning bool
	}{
		{name: "debug level logs debug", level: "debug", logDebug: true},
		{name: "info level hides debug", level: "info", logDebug: false},
		{name: "upper case accepted", level: "WARN", logDebug: false},
		{name: "invalid level warns and falls back", level: "verbose", logDebug: false, wantWarning: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &logger.Buffer{}
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default(), "Setup should install the logger as default")

			l.Debug("debug message")

			entries, err := buf.Entries()
			require.NoError(t, err)

			var sawDebug, sawWarning bool
			for _, e := range entries {
				switch e["msg"] {
				case "debug message":
					sawDebug = true
				case "invalid log level configured, using default level":
					sawWarning = true
				}
			}
			assert.Equal(t, tc.logDebug, sawDebug)
			assert.Equal(t, tc.wantWarning, sawWarning)
		})
	}
}

func TestContextLogger(t *testing.T) {
	_, fallback := logger.NewBufferLogger(slog.LevelInfo)
	_, scoped := logger.NewBufferLogger(slog.LevelInfo)

	t.Run("fallback when context is empty", func(t *testing.T) {
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("default when fallback is nil", func(t *testing.T) {
		assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	})

	t.Run("scoped logger wins", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
		assert.Same(t, scoped, logger.FromContext(ctx))
	})

	t.Run("nil logger panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = logger.WithLogger(context.Background(), nil)
		})
	})
}

func TestBufferEntries(t *testing.T) {
	buf, l := logger.NewBufferLogger(slog.LevelDebug)
	l.Info("first", slog.String("k", "v"))
	l.Debug("second")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0]["msg"])
	assert.Equal(t, "v", entries[0]["k"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
}
