package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-tile-raytracer/web/server"
)

func TestPreviewLogger_ForwardsToConsole(t *testing.T) {
	var out bytes.Buffer
	messages := make(chan server.ConsoleMessage, 4)
	console := func(level slog.Leveler) slog.Handler {
		return server.NewConsoleHandler(messages, level)
	}

	logger := previewLogger(&out, slog.LevelInfo, console)
	logger.Debug("dropped")
	logger.Info("Finished threads", "finished", 1)

	select {
	case msg := <-messages:
		assert.Equal(t, "Finished threads finished=1", msg.Message)
		assert.Equal(t, "info", msg.Level)
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "console message not forwarded")
	}
	assert.Empty(t, messages)
	assert.Contains(t, out.String(), "Finished threads")
	assert.NotContains(t, out.String(), "dropped")
}

func TestPreviewLogger_WithoutConsole(t *testing.T) {
	var out bytes.Buffer
	previewLogger(&out, slog.LevelWarn, nil).Info("quiet")

	assert.Empty(t, out.String())
}
