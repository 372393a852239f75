package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that sends records to a console channel.
// Sends never block; records are dropped while the channel is full.
type ConsoleHandler struct {
	level       slog.Leveler
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
	group       string
}

// NewConsoleHandler creates a handler forwarding records at or above level to consoleChan
func NewConsoleHandler(consoleChan chan<- ConsoleMessage, level slog.Leveler) *ConsoleHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{level: level, consoleChan: consoleChan}
}

// Enabled reports whether level passes the handler's threshold
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record as "message key=value ..." and sends it
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	if h.consoleChan == nil {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	select {
	case h.consoleChan <- ConsoleMessage{
		Message:   sb.String(),
		Timestamp: r.Time,
		Level:     consoleLevel(r.Level),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

// WithAttrs returns a handler that appends attrs to every message
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup prefixes the keys of later attributes with name
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.group != "" {
		clone.group = h.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func writeAttr(sb *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value)
}

func consoleLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}
