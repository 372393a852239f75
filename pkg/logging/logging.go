// Package logging builds the slog loggers used by the command line and the web preview.
package logging

import (
	"io"
	"log/slog"

	"github.com/muesli/termenv"
)

// LevelFromFlags returns the [slog.Level] for the verbosity flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelWarn])
//
// Flags are checked in that order, so vv wins over q.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// New returns a text logger writing to w. The level is coloured when w is a
// terminal that supports it and left plain otherwise.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	out := termenv.NewOutput(w)
	colors := map[slog.Level]termenv.Color{
		slog.LevelDebug: out.Color("8"),
		slog.LevelInfo:  out.Color("4"),
		slog.LevelWarn:  out.Color("3"),
		slog.LevelError: out.Color("1"),
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 || a.Key != slog.LevelKey {
				return a
			}
			lvl, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			style := out.String(lvl.String())
			if c, ok := colors[lvl]; ok {
				style = style.Foreground(c)
			}
			if lvl >= slog.LevelWarn {
				style = style.Bold()
			}
			return slog.String(slog.LevelKey, style.String())
		},
	})
	return slog.New(handler)
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
