// Package logx configures the process logger from the user's verbosity
// flags.
package logx

import (
	"io"
	"log/slog"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity the user selected. Messages at or above it are
// shown. The default is [slog.LevelWarn].
var UserLevel = slog.LevelWarn

// LevelFromFlags returns the level for the -vv, -v and -q flags:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelWarn])
//
// The flags are evaluated in that order, so vv wins over q.
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

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "8",
	slog.LevelInfo:  "4",
	slog.LevelWarn:  "3",
	slog.LevelError: "1",
}

// NewHandler returns a text handler writing to w at UserLevel. Timestamps
// are left out; level names are colored when w is a terminal.
func NewHandler(w io.Writer) slog.Handler {
	out := termenv.NewOutput(w)
	profile := out.ColorProfile()
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: UserLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				if profile == termenv.Ascii {
					return a
				}
				level, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				color, ok := levelColors[level]
				if !ok {
					return a
				}
				return slog.String(a.Key, out.String(level.String()).Foreground(profile.Color(color)).String())
			}
			return a
		},
	})
}

// SetDefault installs NewHandler(w) as the default slog logger.
func SetDefault(w io.Writer) {
	slog.SetDefault(slog.New(NewHandler(w)))
}
