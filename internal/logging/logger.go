// Package logging configures the zerolog logger shared by the CLI and the store.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// Format names accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger writing to w at the given level.
// Unknown levels fall back to info; any format other than json is rendered for a terminal.
func New(w io.Writer, level, format string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithModule creates a logger with module field
func WithModule(logger zerolog.Logger, module string) zerolog.Logger {
	return logger.With().Str("module", module).Logger()
}

// gormWriter forwards gorm's formatted log lines to zerolog.
type gormWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.WithLevel(w.level).Msgf(format, args...)
}

// GormLogger bridges gorm's statement logger onto logger.
// With sqlLog unset only gorm errors are reported.
func GormLogger(logger zerolog.Logger, sqlLog bool) gormlogger.Interface {
	level, writeLevel := gormlogger.Error, zerolog.WarnLevel
	if sqlLog {
		level, writeLevel = gormlogger.Info, zerolog.InfoLevel
	}
	w := gormWriter{logger: WithModule(logger, "gorm"), level: writeLevel}
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
