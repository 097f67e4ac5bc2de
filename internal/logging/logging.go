package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level represents logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a config string to a Level; unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefault creates a stderr logger using the LOG_LEVEL environment variable.
func NewDefault() *Logger {
	return New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Discard returns a logger that drops everything.
func Discard() *Logger { return New(io.Discard, LevelError) }

func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, "[ERROR] ", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, "[WARN] ", format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, "[INFO] ", format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, "[DEBUG] ", format, args...) }

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool { return l != nil && level <= l.level }

func (l *Logger) logf(level Level, prefix, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf(prefix+format, args...)
}
