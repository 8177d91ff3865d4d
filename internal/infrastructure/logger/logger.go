package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/framecheck/framecheck/internal/domain/port"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// Level orders log lines by severity; lines below the logger's level are dropped.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config or flag value to a Level. Unrecognised values
// fall back to info so a typo in log_level never silences the server.
func ParseLevel(name string) Level {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l)
		}
	}
	return LevelInfo
}

// Logger writes "[timestamp] LEVEL message" lines. The level can be changed
// while handlers are logging.
type Logger struct {
	out     *log.Logger
	level   atomic.Int32
	closers []io.Closer
}

// NewLogger logs to w. Writers other than stdout and stderr that can be
// closed are closed by Close.
func NewLogger(w io.Writer, level string) *Logger {
	l := &Logger{out: log.New(w, "", 0)}
	if c, ok := w.(io.Closer); ok && w != os.Stdout && w != os.Stderr {
		l.closers = append(l.closers, c)
	}
	l.SetLevel(level)
	return l
}

// NewTeeLogger logs to console and appends the same lines to the file at
// path, creating its directory when needed.
func NewTeeLogger(console io.Writer, path string, level string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewLogger(io.MultiWriter(console, file), level)
	l.closers = append(l.closers, file)
	return l, nil
}

func (l *Logger) SetLevel(level string) {
	l.level.Store(int32(ParseLevel(level)))
}

func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write(LevelDebug, format, args) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(LevelInfo, format, args) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(LevelWarn, format, args) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(LevelError, format, args) }

func (l *Logger) write(level Level, format string, args []interface{}) {
	if level < l.Level() {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.out.Printf("[%s] %s %s", time.Now().Format(timestampLayout), level, msg)
}

// Close releases the log file, if any. The first close error is returned.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

var _ port.Logger = (*Logger)(nil)
