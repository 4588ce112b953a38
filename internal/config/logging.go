package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// secretPattern matches 32-byte hex strings, the shape of a private key.
var secretPattern = regexp.MustCompile(`\b[0-9a-fA-F]{64}\b`)

// redacted replaces anything matching secretPattern in a log line.
const redacted = "[redacted]"

// logSink is the file shared by a logger and its named children.
type logSink struct {
	mu    sync.Mutex
	level LogLevel
	file  *os.File
}

// Logger writes timestamped lines to a file. It implements the LogWriter
// interfaces of the service packages. Loggers returned by Named share the
// parent's file and level.
type Logger struct {
	sink      *logSink
	component string
}

// NewLogger opens filePath for appending. With LogLevelOff or no path the
// logger discards everything and no file is created.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	logger := &Logger{sink: &logSink{level: level}}
	if level == LogLevelOff || filePath == "" {
		return logger, nil
	}

	filePath = ExpandPath(filePath)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	logger.sink.file = f
	return logger, nil
}

// Named returns a logger that tags its lines with component.
func (l *Logger) Named(component string) *Logger {
	if l.component != "" {
		component = l.component + "." + component
	}
	return &Logger{sink: l.sink, component: component}
}

// Close closes the log file shared by l and its named children.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file == nil {
		return nil
	}
	err := l.sink.file.Close()
	l.sink.file = nil
	return err
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.level == LogLevelOff || level > l.sink.level || l.sink.file == nil {
		return
	}

	msg := secretPattern.ReplaceAllString(fmt.Sprintf(format, args...), redacted)
	prefix := time.Now().Format("2006-01-02 15:04:05.000") + " [" + strings.ToUpper(level.String()) + "]"
	if l.component != "" {
		prefix += " " + l.component + ":"
	}
	_, _ = fmt.Fprintf(l.sink.file, "%s %s\n", prefix, msg)
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{sink: &logSink{level: LogLevelOff}}
}
