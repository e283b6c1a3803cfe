package log

import (
	"fmt"
	"os"
)

// Log levels, ordered by severity.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	// Errors are always shown; everything below the floor is suppressed so
	// that stdout stays a clean data channel unless the user asked for noise.
	minLevel    = LevelError
	disableLogs = false
	logPrefixes = map[int]string{
		LevelDebug: "\033[37m[DBG]\033[0m", // White
		LevelInfo:  "\033[36m[INF]\033[0m", // Cyan
		LevelWarn:  "\033[33m[WRN]\033[0m", // Yellow
		LevelError: "\033[31m[ERR]\033[0m", // Red
	}
)

// SetVerbose enables all log levels, including debug.
func SetVerbose(v bool) {
	if v {
		minLevel = LevelDebug
	}
}

// IsVerbose returns true if debug logging is enabled.
func IsVerbose() bool {
	return minLevel <= LevelDebug
}

// SetLevel sets the minimum level that will be emitted.
func SetLevel(level int) {
	minLevel = level
}

// DisableLogs disables all logging, including errors.
func DisableLogs() {
	disableLogs = true
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	logMessage(LevelDebug, format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(LevelInfo, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(LevelWarn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(LevelError, format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	logMessage(LevelError, format, args...)
	os.Exit(1)
}

// logMessage formats and writes a log message with the specified log level.
func logMessage(level int, format string, args ...interface{}) {
	if disableLogs || level < minLevel {
		return
	}
	prefix := logPrefixes[level]
	message := fmt.Sprintf(format, args...)
	_, _ = os.Stderr.WriteString(prefix + " " + message + "\n")
}
