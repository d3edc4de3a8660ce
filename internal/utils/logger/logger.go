package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// Logger is a scoped console logger. Every package creates its own
// with logger.New("SCOPE") so log lines carry their origin.
type Logger struct {
	scope string
}

var (
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	debugColor   = color.New(color.FgMagenta)
)

// New creates a logger scoped to the given subsystem name
func New(scope string) *Logger {
	return &Logger{scope: scope}
}

func (l *Logger) write(c *color.Color, level, format string, args ...interface{}) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	prefix := c.Sprintf("[%s] [%s] [%s]", ts, level, l.scope)
	fmt.Fprintf(os.Stdout, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(infoColor, "INFO", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(warnColor, "WARN", format, args...)
}

// Debug logs a debug message when DEBUG is set
func (l *Logger) Debug(format string, args ...interface{}) {
	if os.Getenv("DEBUG") == "" {
		return
	}
	l.write(debugColor, "DEBUG", format, args...)
}

// Success logs a success message
func (l *Logger) Success(format string, args ...interface{}) {
	l.write(successColor, "SUCCESS", format, args...)
}

// Error logs an error message and returns it as an error so callers
// can `return log.Error(...)` in one line.
func (l *Logger) Error(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	l.write(errorColor, "ERROR", "%s", err.Error())
	return err
}
