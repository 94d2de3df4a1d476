// Package logging provides a simple leveled logger for the decoder service.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents log severity.
type Level int

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

// Logger provides leveled logging over a stdlib log.Logger.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	logger *log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide logger, writing to stderr at info level.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// New returns a logger writing to out at info level.
func New(out io.Writer) *Logger {
	return &Logger{
		level:  LevelInfo,
		logger: log.New(out, "", log.LstdFlags|log.LUTC),
	}
}

// SetLevel sets the minimum level that gets logged.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelFromString sets the level from its configuration name. Unknown
// names fall back to info.
func (l *Logger) SetLevelFromString(name string) {
	switch strings.ToLower(name) {
	case "debug":
		l.SetLevel(LevelDebug)
	case "warn", "warning":
		l.SetLevel(LevelWarn)
	case "error":
		l.SetLevel(LevelError)
	default:
		l.SetLevel(LevelInfo)
	}
}

// GetLevel returns the current minimum level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.GetLevel() {
		return
	}
	l.logger.Printf("[%s] %s", levelNames[level], fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions over the default logger.

func SetLevelFromString(name string) { Default().SetLevelFromString(name) }

func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

func Info(format string, args ...interface{}) { Default().Info(format, args...) }

func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

func Error(format string, args ...interface{}) { Default().Error(format, args...) }
