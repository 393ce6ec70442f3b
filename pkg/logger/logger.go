// Package logger provides a comprehensive logging system with multiple outputs.
// It supports console logging with colors, file logging, and Discord webhook logging,
// all routed through a logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configures a Logger.
type Options struct {
	// Dir is where combined.log and error.log are written. Empty disables file output.
	Dir             string
	ErrorWebhookURL string
	LogsWebhookURL  string
	// Output receives the coloured console lines. Defaults to os.Stdout.
	Output io.Writer
}

// Logger is the main logging structure
type Logger struct {
	logrus   *logrus.Logger
	files    *fileHook
	webhooks *webhookHook
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(errorWebhook, logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a Logger writing to stdout and ./logs.
func NewLogger(errorWebhook, logsWebhook string) *Logger {
	return New(Options{
		Dir:             filepath.Join(".", "logs"),
		ErrorWebhookURL: errorWebhook,
		LogsWebhookURL:  logsWebhook,
	})
}

// New creates a Logger from explicit options.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	lr := logrus.New()
	lr.SetOutput(out)
	lr.SetLevel(logrus.DebugLevel)
	lr.SetFormatter(&lineFormatter{colors: true})

	l := &Logger{logrus: lr}

	if opts.Dir != "" {
		l.files = openFileHook(opts.Dir)
		lr.AddHook(l.files)
	}

	if opts.ErrorWebhookURL != "" || opts.LogsWebhookURL != "" {
		l.webhooks = newWebhookHook(opts.ErrorWebhookURL, opts.LogsWebhookURL)
		lr.AddHook(l.webhooks)
	}

	return l
}

func openFileHook(dir string) *fileHook {
	hook := &fileHook{formatter: &lineFormatter{}}

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
		return hook
	}

	var err error
	hook.combined, err = os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening combined log file: %v\n", err)
	}

	hook.errors, err = os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening error log file: %v\n", err)
	}

	return hook
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).Log(level.logrusLevel(), message)
}

// Close waits for pending webhook posts and closes the log files
func (l *Logger) Close() {
	if l.webhooks != nil {
		l.webhooks.flush()
	}
	if l.files != nil {
		l.files.close()
	}
}

// Logging methods

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}
