// Package log wraps logrus with the small API the rest of filephile uses.
// The terminal belongs to the TUI, so output normally goes to a file.
package log

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	apperrors "filephile/internal/errors"

	"github.com/sirupsen/logrus"
)

// Field is a single structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput sends log lines to w
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.entry.Logger.SetOutput(w)
	}
}

// WithFile appends log lines to the file at path, creating parent directories
func WithFile(path string) Option {
	return func(l *Logger) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			l.entry.Logger.Errorf("could not create log directory: %v", err)
			return
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.entry.Logger.Errorf("could not open log file: %v", err)
			return
		}
		l.closer = f
		l.entry.Logger.SetOutput(f)
	}
}

// WithJSON switches to the JSON formatter
func WithJSON() Option {
	return func(l *Logger) {
		l.entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

// WithDebug enables debug level output
func WithDebug(debug bool) Option {
	return func(l *Logger) {
		if debug {
			l.entry.Logger.SetLevel(logrus.DebugLevel)
		} else {
			l.entry.Logger.SetLevel(logrus.InfoLevel)
		}
	}
}

// Logger is a structured logger
type Logger struct {
	entry  *logrus.Entry
	closer io.Closer
}

// NewLogger creates a logger writing text lines to stderr unless configured otherwise
func NewLogger(opts ...Option) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	l := &Logger{entry: logrus.NewEntry(base)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a logger carrying additional fields
func (l *Logger) With(fields ...Field) *Logger {
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(lf)}
}

// WithError returns a logger carrying err and its taxonomy kind
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{entry: l.entry.WithError(err).WithField("kind", apperrors.KindOf(err).String())}
}

// WithContext attaches ctx to log entries
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx)}
}

func (l *Logger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Close releases the log file if one was opened
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

var (
	mu  sync.RWMutex
	std = NewLogger()
)

// Configure replaces the package logger
func Configure(opts ...Option) {
	l := NewLogger(opts...)
	mu.Lock()
	old := std
	std = l
	mu.Unlock()
	_ = old.Close()
}

// Close releases the package logger's file
func Close() error {
	mu.RLock()
	defer mu.RUnlock()
	return std.Close()
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// LogWithFields returns the package logger carrying fields
func LogWithFields(fields ...Field) *Logger { return current().With(fields...) }

// LogWithError returns the package logger carrying err
func LogWithError(err error) *Logger { return current().WithError(err) }

func Debug(args ...interface{})                 { current().Debug(args...) }
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Info(args ...interface{})                  { current().Info(args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warn(args ...interface{})                  { current().Warn(args...) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Error(args ...interface{})                 { current().Error(args...) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }
