// Package logger is a thin wrapper over logrus giving the rest of this
// repo a small, stable logging surface (Fields, WithField, WithFields,
// WithError, and the usual level methods) independent of the underlying
// library's API surface.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a structured set of key-value pairs attached to a log line.
type Fields = logrus.Fields

// Logger wraps a logrus.Logger.
type Logger struct {
	*logrus.Logger
}

// NewLogger builds a Logger writing JSON-free text output to stdout at the
// given level ("debug", "info", "warn", "error"). An unrecognized level
// falls back to "info".
func NewLogger(level string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &Logger{Logger: l}
}

// WithField returns an Entry carrying a single structured field.
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// WithFields returns an Entry carrying the given structured fields.
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// WithError returns an Entry carrying the given error under the "error" key.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}
