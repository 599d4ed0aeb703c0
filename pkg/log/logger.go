// Package log provides a leveled logger with structured logging support.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured fields attached to a log entry.
type Fields map[string]any

// Logger wraps logrus so callers depend on a narrow interface instead of a
// concrete logger, which keeps test substitution and cloning cheap.
type Logger interface {
	// Level returns the current log level.
	Level() Level

	// SetLevel parses and sets the log level.
	SetLevel(str string) error

	// SetOutput sets the destination for log output.
	SetOutput(w io.Writer)

	// WithField returns a derived Logger carrying an additional field.
	// The field is attached to the returned instance only.
	WithField(key string, value any) Logger

	// WithFields returns a derived Logger carrying the given fields.
	WithFields(fields Fields) Logger

	// WithError returns a derived Logger carrying the error as a field.
	WithError(err error) Logger

	// Tracef logs a message at level Trace.
	Tracef(format string, args ...any)

	// Debugf logs a message at level Debug.
	Debugf(format string, args ...any)

	// Infof logs a message at level Info.
	Infof(format string, args ...any)

	// Warnf logs a message at level Warn.
	Warnf(format string, args ...any)

	// Errorf logs a message at level Error.
	Errorf(format string, args ...any)

	// Trace logs a message at level Trace.
	Trace(args ...any)

	// Debug logs a message at level Debug.
	Debug(args ...any)

	// Info logs a message at level Info.
	Info(args ...any)

	// Warn logs a message at level Warn.
	Warn(args ...any)

	// Error logs a message at level Error.
	Error(args ...any)
}

type logger struct {
	*logrus.Entry
}

// New returns a new Logger instance.
func New(opts ...Option) Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	l := &logger{Entry: logrus.NewEntry(base)}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Logger created by New.
type Option func(*logger)

// WithLevel sets the initial log level.
func WithLevel(level Level) Option {
	return func(l *logger) {
		l.Logger.SetLevel(logrus.Level(level))
	}
}

// WithOutput sets the initial log output destination.
func WithOutput(w io.Writer) Option {
	return func(l *logger) {
		l.Logger.SetOutput(w)
	}
}

func (l *logger) Level() Level {
	return Level(l.Logger.GetLevel())
}

func (l *logger) SetLevel(str string) error {
	level, err := ParseLevel(str)
	if err != nil {
		return err
	}

	l.Logger.SetLevel(logrus.Level(level))

	return nil
}

func (l *logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

func (l *logger) WithField(key string, value any) Logger {
	return &logger{Entry: l.Entry.WithField(key, value)}
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{Entry: l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *logger) WithError(err error) Logger {
	return &logger{Entry: l.Entry.WithError(err)}
}
