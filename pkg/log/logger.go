// Package log provides the leveled, structured logger used across the deployer.
// It wraps logrus so callers depend on a small interface that is easy to clone and
// to replace in tests.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging interface passed to every component.
type Logger interface {
	// Clone creates a new Logger with a copy of the fields of the current one.
	Clone() Logger

	// SetOptions applies the given options to the instance.
	SetOptions(opts ...Option)

	// Level returns the current log level.
	Level() Level

	// SetLevel parses and sets the log level.
	SetLevel(str string) error

	// WithField returns a Logger carrying an extra field.
	WithField(key string, value any) Logger

	// WithFields returns a Logger carrying the extra fields.
	WithFields(fields Fields) Logger

	// WithError returns a Logger carrying the error as a field.
	WithError(err error) Logger

	// Writer returns a writer that logs each line at the given level.
	Writer(level Level) *io.PipeWriter

	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

type logger struct {
	*logrus.Entry
}

// New returns a Logger writing to stderr at info level with the text formatter.
func New(opts ...Option) Logger {
	base := logrus.New()
	base.SetLevel(InfoLevel.ToLogrusLevel())
	base.SetFormatter(NewTextFormatter())

	logger := &logger{Entry: logrus.NewEntry(base)}
	logger.SetOptions(opts...)

	return logger
}

// Discard returns a Logger that drops everything, for tests.
func Discard() Logger {
	return New(WithOutput(io.Discard))
}

func (logger *logger) Clone() Logger {
	parent := logger.Logger

	base := logrus.New()
	base.SetOutput(parent.Out)
	base.SetLevel(parent.Level)
	base.SetFormatter(parent.Formatter)
	base.ReplaceHooks(parent.Hooks)

	return logger.setEntry(logrus.NewEntry(base).WithFields(logger.Data))
}

func (logger *logger) SetOptions(opts ...Option) {
	for _, opt := range opts {
		opt(logger)
	}
}

func (logger *logger) Level() Level {
	return FromLogrusLevel(logger.Logger.Level)
}

func (logger *logger) SetLevel(str string) error {
	level, err := ParseLevel(str)
	if err != nil {
		return err
	}

	logger.Logger.SetLevel(level.ToLogrusLevel())

	return nil
}

func (logger *logger) WithField(key string, value any) Logger {
	return logger.WithFields(Fields{key: value})
}

func (logger *logger) WithFields(fields Fields) Logger {
	return logger.setEntry(logger.Entry.WithFields(logrus.Fields(fields)))
}

func (logger *logger) WithError(err error) Logger {
	return logger.setEntry(logger.Entry.WithError(err))
}

func (logger *logger) Writer(level Level) *io.PipeWriter {
	return logger.Entry.WriterLevel(level.ToLogrusLevel())
}

func (logger *logger) Tracef(format string, args ...any) {
	logger.Logf(TraceLevel.ToLogrusLevel(), format, args...)
}

func (logger *logger) Debugf(format string, args ...any) {
	logger.Logf(DebugLevel.ToLogrusLevel(), format, args...)
}

func (logger *logger) Infof(format string, args ...any) {
	logger.Logf(InfoLevel.ToLogrusLevel(), format, args...)
}

func (logger *logger) Warnf(format string, args ...any) {
	logger.Logf(WarnLevel.ToLogrusLevel(), format, args...)
}

func (logger *logger) Errorf(format string, args ...any) {
	logger.Logf(ErrorLevel.ToLogrusLevel(), format, args...)
}

func (logger *logger) Trace(args ...any) {
	logger.Log(TraceLevel.ToLogrusLevel(), args...)
}

func (logger *logger) Debug(args ...any) {
	logger.Log(DebugLevel.ToLogrusLevel(), args...)
}

func (logger *logger) Info(args ...any) {
	logger.Log(InfoLevel.ToLogrusLevel(), args...)
}

func (logger *logger) Warn(args ...any) {
	logger.Log(WarnLevel.ToLogrusLevel(), args...)
}

func (logger *logger) Error(args ...any) {
	logger.Log(ErrorLevel.ToLogrusLevel(), args...)
}

func (logger *logger) setEntry(entry *logrus.Entry) *logger {
	newLogger := *logger
	newLogger.Entry = entry

	return &newLogger
}
