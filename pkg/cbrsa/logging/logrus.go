package logging

import (
	"context"
	"log/slog"

	"github.com/sirupsen/logrus"
)

// NewLogrus returns a Logger backed by a logrus.FieldLogger (a *logrus.Logger
// or a *logrus.Entry). Passing nil binds to logrus.StandardLogger().
func NewLogrus(logger logrus.FieldLogger) Logger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &logrusLogger{logger: logger}
}

type logrusLogger struct {
	logger logrus.FieldLogger
}

func (l *logrusLogger) Debug(_ context.Context, msg string, args ...any) {
	l.logger.WithFields(logrusFields(args)).Debug(msg)
}

func (l *logrusLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.WithFields(logrusFields(args)).Info(msg)
}

func (l *logrusLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.WithFields(logrusFields(args)).Warn(msg)
}

func (l *logrusLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.WithFields(logrusFields(args)).Error(msg)
}

func (l *logrusLogger) With(args ...any) Logger {
	return &logrusLogger{logger: l.logger.WithFields(logrusFields(args))}
}

func logrusFields(args []any) logrus.Fields {
	as := attrs(args)
	fields := make(logrus.Fields, len(as))
	for _, a := range as {
		fields[a.Key] = a.Value.Any()
	}
	return fields
}

func logrusLevel(l slog.Level) logrus.Level {
	switch {
	case l < slog.LevelInfo:
		return logrus.DebugLevel
	case l < slog.LevelWarn:
		return logrus.InfoLevel
	case l < slog.LevelError:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}
