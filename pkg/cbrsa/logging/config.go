package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
)

// Backend names accepted by FromConfig.
const (
	BackendSlog   = "slog"
	BackendZap    = "zap"
	BackendLogrus = "logrus"
)

// Format names accepted by FromConfig.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel parses debug, info, warn or error (case-insensitive). An empty
// string means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, errs.Errorf("logging.ParseLevel", errs.ErrInvalidArgument, "unknown level %q", s)
	}
	return l, nil
}

// FromConfig builds a Logger for the named backend writing to w (stderr when
// nil) at the given level, in text or JSON format.
func FromConfig(backend, level, format string, w io.Writer) (Logger, error) {
	const op = "logging.FromConfig"

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	format = strings.ToLower(format)
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatJSON {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "unknown log format %q", format)
	}

	switch strings.ToLower(backend) {
	case "", BackendSlog:
		opts := &slog.HandlerOptions{Level: lvl}
		var h slog.Handler = slog.NewTextHandler(w, opts)
		if format == FormatJSON {
			h = slog.NewJSONHandler(w, opts)
		}
		return New(slog.New(h)), nil

	case BackendZap:
		enc := zapcore.NewConsoleEncoder(zapEncoderConfig())
		if format == FormatJSON {
			enc = zapcore.NewJSONEncoder(zapEncoderConfig())
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(zapLevel(lvl)))
		return NewZap(zap.New(core)), nil

	case BackendLogrus:
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(logrusLevel(lvl))
		if format == FormatJSON {
			l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
		} else {
			l.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339Nano, DisableColors: true})
		}
		return NewLogrus(l), nil

	default:
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "unknown log backend %q", backend)
	}
}
