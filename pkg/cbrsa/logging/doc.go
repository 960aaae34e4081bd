// Package logging provides a minimal logging facade for the cb-rsa packages.
//
// This package defines a Logger interface that wraps a subset of the standard
// library's log/slog functionality. The interface is intentionally small so
// that applications can provide their own implementation, or route records to
// zap or logrus through the bundled adapters.
//
// # Logger Interface
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// Arguments follow slog conventions: alternating key/value pairs, slog.Attr
// values, or a mix of both.
//
// # Backends
//
//	logger := logging.New(nil)              // slog.Default()
//	logger = logging.NewZap(zapLogger)      // go.uber.org/zap
//	logger = logging.NewLogrus(logrusEntry) // github.com/sirupsen/logrus
//	logger = logging.Nop()                  // discard
//
// FromConfig selects a backend, level and format by name, which is what the
// command line tool uses:
//
//	logger, err := logging.FromConfig("zap", "debug", "json", os.Stderr)
//
// # Redaction Support
//
//	// Mark an attribute as redacted
//	logger.Info(ctx, "key derived", logging.Redacted("d"))
//	// Logs: d="[redacted]"
//
//	// Log how large a value is, never the value itself
//	logger.Debug(ctx, "decrypt", logging.BitLen("ciphertext_bits", c))
//
// # Security Considerations
//
//   - Never log private exponents, primes, the totient or CRT material
//   - Use logging.Redacted() to mark sensitive attributes
//   - Plaintexts and ciphertexts are logged by bit length only
package logging
