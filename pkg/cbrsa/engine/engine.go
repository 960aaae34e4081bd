package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/cipher"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keyring"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/metrics"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/primes"
)

var (
	// ErrKeyNotFound is returned for ids the keyring does not hold.
	ErrKeyNotFound = errs.ErrKeyNotFound

	// ErrPathMismatch is returned by RoundTrip when the direct and CRT paths
	// recover different messages.
	ErrPathMismatch = errors.New("cbrsa: decryption paths disagree")
)

// Path selects a decryption algorithm.
type Path int

const (
	// PathDirect computes c^d mod n.
	PathDirect Path = iota
	// PathCRT combines the exponentiations mod p and mod q.
	PathCRT
)

func (p Path) String() string {
	switch p {
	case PathDirect:
		return "direct"
	case PathCRT:
		return "crt"
	default:
		return "unknown"
	}
}

// ParsePath maps "direct" or "crt" (case-insensitive) to a Path.
func ParsePath(s string) (Path, error) {
	switch strings.ToLower(s) {
	case "direct":
		return PathDirect, nil
	case "crt":
		return PathCRT, nil
	default:
		return 0, errs.Errorf("ParsePath", errs.ErrInvalidArgument, "unknown decryption path %q", s)
	}
}

// Engine runs the RSA operations against key pairs held in a keyring,
// logging and measuring each call. It is safe for concurrent use.
type Engine struct {
	logger   logging.Logger
	metrics  *metrics.Metrics
	keyring  *keyring.Keyring
	selector keys.ExponentSelector
	workers  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every operation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithKeyring uses kr instead of a default in-memory keyring.
func WithKeyring(kr *keyring.Keyring) Option {
	return func(e *Engine) { e.keyring = kr }
}

// WithExponentSelector sets the public exponent policy used by Derive.
func WithExponentSelector(s keys.ExponentSelector) Option {
	return func(e *Engine) { e.selector = s }
}

// WithWorkers bounds the goroutines used by the batch operations. Values
// below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New builds an Engine. When no keyring is supplied a default one is created
// whose janitor stops with ctx.
func New(ctx context.Context, opts ...Option) *Engine {
	e := &Engine{logger: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.keyring == nil {
		e.keyring = keyring.New(ctx, keyring.Config{
			Logger:   e.logger,
			OnChange: e.metrics.SetKeys,
		})
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Keyring exposes the engine's key store.
func (e *Engine) Keyring() *keyring.Keyring {
	return e.keyring
}

// Derive derives a key pair from p and q and stores it.
func (e *Engine) Derive(ctx context.Context, p, q *big.Int) (id keyring.KeyID, kp *keys.KeyPair, err error) {
	const op = "derive"
	defer e.observe(op, "", time.Now(), &err)

	kp, err = keys.Derive(p, q, keys.WithExponentSelector(e.selector))
	if err != nil {
		e.logger.Warn(ctx, "key derivation failed", "error", err)
		return keyring.KeyID{}, nil, err
	}
	id, err = e.keyring.Put(ctx, kp)
	if err != nil {
		return keyring.KeyID{}, nil, err
	}
	e.logger.Info(ctx, "key derived", "key_id", id.String(), "key", kp)
	return id, kp, nil
}

// DeriveFrom draws a pair from src, warns when either value fails the
// advisory primality test, and derives from it.
func (e *Engine) DeriveFrom(ctx context.Context, src primes.Source) (keyring.KeyID, *keys.KeyPair, error) {
	p, q, err := src.Pair(ctx)
	if err != nil {
		return keyring.KeyID{}, nil, err
	}
	if !primes.ProbablyPrime(p) || !primes.ProbablyPrime(q) {
		e.logger.Warn(ctx, "prime source returned a composite value; the key pair will not decrypt correctly",
			logging.BitLen("p_bits", p), logging.BitLen("q_bits", q))
	}
	return e.Derive(ctx, p, q)
}

// Key returns the stored key pair for id.
func (e *Engine) Key(id keyring.KeyID) (*keys.KeyPair, error) {
	return e.keyring.Get(id)
}

// Forget removes id from the keyring.
func (e *Engine) Forget(ctx context.Context, id keyring.KeyID) {
	e.keyring.Delete(ctx, id)
}

// Encrypt encrypts message with the public half of key id.
func (e *Engine) Encrypt(ctx context.Context, id keyring.KeyID, message *big.Int) (*big.Int, error) {
	kp, err := e.keyring.Get(id)
	if err != nil {
		return nil, err
	}
	return e.encrypt(ctx, kp, message)
}

// Decrypt decrypts ciphertext with key id along the given path.
func (e *Engine) Decrypt(ctx context.Context, id keyring.KeyID, ciphertext *big.Int, path Path) (*big.Int, error) {
	kp, err := e.keyring.Get(id)
	if err != nil {
		return nil, err
	}
	return e.decrypt(ctx, kp, ciphertext, path)
}

// EncryptBatch encrypts every message concurrently. The results keep the
// input order. The first failure cancels the remaining items.
func (e *Engine) EncryptBatch(ctx context.Context, id keyring.KeyID, messages []*big.Int) ([]*big.Int, error) {
	kp, err := e.keyring.Get(id)
	if err != nil {
		return nil, err
	}
	return e.batch(ctx, "EncryptBatch", messages, func(ctx context.Context, m *big.Int) (*big.Int, error) {
		return e.encrypt(ctx, kp, m)
	})
}

// DecryptBatch decrypts every ciphertext concurrently along path.
func (e *Engine) DecryptBatch(ctx context.Context, id keyring.KeyID, ciphertexts []*big.Int, path Path) ([]*big.Int, error) {
	kp, err := e.keyring.Get(id)
	if err != nil {
		return nil, err
	}
	return e.batch(ctx, "DecryptBatch", ciphertexts, func(ctx context.Context, c *big.Int) (*big.Int, error) {
		return e.decrypt(ctx, kp, c, path)
	})
}

// RoundTripResult is the outcome of RoundTrip.
type RoundTripResult struct {
	Ciphertext *big.Int
	Direct     *big.Int
	CRT        *big.Int
}

// RoundTrip encrypts message with key id and decrypts it along both paths. It
// fails with ErrPathMismatch when the paths disagree. The recovered value is
// message mod n, so it differs from message when message is outside [0, n).
func (e *Engine) RoundTrip(ctx context.Context, id keyring.KeyID, message *big.Int) (res RoundTripResult, err error) {
	defer e.observe("roundtrip", "", time.Now(), &err)

	kp, err := e.keyring.Get(id)
	if err != nil {
		return RoundTripResult{}, err
	}
	if res.Ciphertext, err = e.encrypt(ctx, kp, message); err != nil {
		return RoundTripResult{}, err
	}
	if res.Direct, err = e.decrypt(ctx, kp, res.Ciphertext, PathDirect); err != nil {
		return RoundTripResult{}, err
	}
	if res.CRT, err = e.decrypt(ctx, kp, res.Ciphertext, PathCRT); err != nil {
		return RoundTripResult{}, err
	}
	if res.Direct.Cmp(res.CRT) != 0 {
		err = errs.Wrap("RoundTrip", ErrPathMismatch)
		e.logger.Error(ctx, "decryption paths disagree", "key_id", id.String())
		return RoundTripResult{}, err
	}
	return res, nil
}

func (e *Engine) encrypt(ctx context.Context, kp *keys.KeyPair, m *big.Int) (c *big.Int, err error) {
	defer e.observe("encrypt", "", time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return nil, errs.Wrap("Encrypt", err)
	}
	c, err = cipher.Encrypt(m, kp.PublicKey())
	e.logger.Debug(ctx, "encrypt", logging.BitLen("message_bits", m), logging.BitLen("n_bits", kp.N()))
	return c, err
}

func (e *Engine) decrypt(ctx context.Context, kp *keys.KeyPair, c *big.Int, path Path) (m *big.Int, err error) {
	defer e.observe("decrypt", path.String(), time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return nil, errs.Wrap("Decrypt", err)
	}
	switch path {
	case PathDirect:
		m, err = cipher.Decrypt(c, kp.D(), kp.N())
	case PathCRT:
		m, err = cipher.DecryptCRT(c, kp)
	default:
		return nil, errs.Errorf("Decrypt", errs.ErrInvalidArgument, "unknown decryption path %d", int(path))
	}
	e.logger.Debug(ctx, "decrypt", "path", path.String(), logging.BitLen("ciphertext_bits", c))
	return m, err
}

func (e *Engine) batch(ctx context.Context, op string, in []*big.Int, f func(context.Context, *big.Int) (*big.Int, error)) ([]*big.Int, error) {
	out := make([]*big.Int, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, v := range in {
		i, v := i, v
		g.Go(func() error {
			r, err := f(gctx, v)
			if err != nil {
				return errs.Wrap(op, fmt.Errorf("item %d: %w", i, err))
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug(ctx, "batch complete", "op", op, "items", len(in), "workers", e.workers)
	return out, nil
}

func (e *Engine) observe(op, path string, start time.Time, err *error) {
	e.metrics.Observe(op, path, start, *err)
}
