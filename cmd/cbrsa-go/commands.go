package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/coinbase/cb-rsa-go/internal/config"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/engine"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keyring"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/metrics"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/primes"
)

const shutdownTimeout = 5 * time.Second

// demoScenarios are the key pairs and messages printed by the demo command.
var demoScenarios = []struct {
	p, q     int64
	messages []int64
}{
	{p: 383, q: 397, messages: []int64{123456, 42, 123, 456, 789}},
	{p: 61, q: 53, messages: []int64{123}},
}

type commands struct {
	cfg    *config.Config
	logger logging.Logger
	out    io.Writer
}

func newApp(cfg *config.Config, logger logging.Logger, out io.Writer) *cli.App {
	c := &commands{cfg: cfg, logger: logger, out: out}
	return &cli.App{
		Name:     "cbrsa-go",
		Usage:    "Textbook RSA arithmetic: key derivation, encryption, direct and CRT decryption",
		Version:  cbrsa.ModuleVersion(),
		Writer:   out,
		Commands: c.list(),
	}
}

func intFlag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Usage: usage + " (decimal or 0x hex)", Required: true}
}

func (c *commands) list() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "demo",
			Usage:  "Derive the sample key pairs and round-trip the sample messages",
			Action: c.demo,
		},
		{
			Name:  "derive",
			Usage: "Derive a key pair from two primes, or from freshly drawn random primes",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "p", Usage: "First prime"},
				&cli.StringFlag{Name: "q", Usage: "Second prime"},
				&cli.IntFlag{Name: "random-bits", Usage: "Draw random primes of this many bits instead of --p and --q"},
			},
			Action: c.derive,
		},
		{
			Name:  "encrypt",
			Usage: "Compute m^e mod n",
			Flags: []cli.Flag{
				intFlag("n", "Modulus"),
				intFlag("e", "Public exponent"),
				intFlag("m", "Message"),
			},
			Action: c.encrypt,
		},
		{
			Name:  "decrypt",
			Usage: "Compute c^d mod n",
			Flags: []cli.Flag{
				intFlag("n", "Modulus"),
				intFlag("d", "Private exponent"),
				intFlag("c", "Ciphertext"),
			},
			Action: c.decrypt,
		},
		{
			Name:  "decrypt-crt",
			Usage: "Decrypt with the Chinese remainder theorem using the key pair derived from p, q and e",
			Flags: []cli.Flag{
				intFlag("p", "First prime"),
				intFlag("q", "Second prime"),
				intFlag("e", "Public exponent the ciphertext was encrypted under"),
				intFlag("c", "Ciphertext"),
			},
			Action: c.decryptCRT,
		},
		{
			Name:  "modpow",
			Usage: "Compute base^exp mod mod",
			Flags: []cli.Flag{
				intFlag("base", "Base"),
				intFlag("exp", "Non-negative exponent"),
				intFlag("mod", "Positive modulus"),
			},
			Action: c.modPow,
		},
		{
			Name:  "egcd",
			Usage: "Compute gcd(a, b) and Bezout coefficients x, y with a*x + b*y = gcd",
			Flags: []cli.Flag{
				intFlag("a", "First operand"),
				intFlag("b", "Second operand"),
			},
			Action: c.egcd,
		},
		{
			Name:  "bench",
			Usage: "Round-trip random messages under a random key and optionally serve metrics",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "count", Value: 64, Usage: "Number of messages"},
			},
			Action: c.bench,
		},
	}
}

// newEngine wires an engine from the configuration. A nil reg leaves the
// metrics unregistered.
func (c *commands) newEngine(ctx context.Context, reg prometheus.Registerer) (*engine.Engine, error) {
	selector, err := c.cfg.ExponentSelector()
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	kr := keyring.New(ctx, keyring.Config{
		Capacity: c.cfg.Keyring.Capacity,
		TTL:      c.cfg.Keyring.TTL,
		OnChange: m.SetKeys,
		Logger:   c.logger,
	})
	return engine.New(ctx,
		engine.WithLogger(c.logger),
		engine.WithMetrics(m),
		engine.WithKeyring(kr),
		engine.WithExponentSelector(selector),
		engine.WithWorkers(c.cfg.Batch.Workers),
	), nil
}

func (c *commands) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *commands) format(v *big.Int) string {
	return formatInt(v, c.cfg.Output.Hex)
}

func (c *commands) printKey(kp *keys.KeyPair) {
	c.printf("p = %s\n", c.format(kp.P()))
	c.printf("q = %s\n", c.format(kp.Q()))
	c.printf("n = %s\n", c.format(kp.N()))
	c.printf("e = %s\n", c.format(kp.E()))
	c.printf("d = %s\n", c.format(kp.D()))
}

func (c *commands) demo(cctx *cli.Context) error {
	ctx := cctx.Context
	eng, err := c.newEngine(ctx, nil)
	if err != nil {
		return err
	}
	for i, s := range demoScenarios {
		if i > 0 {
			c.printf("\n")
		}
		id, kp, err := eng.Derive(ctx, big.NewInt(s.p), big.NewInt(s.q))
		if err != nil {
			return err
		}
		c.printKey(kp)
		for _, m := range s.messages {
			res, err := eng.RoundTrip(ctx, id, big.NewInt(m))
			if err != nil {
				return fmt.Errorf("message %d: %w", m, err)
			}
			c.printf("m=%s c=%s direct=%s crt=%s\n",
				c.format(big.NewInt(m)), c.format(res.Ciphertext), c.format(res.Direct), c.format(res.CRT))
		}
	}
	return nil
}

func (c *commands) derive(cctx *cli.Context) error {
	ctx := cctx.Context
	src, err := c.primeSource(cctx)
	if err != nil {
		return err
	}
	eng, err := c.newEngine(ctx, nil)
	if err != nil {
		return err
	}
	_, kp, err := eng.DeriveFrom(ctx, src)
	if err != nil {
		return err
	}
	c.printKey(kp)
	return nil
}

// primeSource picks fixed primes when both --p and --q are given, and random
// primes of --random-bits (or primes.bits) otherwise.
func (c *commands) primeSource(cctx *cli.Context) (primes.Source, error) {
	hasP, hasQ := cctx.IsSet("p"), cctx.IsSet("q")
	bits := cctx.Int("random-bits")

	switch {
	case bits > 0 && (hasP || hasQ):
		return nil, errors.New("--random-bits cannot be combined with --p or --q")
	case hasP != hasQ:
		return nil, errors.New("--p and --q must be given together")
	case hasP:
		p, err := parseInt("p", cctx.String("p"))
		if err != nil {
			return nil, err
		}
		q, err := parseInt("q", cctx.String("q"))
		if err != nil {
			return nil, err
		}
		return primes.Fixed(p, q), nil
	case bits > 0:
		return primes.Random(bits, nil)
	default:
		return primes.Random(c.cfg.Primes.Bits, nil)
	}
}

// ints parses the named flags in order.
func ints(cctx *cli.Context, names ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(names))
	for i, name := range names {
		v, err := parseInt(name, cctx.String(name))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *commands) encrypt(cctx *cli.Context) error {
	v, err := ints(cctx, "n", "e", "m")
	if err != nil {
		return err
	}
	pub, err := keys.NewPublicKey(v[0], v[1])
	if err != nil {
		return err
	}
	ct, err := cbrsa.Encrypt(v[2], pub)
	if err != nil {
		return err
	}
	c.printf("%s\n", c.format(ct))
	return nil
}

func (c *commands) decrypt(cctx *cli.Context) error {
	v, err := ints(cctx, "n", "d", "c")
	if err != nil {
		return err
	}
	m, err := cbrsa.Decrypt(v[2], v[1], v[0])
	if err != nil {
		return err
	}
	c.printf("%s\n", c.format(m))
	return nil
}

func (c *commands) decryptCRT(cctx *cli.Context) error {
	v, err := ints(cctx, "p", "q", "e", "c")
	if err != nil {
		return err
	}
	e := v[2]
	// ConventionalExponent falls back to the scan when e does not fit p and q.
	kp, err := cbrsa.DeriveKeyPair(v[0], v[1], keys.WithExponentSelector(keys.ConventionalExponent(e)))
	if err != nil {
		return err
	}
	if kp.E().Cmp(e) != 0 {
		return fmt.Errorf("--e: %s is not a valid public exponent for p and q: %w", e, cbrsa.ErrInvalidArgument)
	}
	m, err := cbrsa.DecryptCRT(v[3], kp)
	if err != nil {
		return err
	}
	c.printf("%s\n", c.format(m))
	return nil
}

func (c *commands) modPow(cctx *cli.Context) error {
	v, err := ints(cctx, "base", "exp", "mod")
	if err != nil {
		return err
	}
	r, err := cbrsa.ModPow(v[0], v[1], v[2])
	if err != nil {
		return err
	}
	c.printf("%s\n", c.format(r))
	return nil
}

func (c *commands) egcd(cctx *cli.Context) error {
	v, err := ints(cctx, "a", "b")
	if err != nil {
		return err
	}
	g, x, y := cbrsa.ExtendedEuclidean(v[0], v[1])
	c.printf("gcd = %s\n", c.format(g))
	c.printf("x = %s\n", c.format(x))
	c.printf("y = %s\n", c.format(y))
	return nil
}

func (c *commands) bench(cctx *cli.Context) error {
	ctx := cctx.Context
	count := cctx.Int("count")
	if count < 1 {
		return errors.New("--count must be positive")
	}

	reg := prometheus.NewRegistry()
	eng, err := c.newEngine(ctx, reg)
	if err != nil {
		return err
	}
	src, err := primes.Random(c.cfg.Primes.Bits, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	id, kp, err := eng.DeriveFrom(ctx, src)
	if err != nil {
		return err
	}
	c.printf("derive: %d-bit modulus in %s\n", kp.N().BitLen(), time.Since(start))

	messages := make([]*big.Int, count)
	for i := range messages {
		if messages[i], err = rand.Int(rand.Reader, kp.N()); err != nil {
			return err
		}
	}

	start = time.Now()
	ciphertexts, err := eng.EncryptBatch(ctx, id, messages)
	if err != nil {
		return err
	}
	c.printf("encrypt: %d messages in %s\n", count, time.Since(start))

	for _, path := range []engine.Path{engine.PathDirect, engine.PathCRT} {
		start = time.Now()
		recovered, err := eng.DecryptBatch(ctx, id, ciphertexts, path)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		for i := range messages {
			if recovered[i].Cmp(messages[i]) != 0 {
				return fmt.Errorf("%s decryption of message %d: %w", path, i, engine.ErrPathMismatch)
			}
		}
		c.printf("decrypt %s: %d messages in %s ok\n", path, count, elapsed)
	}

	if addr := c.cfg.Metrics.Address; addr != "" {
		return c.serveMetrics(ctx, addr, reg)
	}
	return nil
}

// serveMetrics exposes reg on addr until ctx is done.
func (c *commands) serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	c.logger.Info(ctx, "serving metrics", "address", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
