// Package primes supplies the prime pairs the key derivation trusts. The core
// never tests primality itself; a Source is where that responsibility lives.
package primes

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
)

// ErrPrimeSource is returned when a Source cannot produce a pair.
var ErrPrimeSource = errs.ErrPrimeSource

// MinBits is the smallest size Random accepts; crypto/rand.Prime rejects
// fewer than 2 bits.
const MinBits = 2

// MillerRabinRounds is the number of rounds ProbablyPrime runs on top of the
// Baillie-PSW test in math/big.
const MillerRabinRounds = 20

const (
	maxRedraws   = 8
	redrawPeriod = time.Millisecond
)

// Source produces two primes for key derivation.
type Source interface {
	Pair(ctx context.Context) (p, q *big.Int, err error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (p, q *big.Int, err error)

func (f SourceFunc) Pair(ctx context.Context) (p, q *big.Int, err error) {
	return f(ctx)
}

type fixed struct {
	p, q *big.Int
}

// Fixed always returns copies of p and q. They are not checked.
func Fixed(p, q *big.Int) Source {
	return fixed{p: new(big.Int).Set(p), q: new(big.Int).Set(q)}
}

func (f fixed) Pair(ctx context.Context) (*big.Int, *big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errs.Wrap("Fixed.Pair", err)
	}
	return new(big.Int).Set(f.p), new(big.Int).Set(f.q), nil
}

type random struct {
	bits   int
	reader io.Reader
}

// Random draws two distinct primes of exactly bits bits from reader
// (crypto/rand.Reader when nil). When the second draw repeats the first it is
// drawn again, a bounded number of times.
func Random(bits int, reader io.Reader) (Source, error) {
	if bits < MinBits {
		return nil, errs.Errorf("primes.Random", errs.ErrInvalidArgument, "need at least %d bits, got %d", MinBits, bits)
	}
	if reader == nil {
		reader = rand.Reader
	}
	return &random{bits: bits, reader: reader}, nil
}

func (r *random) Pair(ctx context.Context) (*big.Int, *big.Int, error) {
	const op = "Random.Pair"

	p, err := rand.Prime(r.reader, r.bits)
	if err != nil {
		return nil, nil, errs.Errorf(op, errs.ErrPrimeSource, "draw p: %v", err)
	}

	var q *big.Int
	backoff := retry.WithMaxRetries(maxRedraws, retry.NewConstant(redrawPeriod))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := rand.Prime(r.reader, r.bits)
		if err != nil {
			return err
		}
		if candidate.Cmp(p) == 0 {
			return retry.RetryableError(errDuplicate)
		}
		q = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, errs.Wrap(op, err)
		}
		return nil, nil, errs.Errorf(op, errs.ErrPrimeSource, "draw q: %v", err)
	}
	return p, q, nil
}

var errDuplicate = errors.New("q equals p")

// ProbablyPrime reports whether n passes MillerRabinRounds rounds of
// Miller-Rabin plus Baillie-PSW. It is advisory: callers may warn on a false
// result, but derivation proceeds regardless.
func ProbablyPrime(n *big.Int) bool {
	return n != nil && n.ProbablyPrime(MillerRabinRounds)
}
