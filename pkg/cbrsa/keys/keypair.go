package keys

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
)

// PublicKey is the public half of a key pair: modulus N and exponent E.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// NewPublicKey copies n and e into a PublicKey and validates it.
func NewPublicKey(n, e *big.Int) (PublicKey, error) {
	pub := PublicKey{}
	if n != nil {
		pub.N = new(big.Int).Set(n)
	}
	if e != nil {
		pub.E = new(big.Int).Set(e)
	}
	if err := pub.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pub, nil
}

// Validate checks that N >= 1 and E >= 0, the domain of modular
// exponentiation. It does not check that N is a product of two primes.
func (pub PublicKey) Validate() error {
	const op = "PublicKey.Validate"
	switch {
	case pub.N == nil || pub.E == nil:
		return errs.Errorf(op, errs.ErrInvalidArgument, "missing modulus or exponent")
	case pub.N.Cmp(one) < 0:
		return errs.Errorf(op, errs.ErrInvalidArgument, "modulus must be at least 1")
	case pub.E.Sign() < 0:
		return errs.Errorf(op, errs.ErrInvalidArgument, "negative exponent")
	}
	return nil
}

// CRTParams is the read-only material DecryptCRT needs: the reduced private
// exponents and the Bézout coefficients of p and q (N1*p + N2*q = 1).
type CRTParams struct {
	DP *big.Int
	DQ *big.Int
	N1 *big.Int
	N2 *big.Int
}

// KeyPair is an RSA key pair derived from two primes. It is immutable once
// built by Derive: every accessor returns a copy, so callers can never alter
// the internal state, and a KeyPair can be shared between goroutines.
//
// The totient is kept private; it has no accessor.
type KeyPair struct {
	p, q, n, phi, e, d *big.Int

	crt    *CRTParams
	crtErr error
}

// P returns a copy of the first prime.
func (kp *KeyPair) P() *big.Int { return new(big.Int).Set(kp.p) }

// Q returns a copy of the second prime.
func (kp *KeyPair) Q() *big.Int { return new(big.Int).Set(kp.q) }

// N returns a copy of the modulus p*q.
func (kp *KeyPair) N() *big.Int { return new(big.Int).Set(kp.n) }

// E returns a copy of the public exponent.
func (kp *KeyPair) E() *big.Int { return new(big.Int).Set(kp.e) }

// D returns a copy of the private exponent.
func (kp *KeyPair) D() *big.Int { return new(big.Int).Set(kp.d) }

// PublicKey returns (N, E) as an independent PublicKey.
func (kp *KeyPair) PublicKey() PublicKey {
	return PublicKey{N: kp.N(), E: kp.E()}
}

// CRTParams returns a copy of the cached CRT material. It fails with
// ErrNoInverseExists when p and q are not coprime (p == q, for instance).
func (kp *KeyPair) CRTParams() (CRTParams, error) {
	if kp.crtErr != nil {
		return CRTParams{}, kp.crtErr
	}
	return CRTParams{
		DP: new(big.Int).Set(kp.crt.DP),
		DQ: new(big.Int).Set(kp.crt.DQ),
		N1: new(big.Int).Set(kp.crt.N1),
		N2: new(big.Int).Set(kp.crt.N2),
	}, nil
}

// String shows the public half only.
func (kp *KeyPair) String() string {
	if kp == nil {
		return "KeyPair(nil)"
	}
	return fmt.Sprintf("KeyPair{n=%s, e=%s, d=%s}", kp.n, kp.e, logging.Placeholder())
}

// LogValue implements slog.LogValuer. Secrets appear as the redaction
// placeholder.
func (kp *KeyPair) LogValue() slog.Value {
	if kp == nil {
		return slog.StringValue("nil")
	}
	return slog.GroupValue(
		logging.BitLen("n_bits", kp.n),
		slog.String("n", kp.n.String()),
		slog.String("e", kp.e.String()),
		logging.Redacted("d"),
		logging.Redacted("p"),
		logging.Redacted("q"),
	)
}
