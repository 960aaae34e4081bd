package keys

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

// Option configures Derive.
type Option func(*deriveOptions)

type deriveOptions struct {
	selector ExponentSelector
}

// WithExponentSelector sets the public exponent strategy. A nil selector
// keeps the default.
func WithExponentSelector(s ExponentSelector) Option {
	return func(o *deriveOptions) {
		if s != nil {
			o.selector = s
		}
	}
}

// WithPolicy is shorthand for WithExponentSelector(p.Selector(nil)).
func WithPolicy(p Policy) Option {
	return WithExponentSelector(p.Selector(nil))
}

// Derive builds a KeyPair from p and q: n = p*q, phi = (p-1)(q-1), e from the
// configured selector (SmallestExponent by default) and d = e^-1 mod phi.
//
// p and q are trusted to be distinct primes and are not tested. Derive fails
// with ErrInvalidModulus when p or q is below 2 or no exponent fits phi, and
// with ErrNoInverseExists when the selector returns an exponent sharing a
// factor with phi.
func Derive(p, q *big.Int, opts ...Option) (*KeyPair, error) {
	const op = "Derive"

	o := deriveOptions{selector: SmallestExponent()}
	for _, opt := range opts {
		opt(&o)
	}

	if p == nil || q == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil prime")
	}
	if p.Cmp(two) < 0 || q.Cmp(two) < 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidModulus, "primes must be at least 2")
	}

	kp := &KeyPair{
		p: new(big.Int).Set(p),
		q: new(big.Int).Set(q),
	}
	kp.n = new(big.Int).Mul(kp.p, kp.q)

	pm1 := new(big.Int).Sub(kp.p, one)
	qm1 := new(big.Int).Sub(kp.q, one)
	kp.phi = new(big.Int).Mul(pm1, qm1)
	if kp.phi.Cmp(one) <= 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidModulus, "totient %s is too small", kp.phi)
	}

	e, err := o.selector(new(big.Int).Set(kp.phi))
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	if e == nil || e.Cmp(one) <= 0 || e.Cmp(kp.phi) >= 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "selector returned an exponent outside (1, phi)")
	}
	kp.e = new(big.Int).Set(e)

	kp.d, err = modarith.ModInverse(kp.e, kp.phi)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	kp.crt, kp.crtErr = crtParams(kp.p, kp.q, pm1, qm1, kp.d)
	return kp, nil
}

func crtParams(p, q, pm1, qm1, d *big.Int) (*CRTParams, error) {
	g, n1, n2 := modarith.ExtendedEuclidean(p, q)
	if g.Cmp(one) != 0 {
		return nil, errs.Errorf("KeyPair.CRTParams", errs.ErrNoInverseExists, "p and q share the factor %s", g)
	}
	return &CRTParams{
		DP: reducedExponent(d, pm1),
		DQ: reducedExponent(d, qm1),
		N1: n1,
		N2: n2,
	}, nil
}

// reducedExponent returns d mod m, or m when that is 0. The two are congruent
// modulo m, but only the non-zero one keeps residues divisible by the prime at
// 0 (the reduction vanishes only for the prime 2, where m = 1).
func reducedExponent(d, m *big.Int) *big.Int {
	r := new(big.Int).Mod(d, m)
	if r.Sign() == 0 {
		return r.Set(m)
	}
	return r
}
