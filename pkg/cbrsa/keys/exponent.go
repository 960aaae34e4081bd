package keys

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

// ConventionalE is the customary RSA public exponent, 2^16 + 1.
const ConventionalE = 65537

// maxRandomDraws bounds RandomExponent before it falls back to the scan, so a
// degenerate reader cannot stall key derivation.
const maxRandomDraws = 256

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// ExponentSelector picks a public exponent e with 1 < e < phi and
// gcd(e, phi) = 1. Every selector in this package reports ErrInvalidModulus
// when phi <= 2, since no such e exists there.
type ExponentSelector func(phi *big.Int) (*big.Int, error)

// SmallestExponent scans upward from 2 and returns the first exponent coprime
// to phi. The result is reproducible for a given phi.
func SmallestExponent() ExponentSelector {
	return smallest
}

func smallest(phi *big.Int) (*big.Int, error) {
	const op = "SmallestExponent"
	if err := checkTotient(op, phi); err != nil {
		return nil, err
	}
	// phi-1 is always coprime to phi, so the loop terminates.
	for e := big.NewInt(2); e.Cmp(phi) < 0; e.Add(e, one) {
		if modarith.Coprime(e, phi) {
			return e, nil
		}
	}
	return nil, errs.Errorf(op, errs.ErrInvalidModulus, "no exponent below phi")
}

// RandomExponent draws e uniformly from [2, phi-1] until it is coprime to phi.
// A nil reader means crypto/rand.Reader. After a bounded number of rejected
// draws it falls back to SmallestExponent.
func RandomExponent(r io.Reader) ExponentSelector {
	if r == nil {
		r = rand.Reader
	}
	return func(phi *big.Int) (*big.Int, error) {
		const op = "RandomExponent"
		if err := checkTotient(op, phi); err != nil {
			return nil, err
		}
		// rand.Int returns [0, phi-2); shifting by 2 gives [2, phi-1].
		span := new(big.Int).Sub(phi, two)
		for i := 0; i < maxRandomDraws; i++ {
			e, err := rand.Int(r, span)
			if err != nil {
				return nil, errs.Wrap(op, err)
			}
			e.Add(e, two)
			if modarith.Coprime(e, phi) {
				return e, nil
			}
		}
		return smallest(phi)
	}
}

// ConventionalExponent returns e0 when it is a valid exponent for phi, and
// otherwise falls back to SmallestExponent. Small toy moduli rarely admit
// 65537, which is why the fallback exists.
func ConventionalExponent(e0 *big.Int) ExponentSelector {
	var fixed *big.Int
	if e0 != nil {
		fixed = new(big.Int).Set(e0)
	}
	return func(phi *big.Int) (*big.Int, error) {
		if err := checkTotient("ConventionalExponent", phi); err != nil {
			return nil, err
		}
		if fixed != nil && fixed.Cmp(one) > 0 && fixed.Cmp(phi) < 0 && modarith.Coprime(fixed, phi) {
			return new(big.Int).Set(fixed), nil
		}
		return smallest(phi)
	}
}

// ChoosePublicExponent applies the default policy (SmallestExponent).
func ChoosePublicExponent(phi *big.Int) (*big.Int, error) {
	return smallest(phi)
}

func checkTotient(op string, phi *big.Int) error {
	if phi == nil {
		return errs.Errorf(op, errs.ErrInvalidArgument, "nil totient")
	}
	if phi.Cmp(two) <= 0 {
		return errs.Errorf(op, errs.ErrInvalidModulus, "totient %s admits no exponent", phi)
	}
	return nil
}

// Policy names an exponent selection strategy for configuration files and
// flags.
type Policy int

const (
	// PolicySmallest selects SmallestExponent.
	PolicySmallest Policy = iota
	// PolicyRandom selects RandomExponent.
	PolicyRandom
	// PolicyConventional selects ConventionalExponent with ConventionalE.
	PolicyConventional
)

func (p Policy) String() string {
	switch p {
	case PolicySmallest:
		return "smallest"
	case PolicyRandom:
		return "random"
	case PolicyConventional:
		return "conventional"
	default:
		return "unknown"
	}
}

// ParsePolicy maps "smallest", "random" or "conventional" (case-insensitive)
// to a Policy. The empty string means PolicySmallest.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smallest":
		return PolicySmallest, nil
	case "random":
		return PolicyRandom, nil
	case "conventional":
		return PolicyConventional, nil
	default:
		return 0, errs.Errorf("ParsePolicy", errs.ErrInvalidArgument, "unknown exponent policy %q", s)
	}
}

// Selector returns the ExponentSelector for p. The reader is used by
// PolicyRandom only; PolicyConventional prefers ConventionalE.
func (p Policy) Selector(r io.Reader) ExponentSelector {
	switch p {
	case PolicyRandom:
		return RandomExponent(r)
	case PolicyConventional:
		return ConventionalExponent(big.NewInt(ConventionalE))
	default:
		return SmallestExponent()
	}
}
