package modarith

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
)

// ModPow computes base^exponent mod modulus with binary (square-and-multiply)
// exponentiation: O(log exponent) modular multiplications, every intermediate
// kept in [0, modulus).
//
// Edge cases:
//   - exponent = 0 yields 1 mod modulus, which is 0 when modulus = 1
//   - modulus = 1 yields 0 for any base and exponent
//   - a negative base, or one at least modulus, is first reduced into
//     [0, modulus); the result does not depend on the base beyond that
//
// The valid domain is exponent >= 0 and modulus >= 1. Anything else, or a nil
// operand, returns ErrInvalidArgument.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	const op = "ModPow"
	if base == nil || exponent == nil || modulus == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil operand")
	}
	if exponent.Sign() < 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "negative exponent")
	}
	if modulus.Cmp(one) < 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "modulus must be at least 1")
	}

	result := new(big.Int).Mod(one, modulus)
	if result.Cmp(zero) == 0 {
		return result, nil
	}

	// Mod is Euclidean, so a negative base lands in [0, modulus).
	b := new(big.Int).Mod(base, modulus)
	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
	}
	return result, nil
}
