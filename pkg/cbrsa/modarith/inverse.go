package modarith

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
)

// ModInverse returns the unique d in [0, phi) with e*d = 1 (mod phi), taken
// from the x coefficient of ExtendedEuclidean(e, phi).
//
// It fails with ErrNoInverseExists when gcd(e, phi) != 1 and with
// ErrInvalidArgument for a nil operand or phi < 1.
func ModInverse(e, phi *big.Int) (*big.Int, error) {
	const op = "ModInverse"
	if e == nil || phi == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil operand")
	}
	if phi.Cmp(one) < 0 {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "modulus must be at least 1")
	}

	g, x, _ := ExtendedEuclidean(e, phi)
	if g.Cmp(one) != 0 {
		return nil, errs.Errorf(op, errs.ErrNoInverseExists, "gcd is %s, not 1", g)
	}
	return x.Mod(x, phi), nil
}
