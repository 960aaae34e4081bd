package modarith

import "math/big"

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// ExtendedEuclidean returns (g, x, y) such that a*x + b*y = g, where g is the
// greatest common divisor of a and b.
//
// The recursion gcd(a, b) = gcd(b, a mod b) is unrolled into a loop that
// carries the Bézout coefficients along with the remainders; the base case is
// gcd(a, 0) = (a, 1, 0). Any integers are accepted, including negatives. When
// the remainder sequence ends on a negative value all three results are
// negated, so g is always the non-negative gcd and the identity still holds.
// ExtendedEuclidean(0, 0) returns (0, 1, 0).
func ExtendedEuclidean(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	rem := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		// Euclidean division keeps 0 <= rem < |r|.
		q.DivMod(oldR, r, rem)

		oldR, r = r, new(big.Int).Set(rem)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// gcd is the g component of ExtendedEuclidean.
func gcd(a, b *big.Int) *big.Int {
	g, _, _ := ExtendedEuclidean(a, b)
	return g
}

// Coprime reports whether gcd(a, b) == 1.
func Coprime(a, b *big.Int) bool {
	return gcd(a, b).Cmp(one) == 0
}
