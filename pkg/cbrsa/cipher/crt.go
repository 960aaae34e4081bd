package cipher

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

// DecryptCRT decrypts with the Chinese Remainder Theorem. Two half-size
// exponentiations
//
//	a1 = (c mod p)^dp mod p,  a2 = (c mod q)^dq mod q
//
// are recombined with the Bézout coefficients n1*p + n2*q = 1:
//
//	m = (a1*n2*q + a2*n1*p) mod n
//
// The result always equals Decrypt(c, kp.D(), kp.N()). dp, dq, n1 and n2 come
// from the key pair's cached CRT material. DecryptCRT fails with
// ErrNoInverseExists when p and q are not coprime.
func DecryptCRT(ciphertext *big.Int, kp *keys.KeyPair) (*big.Int, error) {
	const op = "DecryptCRT"
	if ciphertext == nil || kp == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil operand")
	}

	crt, err := kp.CRTParams()
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	p, q, n := kp.P(), kp.Q(), kp.N()

	a1, err := modarith.ModPow(new(big.Int).Mod(ciphertext, p), crt.DP, p)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	a2, err := modarith.ModPow(new(big.Int).Mod(ciphertext, q), crt.DQ, q)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	// n2*q = 1 (mod p) and n1*p = 1 (mod q).
	m := a1.Mul(a1, crt.N2)
	m.Mul(m, q)
	a2.Mul(a2, crt.N1)
	a2.Mul(a2, p)
	m.Add(m, a2)
	return m.Mod(m, n), nil
}
