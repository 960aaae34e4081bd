package cipher

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

// Encrypt returns message^E mod N. The message is not bounds-checked: any
// integer is accepted and implicitly reduced modulo N, so a message >= N
// decrypts to message mod N.
func Encrypt(message *big.Int, pub keys.PublicKey) (*big.Int, error) {
	const op = "Encrypt"
	if message == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil message")
	}
	if err := pub.Validate(); err != nil {
		return nil, errs.Wrap(op, err)
	}
	c, err := modarith.ModPow(message, pub.E, pub.N)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return c, nil
}

// Decrypt is the direct path: ciphertext^d mod n. It recovers m exactly when
// the encrypted message was in [0, n).
func Decrypt(ciphertext, d, n *big.Int) (*big.Int, error) {
	const op = "Decrypt"
	if ciphertext == nil || d == nil || n == nil {
		return nil, errs.Errorf(op, errs.ErrInvalidArgument, "nil operand")
	}
	m, err := modarith.ModPow(ciphertext, d, n)
	if err != nil {
		return nil, errs.Wrap(op, err)
	}
	return m, nil
}
