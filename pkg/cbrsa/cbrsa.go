package cbrsa

import (
	"math/big"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/cipher"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

// DeriveKeyPair derives a key pair from the primes p and q. See keys.Derive.
func DeriveKeyPair(p, q *big.Int, opts ...keys.Option) (*KeyPair, error) {
	return keys.Derive(p, q, opts...)
}

// Encrypt returns message^e mod n for pub = (n, e).
func Encrypt(message *big.Int, pub PublicKey) (*big.Int, error) {
	return cipher.Encrypt(message, pub)
}

// Decrypt returns ciphertext^privateKey mod n.
func Decrypt(ciphertext, privateKey, n *big.Int) (*big.Int, error) {
	return cipher.Decrypt(ciphertext, privateKey, n)
}

// DecryptCRT decrypts using the primes of kp and the Chinese Remainder
// Theorem. It returns the same message as Decrypt.
func DecryptCRT(ciphertext *big.Int, kp *KeyPair) (*big.Int, error) {
	return cipher.DecryptCRT(ciphertext, kp)
}

// ModPow returns base^exponent mod modulus.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	return modarith.ModPow(base, exponent, modulus)
}

// ExtendedEuclidean returns (gcd, x, y) with a*x + b*y = gcd.
func ExtendedEuclidean(a, b *big.Int) (gcd, x, y *big.Int) {
	return modarith.ExtendedEuclidean(a, b)
}
