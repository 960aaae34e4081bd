// Package cbrsa is the entry point of cb-rsa-go, a textbook RSA library built
// to make the arithmetic explicit: key derivation from two primes, modular
// exponentiation, and direct and CRT decryption over math/big integers.
//
// The functions here forward to the subpackages:
//
//   - modarith: ExtendedEuclidean, ModPow, ModInverse
//   - keys: Derive, exponent selection policies, KeyPair
//   - cipher: Encrypt, Decrypt, DecryptCRT
//
// Supporting packages build a small service around the core: engine (context
// aware operations, batching, key storage by id), keyring, metrics, primes and
// logging.
//
// # Example
//
//	kp, err := cbrsa.DeriveKeyPair(big.NewInt(61), big.NewInt(53))
//	if err != nil {
//	    return err
//	}
//	c, _ := cbrsa.Encrypt(big.NewInt(123), kp.PublicKey())
//	m, _ := cbrsa.DecryptCRT(c, kp) // 123
//
// # Errors
//
// Every error is an *Error carrying the failing operation. Use errors.Is with
// ErrInvalidModulus, ErrNoInverseExists, ErrInvalidArgument, ErrKeyNotFound or
// ErrPrimeSource to classify it.
//
// # Security Considerations
//
// This is not a production cryptographic library. There is no padding, no
// constant-time arithmetic and no rejection of weak exponents or composite
// "primes". Use crypto/rsa for real keys.
package cbrsa
