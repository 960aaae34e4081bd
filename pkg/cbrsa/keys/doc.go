// Package keys derives textbook RSA key pairs from two caller-supplied primes.
//
// Derive computes the modulus n = p*q, the totient phi = (p-1)(q-1), a public
// exponent e coprime to phi and the private exponent d = e^-1 mod phi. The
// resulting KeyPair is immutable and also caches the material used by CRT
// decryption.
//
//	kp, err := keys.Derive(big.NewInt(61), big.NewInt(53))
//	// kp.N() == 3233, kp.E() == 7, kp.D() == 1783
//
// # Exponent Selection
//
// The public exponent comes from a pluggable ExponentSelector:
//
//   - SmallestExponent: the smallest e >= 2 coprime to phi (default)
//   - RandomExponent: uniform over [2, phi-1], rejecting non-coprime draws
//   - ConventionalExponent: a fixed value such as 65537 when it fits phi
//
// Policy names the same strategies for configuration:
//
//	policy, _ := keys.ParsePolicy("random")
//	kp, err := keys.Derive(p, q, keys.WithPolicy(policy))
//
// The choice changes which valid e is returned, never the e*d = 1 (mod phi)
// invariant. e = 1 is never selected.
//
// # Trust Boundary
//
// p and q are not tested for primality. Composite inputs silently yield a key
// pair that does not decrypt correctly; use the primes package to obtain a
// pair.
package keys
