// Package modarith provides the integer arithmetic underneath textbook RSA:
// the extended Euclidean algorithm, modular exponentiation and modular
// inversion over arbitrary-precision integers.
//
// # Functions
//
//   - ExtendedEuclidean(a, b): Bézout triple (g, x, y) with a*x + b*y = g
//   - ModPow(base, exponent, modulus): base^exponent mod modulus by binary
//     (square-and-multiply) exponentiation
//   - ModInverse(e, phi): the unique d in [0, phi) with e*d = 1 (mod phi)
//
// All functions are pure. Inputs are never modified and every result is a
// freshly allocated *big.Int owned by the caller, so results may be shared
// between goroutines once returned.
//
// # Reduction Convention
//
// Reductions follow mathematical (Euclidean) modular arithmetic rather than
// truncating remainder: a negative base is first mapped into [0, modulus).
//
//	r, _ := modarith.ModPow(big.NewInt(-2), big.NewInt(3), big.NewInt(5))
//	// r == 2, since (-2)^3 = -8 = 2 (mod 5)
//
// # Security Considerations
//
// Nothing in this package runs in constant time. It exists to make the RSA
// arithmetic explicit, not to protect secrets against timing observers.
package modarith
