package cbrsa

import "github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"

var (
	// ErrInvalidModulus indicates primes whose totient cannot host a key pair.
	ErrInvalidModulus = errs.ErrInvalidModulus

	// ErrNoInverseExists indicates a modular inverse was requested for operands
	// that are not coprime.
	ErrNoInverseExists = errs.ErrNoInverseExists

	// ErrInvalidArgument indicates an operand outside a function's domain.
	ErrInvalidArgument = errs.ErrInvalidArgument

	// ErrKeyNotFound indicates an unknown or expired key id.
	ErrKeyNotFound = errs.ErrKeyNotFound

	// ErrPrimeSource indicates the prime source could not produce a pair.
	ErrPrimeSource = errs.ErrPrimeSource
)
