package modarith

import "github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"

var (
	// ErrNoInverseExists is returned by ModInverse when gcd(e, phi) != 1.
	ErrNoInverseExists = errs.ErrNoInverseExists

	// ErrInvalidArgument is returned for operands outside a function's domain.
	ErrInvalidArgument = errs.ErrInvalidArgument
)
