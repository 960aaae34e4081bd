package keys

import "github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"

var (
	// ErrInvalidModulus is returned when (p-1)(q-1) cannot host a key pair.
	ErrInvalidModulus = errs.ErrInvalidModulus

	// ErrNoInverseExists is returned when the chosen exponent shares a factor
	// with the totient, or when p and q share a factor (CRT material).
	ErrNoInverseExists = errs.ErrNoInverseExists

	// ErrInvalidArgument is returned for nil operands, unknown policies and
	// selectors that return an out-of-range exponent.
	ErrInvalidArgument = errs.ErrInvalidArgument
)
