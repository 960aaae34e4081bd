// Package errs holds the error kinds shared by the cb-rsa packages. Public
// packages re-export the sentinels so callers never import this package.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidModulus indicates a totient too small to host a key pair
	// (phi <= 1, or no public exponent with 1 < e < phi exists).
	ErrInvalidModulus = errors.New("cbrsa: invalid modulus")

	// ErrNoInverseExists indicates the operands share a factor greater than 1.
	ErrNoInverseExists = errors.New("cbrsa: no modular inverse exists")

	// ErrInvalidArgument indicates an operand outside the function's domain
	// (nil, negative exponent, modulus below 1).
	ErrInvalidArgument = errors.New("cbrsa: invalid argument")

	// ErrKeyNotFound indicates an unknown or expired key id.
	ErrKeyNotFound = errors.New("cbrsa: key not found")

	// ErrPrimeSource indicates the prime source could not produce a pair.
	ErrPrimeSource = errors.New("cbrsa: prime source failure")
)

// Error wraps an underlying error with the operation that produced it.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cbrsa.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches op to err. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Errorf returns an *Error for op whose cause wraps kind and carries a
// formatted detail message.
func Errorf(op string, kind error, format string, args ...any) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}
