package cbrsa

import (
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
)

// KeyPair is an alias for keys.KeyPair.
type KeyPair = keys.KeyPair

// PublicKey is an alias for keys.PublicKey.
type PublicKey = keys.PublicKey

// Error is the concrete type of every error returned by this module. Op names
// the failing operation; errors.Is matches the sentinel kind through Unwrap.
type Error = errs.Error

// ExponentSelector is an alias for keys.ExponentSelector.
type ExponentSelector = keys.ExponentSelector
