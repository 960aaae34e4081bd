package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// parseInt accepts a decimal integer with an optional sign, or a 0x-prefixed
// hexadecimal one.
func parseInt(name, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("--%s: empty value", name)
	}

	if digits, ok := cutHexPrefix(s); ok {
		if !govalidator.IsHexadecimal(digits) {
			return nil, fmt.Errorf("--%s: %q is not a hexadecimal integer", name, s)
		}
		v, _ := new(big.Int).SetString(digits, 16)
		return v, nil
	}

	if !govalidator.IsInt(s) {
		return nil, fmt.Errorf("--%s: %q is not a decimal integer", name, s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("--%s: %q is not a decimal integer", name, s)
	}
	return v, nil
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return s, false
}

// formatInt renders v in decimal, or as 0x hex when hex is set.
func formatInt(v *big.Int, hex bool) string {
	if v == nil {
		return "<nil>"
	}
	if hex {
		return hexutil.EncodeBig(v)
	}
	return v.String()
}
