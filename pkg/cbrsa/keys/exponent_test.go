package keys_test

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

func TestSmallestExponent(t *testing.T) {
	tests := []struct {
		phi  int64
		want int64
	}{
		{3, 2},
		{4, 3},
		{8, 3},
		{3120, 7},
		{151272, 5},
		{30030, 17}, // 2*3*5*7*11*13
	}
	sel := keys.SmallestExponent()
	for _, tt := range tests {
		e, err := sel(big.NewInt(tt.phi))
		require.NoError(t, err, "phi=%d", tt.phi)
		assert.Equal(t, big.NewInt(tt.want).String(), e.String(), "phi=%d", tt.phi)
	}
}

func TestChoosePublicExponentMatchesSmallest(t *testing.T) {
	e, err := keys.ChoosePublicExponent(big.NewInt(3120))
	require.NoError(t, err)
	assert.Equal(t, "7", e.String())
}

func TestSelectorsRejectTinyTotient(t *testing.T) {
	selectors := map[string]keys.ExponentSelector{
		"smallest":     keys.SmallestExponent(),
		"random":       keys.RandomExponent(nil),
		"conventional": keys.ConventionalExponent(big.NewInt(keys.ConventionalE)),
	}
	for name, sel := range selectors {
		t.Run(name, func(t *testing.T) {
			for _, phi := range []int64{-4, 0, 1, 2} {
				_, err := sel(big.NewInt(phi))
				require.ErrorIs(t, err, keys.ErrInvalidModulus, "phi=%d", phi)
			}
			_, err := sel(nil)
			require.ErrorIs(t, err, keys.ErrInvalidArgument)
		})
	}
}

func TestRandomExponentRange(t *testing.T) {
	phi := big.NewInt(151272)
	sel := keys.RandomExponent(nil)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		e, err := sel(phi)
		require.NoError(t, err)
		require.True(t, e.Cmp(big.NewInt(1)) > 0 && e.Cmp(phi) < 0, "e=%s out of range", e)
		require.True(t, modarith.Coprime(e, phi), "e=%s not coprime", e)
		seen[e.String()] = true
	}
	assert.Greater(t, len(seen), 1, "random selector always returned the same exponent")
}

func TestRandomExponentSmallTotient(t *testing.T) {
	// phi = 3 leaves a single candidate, e = 2.
	e, err := keys.RandomExponent(nil)(big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "2", e.String())
}

func TestRandomExponentDegenerateReaderTerminates(t *testing.T) {
	// A reader of zeros always draws e = 2, which never divides into an even
	// totient, so the selector has to fall back to the scan.
	zeros := bytes.NewReader(make([]byte, 1<<16))
	e, err := keys.RandomExponent(zeros)(big.NewInt(3120))
	require.NoError(t, err)
	assert.Equal(t, "7", e.String())
}

func TestRandomExponentReaderError(t *testing.T) {
	_, err := keys.RandomExponent(bytes.NewReader(nil))(big.NewInt(3120))
	require.Error(t, err)
	assert.False(t, errors.Is(err, keys.ErrInvalidModulus))
}

func TestConventionalExponent(t *testing.T) {
	sel := keys.ConventionalExponent(big.NewInt(keys.ConventionalE))

	e, err := sel(big.NewInt(151272))
	require.NoError(t, err)
	assert.Equal(t, "65537", e.String())

	// 65537 does not fit below 3120, so the scan takes over.
	e, err = sel(big.NewInt(3120))
	require.NoError(t, err)
	assert.Equal(t, "7", e.String())

	// 3 divides 30030.
	e, err = keys.ConventionalExponent(big.NewInt(3))(big.NewInt(30030))
	require.NoError(t, err)
	assert.Equal(t, "17", e.String())

	e, err = keys.ConventionalExponent(nil)(big.NewInt(3120))
	require.NoError(t, err)
	assert.Equal(t, "7", e.String())
}

func TestConventionalExponentCopiesInput(t *testing.T) {
	e0 := big.NewInt(keys.ConventionalE)
	sel := keys.ConventionalExponent(e0)
	e0.SetInt64(4)

	e, err := sel(big.NewInt(151272))
	require.NoError(t, err)
	assert.Equal(t, "65537", e.String())

	e.SetInt64(9)
	e, err = sel(big.NewInt(151272))
	require.NoError(t, err)
	assert.Equal(t, "65537", e.String())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    keys.Policy
		wantErr bool
	}{
		{"", keys.PolicySmallest, false},
		{"smallest", keys.PolicySmallest, false},
		{"RANDOM", keys.PolicyRandom, false},
		{" conventional ", keys.PolicyConventional, false},
		{"largest", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := keys.ParsePolicy(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, keys.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyString(t *testing.T) {
	for _, p := range []keys.Policy{keys.PolicySmallest, keys.PolicyRandom, keys.PolicyConventional} {
		parsed, err := keys.ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	assert.Equal(t, "unknown", keys.Policy(42).String())
}

func TestPolicySelector(t *testing.T) {
	phi := big.NewInt(151272)

	e, err := keys.PolicySmallest.Selector(nil)(phi)
	require.NoError(t, err)
	assert.Equal(t, "5", e.String())

	e, err = keys.PolicyConventional.Selector(nil)(phi)
	require.NoError(t, err)
	assert.Equal(t, "65537", e.String())

	e, err = keys.PolicyRandom.Selector(nil)(phi)
	require.NoError(t, err)
	assert.True(t, modarith.Coprime(e, phi))
}
