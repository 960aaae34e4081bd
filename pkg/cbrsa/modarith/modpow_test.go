package modarith_test

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/modarith"
)

func TestModPowKnownValues(t *testing.T) {
	tests := []struct {
		name                string
		base, exponent, mod int64
		want                int64
	}{
		{"2^3 mod 5", 2, 3, 5, 3},
		{"3^4 mod 7", 3, 4, 7, 4},
		{"7^3 mod 10", 7, 3, 10, 3},
		{"exponent zero", 5, 0, 7, 1},
		{"modulus one", 5, 3, 1, 0},
		{"exponent zero modulus one", 5, 0, 1, 0},
		{"base larger than modulus", 12, 3, 5, 3},
		{"2^10 mod 1000", 2, 10, 1000, 24},
		{"negative base", -2, 3, 5, 2},
		{"zero base", 0, 5, 7, 0},
		{"zero base zero exponent", 0, 0, 7, 1},
		{"base equals modulus", 5, 3, 5, 0},
		{"base equals modulus plus one", 6, 3, 5, 1},
		{"exponent one", 3, 1, 7, 3},
		{"exponent two", 3, 2, 7, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := modarith.ModPow(big.NewInt(tt.base), big.NewInt(tt.exponent), big.NewInt(tt.mod))
			require.NoError(t, err)
			assert.Equal(t, 0, got.Cmp(big.NewInt(tt.want)), "ModPow(%d, %d, %d) = %s, want %d",
				tt.base, tt.exponent, tt.mod, got, tt.want)
		})
	}
}

// reference is the mathematical definition: reduce base into [0, m), raise,
// then reduce again. big.Int.Exp plays the oracle.
func reference(base, exponent, modulus *big.Int) *big.Int {
	b := new(big.Int).Mod(base, modulus)
	return new(big.Int).Exp(b, exponent, modulus)
}

func TestModPowMatchesReference(t *testing.T) {
	triples := [][3]int64{
		{2, 3, 5},
		{3, 4, 7},
		{7, 3, 10},
		{5, 0, 7},
		{12, 3, 5},
		{2, 10, 1000},
		{-2, 3, 5},
		{0, 5, 7},
		{-123456, 65537, 152051},
		{98765, 1 << 40, 1<<61 - 1},
	}
	for _, tr := range triples {
		base, exponent, modulus := big.NewInt(tr[0]), big.NewInt(tr[1]), big.NewInt(tr[2])
		got, err := modarith.ModPow(base, exponent, modulus)
		require.NoError(t, err)
		want := reference(base, exponent, modulus)
		assert.Equal(t, 0, got.Cmp(want), "ModPow(%v) = %s, want %s", tr, got, want)
	}

	// 2^100 mod 1000
	got, err := modarith.ModPow(big.NewInt(2), big.NewInt(100), big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cmp(new(big.Int).Exp(big.NewInt(2), big.NewInt(100), big.NewInt(1000))))
}

func TestModPowRandomLarge(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 1024)
	for i := 0; i < 20; i++ {
		base, err := rand.Int(rand.Reader, limit)
		require.NoError(t, err)
		exponent, err := rand.Int(rand.Reader, limit)
		require.NoError(t, err)
		modulus, err := rand.Int(rand.Reader, limit)
		require.NoError(t, err)
		modulus.Add(modulus, big.NewInt(1))
		if i%2 == 1 {
			base.Neg(base)
		}

		got, err := modarith.ModPow(base, exponent, modulus)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(reference(base, exponent, modulus)))
	}
}

// TestModPowMatchesPrimeField cross-checks against the BN254 scalar field
// implementation, which exponentiates in Montgomery form.
func TestModPowMatchesPrimeField(t *testing.T) {
	r := fr.Modulus()
	for i := 0; i < 10; i++ {
		base, err := rand.Int(rand.Reader, r)
		require.NoError(t, err)
		exponent, err := rand.Int(rand.Reader, r)
		require.NoError(t, err)

		var x, z fr.Element
		x.SetBigInt(base)
		z.Exp(x, exponent)
		want := z.BigInt(new(big.Int))

		got, err := modarith.ModPow(base, exponent, r)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(want), "base=%s exponent=%s", base, exponent)
	}
}

func TestModPowDoesNotMutateInputs(t *testing.T) {
	base, exponent, modulus := big.NewInt(-17), big.NewInt(9), big.NewInt(11)
	_, err := modarith.ModPow(base, exponent, modulus)
	require.NoError(t, err)
	assert.Equal(t, int64(-17), base.Int64())
	assert.Equal(t, int64(9), exponent.Int64())
	assert.Equal(t, int64(11), modulus.Int64())
}

func TestModPowInvalidArguments(t *testing.T) {
	tests := []struct {
		name                    string
		base, exponent, modulus *big.Int
	}{
		{"nil base", nil, big.NewInt(1), big.NewInt(5)},
		{"nil exponent", big.NewInt(1), nil, big.NewInt(5)},
		{"nil modulus", big.NewInt(1), big.NewInt(1), nil},
		{"negative exponent", big.NewInt(2), big.NewInt(-1), big.NewInt(5)},
		{"zero modulus", big.NewInt(2), big.NewInt(3), big.NewInt(0)},
		{"negative modulus", big.NewInt(2), big.NewInt(3), big.NewInt(-5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := modarith.ModPow(tt.base, tt.exponent, tt.modulus)
			require.Error(t, err)
			if !errors.Is(err, modarith.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func BenchmarkModPow2048(b *testing.B) {
	limit := new(big.Int).Lsh(big.NewInt(1), 2048)
	base, _ := rand.Int(rand.Reader, limit)
	exponent, _ := rand.Int(rand.Reader, limit)
	modulus, _ := rand.Int(rand.Reader, limit)
	modulus.SetBit(modulus, 0, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = modarith.ModPow(base, exponent, modulus)
	}
}
