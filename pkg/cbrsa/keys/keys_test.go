package keys_test

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
)

func totient(kp *keys.KeyPair) *big.Int {
	pm1 := new(big.Int).Sub(kp.P(), big.NewInt(1))
	qm1 := new(big.Int).Sub(kp.Q(), big.NewInt(1))
	return pm1.Mul(pm1, qm1)
}

func assertInverse(t *testing.T, kp *keys.KeyPair) {
	t.Helper()
	phi := totient(kp)
	ed := new(big.Int).Mul(kp.E(), kp.D())
	ed.Mod(ed, phi)
	require.Equal(t, 0, ed.Cmp(big.NewInt(1)), "e*d mod phi = %s (e=%s d=%s phi=%s)", ed, kp.E(), kp.D(), phi)
}

func TestDeriveSeedKeys(t *testing.T) {
	tests := []struct {
		name       string
		p, q       int64
		n, e, d    int64
		wantPhiStr string
	}{
		{"seed primes", 383, 397, 152051, 5, 60509, "151272"},
		{"small primes", 61, 53, 3233, 7, 1783, "3120"},
		{"prime two", 2, 5, 10, 3, 3, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := keys.Derive(big.NewInt(tt.p), big.NewInt(tt.q))
			require.NoError(t, err)

			assert.Equal(t, big.NewInt(tt.n).String(), kp.N().String())
			assert.Equal(t, big.NewInt(tt.e).String(), kp.E().String())
			assert.Equal(t, big.NewInt(tt.d).String(), kp.D().String())
			assert.Equal(t, tt.wantPhiStr, totient(kp).String())

			phi := totient(kp)
			assert.True(t, kp.D().Cmp(big.NewInt(1)) > 0 && kp.D().Cmp(phi) < 0, "d=%s not in (1, phi)", kp.D())
			assertInverse(t, kp)
		})
	}
}

func TestDeriveInverseProperty(t *testing.T) {
	primes := []int64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 61, 383, 397, 7919}
	for i, p := range primes {
		for _, q := range primes[i+1:] {
			if (p-1)*(q-1) <= 2 {
				continue
			}
			for _, policy := range []keys.Policy{keys.PolicySmallest, keys.PolicyRandom, keys.PolicyConventional} {
				kp, err := keys.Derive(big.NewInt(p), big.NewInt(q), keys.WithPolicy(policy))
				require.NoError(t, err, "p=%d q=%d policy=%s", p, q, policy)
				assertInverse(t, kp)
				assert.True(t, kp.E().Cmp(big.NewInt(1)) > 0, "e must exceed 1")
			}
		}
	}
}

func TestDeriveLargeRandomPrimes(t *testing.T) {
	p, err := rand.Prime(rand.Reader, 512)
	require.NoError(t, err)
	q, err := rand.Prime(rand.Reader, 512)
	require.NoError(t, err)
	if p.Cmp(q) == 0 {
		t.Skip("drew the same prime twice")
	}

	kp, err := keys.Derive(p, q, keys.WithPolicy(keys.PolicyConventional))
	require.NoError(t, err)
	assert.Equal(t, "65537", kp.E().String())
	assertInverse(t, kp)
}

func TestDeriveInvalidModulus(t *testing.T) {
	tests := []struct {
		name string
		p, q int64
	}{
		{"p one", 1, 7},
		{"q one", 7, 1},
		{"zero", 0, 11},
		{"negative", -5, 11},
		{"phi two", 2, 3},
		{"phi one", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keys.Derive(big.NewInt(tt.p), big.NewInt(tt.q))
			require.Error(t, err)
			if !errors.Is(err, keys.ErrInvalidModulus) {
				t.Fatalf("expected ErrInvalidModulus, got %v", err)
			}
		})
	}
}

func TestDeriveNilPrime(t *testing.T) {
	_, err := keys.Derive(nil, big.NewInt(7))
	require.ErrorIs(t, err, keys.ErrInvalidArgument)
}

func TestDeriveSelectorErrors(t *testing.T) {
	p, q := big.NewInt(61), big.NewInt(53)

	t.Run("non-coprime exponent", func(t *testing.T) {
		bad := func(*big.Int) (*big.Int, error) { return big.NewInt(6), nil }
		_, err := keys.Derive(p, q, keys.WithExponentSelector(bad))
		require.ErrorIs(t, err, keys.ErrNoInverseExists)
	})

	t.Run("exponent one", func(t *testing.T) {
		bad := func(*big.Int) (*big.Int, error) { return big.NewInt(1), nil }
		_, err := keys.Derive(p, q, keys.WithExponentSelector(bad))
		require.ErrorIs(t, err, keys.ErrInvalidArgument)
	})

	t.Run("exponent equals phi", func(t *testing.T) {
		bad := func(phi *big.Int) (*big.Int, error) { return phi, nil }
		_, err := keys.Derive(p, q, keys.WithExponentSelector(bad))
		require.ErrorIs(t, err, keys.ErrInvalidArgument)
	})

	t.Run("selector failure propagates", func(t *testing.T) {
		boom := errors.New("boom")
		bad := func(*big.Int) (*big.Int, error) { return nil, boom }
		_, err := keys.Derive(p, q, keys.WithExponentSelector(bad))
		require.ErrorIs(t, err, boom)
	})

	t.Run("selector cannot mutate totient", func(t *testing.T) {
		evil := func(phi *big.Int) (*big.Int, error) {
			phi.SetInt64(1000003)
			return big.NewInt(7), nil
		}
		kp, err := keys.Derive(p, q, keys.WithExponentSelector(evil))
		require.NoError(t, err)
		assertInverse(t, kp)
	})

	t.Run("nil selector keeps default", func(t *testing.T) {
		kp, err := keys.Derive(p, q, keys.WithExponentSelector(nil))
		require.NoError(t, err)
		assert.Equal(t, "7", kp.E().String())
	})
}

func TestDeriveEqualPrimesHasNoCRT(t *testing.T) {
	kp, err := keys.Derive(big.NewInt(7), big.NewInt(7))
	require.NoError(t, err)
	assertInverse(t, kp)

	_, err = kp.CRTParams()
	require.ErrorIs(t, err, keys.ErrNoInverseExists)
}

func TestCRTParams(t *testing.T) {
	kp, err := keys.Derive(big.NewInt(383), big.NewInt(397))
	require.NoError(t, err)

	crt, err := kp.CRTParams()
	require.NoError(t, err)

	assert.Equal(t, new(big.Int).Mod(kp.D(), big.NewInt(382)).String(), crt.DP.String())
	assert.Equal(t, new(big.Int).Mod(kp.D(), big.NewInt(396)).String(), crt.DQ.String())

	bezout := new(big.Int).Mul(crt.N1, kp.P())
	bezout.Add(bezout, new(big.Int).Mul(crt.N2, kp.Q()))
	assert.Equal(t, "1", bezout.String())
}

func TestCRTParamsPrimeTwo(t *testing.T) {
	kp, err := keys.Derive(big.NewInt(2), big.NewInt(5))
	require.NoError(t, err)
	crt, err := kp.CRTParams()
	require.NoError(t, err)
	assert.Equal(t, "1", crt.DP.String(), "vanishing reduction must be replaced by p-1")
}

func TestKeyPairRedaction(t *testing.T) {
	kp, err := keys.Derive(big.NewInt(383), big.NewInt(397))
	require.NoError(t, err)

	s := kp.String()
	assert.Contains(t, s, "n=152051")
	assert.Contains(t, s, "e=5")
	assert.NotContains(t, s, kp.D().String())
	assert.Contains(t, fmt.Sprint(kp), logging.Placeholder())

	var buf bytes.Buffer
	noTime := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.Attr{}
		}
		return a
	}
	slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: noTime})).Info("derived", "key", kp)
	out := buf.String()
	for _, secret := range []string{kp.D().String(), "383", "397", "151272"} {
		assert.False(t, strings.Contains(out, secret), "log output leaks %s: %s", secret, out)
	}

	var rec struct {
		Key map[string]any `json:"key"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "152051", rec.Key["n"])
	assert.Equal(t, logging.Placeholder(), rec.Key["d"])
	assert.EqualValues(t, 18, rec.Key["n_bits"])
}

func TestNewPublicKey(t *testing.T) {
	n, e := big.NewInt(3233), big.NewInt(17)
	pub, err := keys.NewPublicKey(n, e)
	require.NoError(t, err)

	n.SetInt64(1)
	e.SetInt64(1)
	assert.Equal(t, "3233", pub.N.String())
	assert.Equal(t, "17", pub.E.String())

	_, err = keys.NewPublicKey(big.NewInt(0), big.NewInt(3))
	require.ErrorIs(t, err, keys.ErrInvalidArgument)
	_, err = keys.NewPublicKey(big.NewInt(10), big.NewInt(-3))
	require.ErrorIs(t, err, keys.ErrInvalidArgument)
	_, err = keys.NewPublicKey(nil, big.NewInt(3))
	require.ErrorIs(t, err, keys.ErrInvalidArgument)
}
