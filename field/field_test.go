package field

import (
	"crypto/rand"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var bigP = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

func toBig(e Elt) *big.Int {
	x := new(big.Int).Lsh(new(big.Int).SetUint64(e.Hi), 64)
	x.Add(x, new(big.Int).SetUint64(e.Lo))
	return x
}

func randElt(t *testing.T) Elt {
	t.Helper()
	n, err := rand.Int(rand.Reader, bigP)
	require.NoError(t, err)
	return FromWords(n.Uint64(), new(big.Int).Rsh(n, 64).Uint64())
}

func TestAddSubRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		a, b := randElt(t), randElt(t)
		require.Equal(t, a, Sub(Add(a, b), b))
	}
}

func TestMulInv(t *testing.T) {
	for i := 0; i < 64; i++ {
		a := randElt(t)
		if IsZero(a) {
			continue
		}
		require.True(t, Eq(One, Mul(a, Inv(a))))
	}
}

func TestFermat(t *testing.T) {
	pMinus1 := new(big.Int).Sub(bigP, big.NewInt(1))
	for i := 0; i < 32; i++ {
		a := randElt(t)
		if IsZero(a) {
			continue
		}
		got := toBig(powBig(a, pMinus1))
		require.Equal(t, int64(1), got.Int64())
	}
}

// powBig exponentiates by a big.Int exponent using repeated squaring built
// on Mul, for test-only use with exponents wider than 64 bits.
func powBig(a Elt, e *big.Int) Elt {
	r := One
	base := a
	bitLen := e.BitLen()
	for i := 0; i < bitLen; i++ {
		if e.Bit(i) == 1 {
			r = Mul(r, base)
		}
		base = Mul(base, base)
	}
	return r
}

func TestCanonicalInvariant(t *testing.T) {
	for i := 0; i < 256; i++ {
		a, b := randElt(t), randElt(t)
		require.True(t, IsCanonical(Add(a, b)))
		require.True(t, IsCanonical(Mul(a, b)))
		require.True(t, IsCanonical(Neg(a)))
		if !IsZero(a) {
			require.True(t, IsCanonical(Inv(a)))
		}
	}
}

// TestConstantTimeRatio is a coarse guard against gross timing variance
// between a fixed "hot" input and random inputs, matching the testable
// property in the specification (ratio within 3x over many repetitions).
// It is not a substitute for a dedicated timing harness.
func TestConstantTimeRatio(t *testing.T) {
	hot := FromU64(0)
	const reps = 20000

	run := func(a Elt) time.Duration {
		start := time.Now()
		x := a
		for i := 0; i < reps; i++ {
			x = Mul(x, a)
			x = Add(x, a)
		}
		_ = x
		return time.Since(start)
	}

	hotDur := run(hot)
	randDur := run(randElt(t))

	ratio := float64(hotDur) / float64(randDur)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	require.Less(t, ratio, 3.0, "mul/add timing diverged further than expected between fixed and random inputs")
}
