package pvac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testLiteral returns a small, fast-to-exercise parameter set that still
// satisfies every validation rule NewParametersFromLiteral enforces,
// reusing the reference B=337 (a known divisor of p-1) at a much smaller
// hypergraph/LPN scale so tests run in milliseconds.
func testLiteral() ParametersLiteral {
	return ParametersLiteral{
		B: 337,

		MBits:      64,
		NBits:      128,
		HColWeight: 6,
		XColWeight: 8,
		ErrWeight:  4,

		NoiseEntropyBits: 8,
		Tuple2Fraction:   0.5,
		DepthSlopeBits:   2,
		EdgeBudget:       100000,

		LPNN:      64,
		LPNT:      96,
		LPNTauNum: 1,
		LPNTauDen: 8,

		RecryptLo:     0.3,
		RecryptHi:     0.7,
		RecryptRounds: 4,
	}
}

func mustTestParams() Params {
	p, err := NewParametersFromLiteral(testLiteral())
	if err != nil {
		panic(err)
	}
	return p
}

func TestNewParametersFromLiteralAccepts(t *testing.T) {
	p, err := NewParametersFromLiteral(testLiteral())
	require.NoError(t, err)
	require.Equal(t, 337, p.B())
	require.Equal(t, 64, p.MBits())
}

func TestNewParametersFromLiteralRejectsBNotDividingPMinus1(t *testing.T) {
	lit := testLiteral()
	lit.B = 338
	_, err := NewParametersFromLiteral(lit)
	require.ErrorIs(t, err, ErrParam)
}

func TestNewParametersFromLiteralRejectsBadColumnWeights(t *testing.T) {
	lit := testLiteral()
	lit.HColWeight = lit.MBits + 1
	_, err := NewParametersFromLiteral(lit)
	require.ErrorIs(t, err, ErrParam)
}

func TestNewParametersFromLiteralRejectsInvertedRecryptBand(t *testing.T) {
	lit := testLiteral()
	lit.RecryptLo = 0.6
	lit.RecryptHi = 0.5
	_, err := NewParametersFromLiteral(lit)
	require.ErrorIs(t, err, ErrParam)
}

func TestNewParametersFromLiteralRejectsBadTauFraction(t *testing.T) {
	lit := testLiteral()
	lit.LPNTauNum = 8
	lit.LPNTauDen = 8
	_, err := NewParametersFromLiteral(lit)
	require.ErrorIs(t, err, ErrParam)
}

func TestDefaultParametersLiteralIsValid(t *testing.T) {
	_, err := NewParametersFromLiteral(DefaultParametersLiteral())
	require.NoError(t, err)
}
