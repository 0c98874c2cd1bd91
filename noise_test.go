package pvac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanNoiseNonNegative(t *testing.T) {
	p := mustTestParams()
	z2, z3 := planNoise(p, 0)
	require.GreaterOrEqual(t, z2, 0)
	require.GreaterOrEqual(t, z3, 0)
}

func TestPlanNoiseGrowsWithDepthHint(t *testing.T) {
	p := mustTestParams()
	z2Shallow, z3Shallow := planNoise(p, 0)
	z2Deep, z3Deep := planNoise(p, 30)

	require.Greater(t, z2Deep, z2Shallow)
	require.Greater(t, z3Deep, z3Shallow)
}

func TestPlanNoiseSplitsByTupleFraction(t *testing.T) {
	lit := testLiteral()
	lit.Tuple2Fraction = 1.0
	p, err := NewParametersFromLiteral(lit)
	require.NoError(t, err)

	_, z3 := planNoise(p, 0)
	require.Equal(t, 0, z3)
}
