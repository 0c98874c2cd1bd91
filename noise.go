package pvac

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// planNoise computes the 2-tuple and 3-tuple counts for the noise budget
// at a given depth hint: budget = noise_entropy_bits + depth_slope_bits *
// max(0, depthHint); Z2 = floor(budget*tuple2_fraction / (2*log2(B)));
// Z3 = floor(budget*(1-tuple2_fraction) / (3*log2(B))).
//
// log2(B) is computed at 128-bit mantissa precision via bigfloat.Log so
// the tuple counts do not drift across repeated re-encryption at high
// depth hints, where a plain float64 log2 would round differently
// cross-platform.
func planNoise(p Params, depthHint int) (z2, z3 int) {
	d := depthHint
	if d < 0 {
		d = 0
	}
	budget := float64(p.NoiseEntropyBits() + p.DepthSlopeBits()*d)

	prec := uint(128)
	lnB := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(int64(p.B())))
	ln2 := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt64(2))
	log2B := new(big.Float).SetPrec(prec).Quo(lnB, ln2)
	log2BFloat, _ := log2B.Float64()

	z2 = int(budget * p.Tuple2Fraction() / (2 * log2BFloat))
	z3 = int(budget * (1 - p.Tuple2Fraction()) / (3 * log2BFloat))
	if z2 < 0 {
		z2 = 0
	}
	if z3 < 0 {
		z3 = 0
	}
	return
}
