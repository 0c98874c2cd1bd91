// Package pvac implements PVAC, a symmetric, depth-bounded homomorphic
// encryption scheme over the Mersenne prime field Fp = 2^127-1. A
// ciphertext supports unbounded addition/subtraction/scaling and a
// bounded chain of multiplications, while concealing its plaintext
// behind an LPN-PRF multiplicative mask, a balanced hypergraph of signed
// weighted edges, and sparse parity-check-matrix bit tags.
package pvac

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/pvaclabs/pvac/field"
)

// Sentinel errors, checked with errors.Is. InternalInvariantError
// conditions are not among these: they panic, since they indicate a bug
// or tampering rather than a condition a caller can recover from.
var (
	ErrParam  = errors.New("pvac: parameter error")
	ErrIO     = errors.New("pvac: io error")
	ErrDecode = errors.New("pvac: decode error")
)

// ParametersLiteral is the user-facing, unvalidated configuration front
// door. NewParametersFromLiteral validates it into an immutable Params.
type ParametersLiteral struct {
	B int

	MBits      int
	NBits      int
	HColWeight int
	XColWeight int
	ErrWeight  int

	NoiseEntropyBits int
	Tuple2Fraction   float64
	DepthSlopeBits   int
	EdgeBudget       int

	LPNN      int
	LPNT      int
	LPNTauNum int
	LPNTauDen int

	RecryptLo     float64
	RecryptHi     float64
	RecryptRounds int
}

// DefaultParametersLiteral returns the specification's reference
// parameter set.
func DefaultParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		B: 337,

		MBits:      8192,
		NBits:      16384,
		HColWeight: 192,
		XColWeight: 128,
		ErrWeight:  128,

		NoiseEntropyBits: 120,
		Tuple2Fraction:   0.55,
		DepthSlopeBits:   16,
		EdgeBudget:       1_200_000,

		LPNN:      4096,
		LPNT:      16384,
		LPNTauNum: 1,
		LPNTauDen: 8,

		RecryptLo:     0.48,
		RecryptHi:     0.52,
		RecryptRounds: 8,
	}
}

// Params is the scheme's immutable, validated configuration. Build one
// with NewParametersFromLiteral; the zero value is not valid.
type Params struct {
	lit ParametersLiteral
}

// NewParametersFromLiteral validates lit and returns the immutable Params
// it describes, or a wrapped ErrParam describing the first violation
// found.
func NewParametersFromLiteral(lit ParametersLiteral) (Params, error) {
	if lit.B <= 1 {
		return Params{}, fmt.Errorf("pvac: B must be > 1: %w", ErrParam)
	}
	pMinus1 := new(big.Int).Sub(field.PBig(), big.NewInt(1))
	if new(big.Int).Mod(pMinus1, big.NewInt(int64(lit.B))).Sign() != 0 {
		return Params{}, fmt.Errorf("pvac: B=%d does not divide p-1: %w", lit.B, ErrParam)
	}

	if lit.MBits <= 0 || lit.NBits <= 0 {
		return Params{}, fmt.Errorf("pvac: MBits and NBits must be positive: %w", ErrParam)
	}
	if lit.HColWeight <= 0 || lit.HColWeight > lit.MBits {
		return Params{}, fmt.Errorf("pvac: HColWeight out of range: %w", ErrParam)
	}
	if lit.XColWeight <= 0 || lit.XColWeight > lit.NBits {
		return Params{}, fmt.Errorf("pvac: XColWeight out of range: %w", ErrParam)
	}
	if lit.ErrWeight < 0 || lit.ErrWeight > lit.MBits {
		return Params{}, fmt.Errorf("pvac: ErrWeight out of range: %w", ErrParam)
	}
	if lit.LPNN <= 0 || lit.LPNT <= 0 {
		return Params{}, fmt.Errorf("pvac: LPNN and LPNT must be positive: %w", ErrParam)
	}
	if lit.LPNTauNum <= 0 || lit.LPNTauDen <= lit.LPNTauNum {
		return Params{}, fmt.Errorf("pvac: LPNTauNum/LPNTauDen must satisfy 0 < num < den: %w", ErrParam)
	}
	if lit.EdgeBudget <= 0 {
		return Params{}, fmt.Errorf("pvac: EdgeBudget must be positive: %w", ErrParam)
	}
	if lit.RecryptLo < 0 || lit.RecryptHi > 1 || lit.RecryptLo >= lit.RecryptHi {
		return Params{}, fmt.Errorf("pvac: recrypt band must satisfy 0 <= lo < hi <= 1: %w", ErrParam)
	}
	if lit.RecryptRounds <= 0 {
		return Params{}, fmt.Errorf("pvac: RecryptRounds must be positive: %w", ErrParam)
	}
	if lit.Tuple2Fraction < 0 || lit.Tuple2Fraction > 1 {
		return Params{}, fmt.Errorf("pvac: Tuple2Fraction must be in [0,1]: %w", ErrParam)
	}

	return Params{lit: lit}, nil
}

func (p Params) B() int                  { return p.lit.B }
func (p Params) MBits() int              { return p.lit.MBits }
func (p Params) NBits() int              { return p.lit.NBits }
func (p Params) HColWeight() int         { return p.lit.HColWeight }
func (p Params) XColWeight() int         { return p.lit.XColWeight }
func (p Params) ErrWeight() int          { return p.lit.ErrWeight }
func (p Params) NoiseEntropyBits() int   { return p.lit.NoiseEntropyBits }
func (p Params) Tuple2Fraction() float64 { return p.lit.Tuple2Fraction }
func (p Params) DepthSlopeBits() int     { return p.lit.DepthSlopeBits }
func (p Params) EdgeBudget() int         { return p.lit.EdgeBudget }
func (p Params) LPNN() int               { return p.lit.LPNN }
func (p Params) LPNT() int               { return p.lit.LPNT }
func (p Params) LPNTauNum() int          { return p.lit.LPNTauNum }
func (p Params) LPNTauDen() int          { return p.lit.LPNTauDen }
func (p Params) RecryptBand() (lo, hi float64) {
	return p.lit.RecryptLo, p.lit.RecryptHi
}
func (p Params) RecryptRounds() int { return p.lit.RecryptRounds }

// Literal returns the validated literal this Params was built from, for
// serialization.
func (p Params) Literal() ParametersLiteral { return p.lit }
