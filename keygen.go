package pvac

import (
	"io"
	"math/big"

	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// KeyGenerator builds a (PublicKey, SecretKey) pair under a fixed Params.
// Every draw of randomness goes through the rng passed to GenKeyPair: the
// CSPRNG is an injected capability, not a process-global, so tests can
// supply a deterministic stream.
type KeyGenerator struct {
	params Params
}

// NewKeyGenerator returns a KeyGenerator for params.
func NewKeyGenerator(params Params) *KeyGenerator {
	return &KeyGenerator{params: params}
}

// smallPrimeFactors returns the distinct prime factors of n via trial
// division. n is always a small public scheme parameter (the subgroup
// order B), never secret-dependent, so this need not run in constant
// time.
func smallPrimeFactors(n int) []int {
	var factors []int
	m := n
	for p := 2; p*p <= m; p++ {
		if m%p == 0 {
			factors = append(factors, p)
			for m%p == 0 {
				m /= p
			}
		}
	}
	if m > 1 {
		factors = append(factors, m)
	}
	return factors
}

// findGenerator draws random candidates until it finds a generator of
// the order-B subgroup of Fp*: a random non-zero h whose h^((p-1)/B) is
// not 1.
func findGenerator(rng io.Reader, exp *big.Int) field.Elt {
	for {
		h := randomNonzeroElt(rng)
		acc := field.PowBig(h, exp)
		if !field.Eq(acc, field.One) {
			return acc
		}
	}
}

// findPrimitiveOmega draws random candidates until it finds an element
// of exact order B: acc = h^((p-1)/B) must not be 1, and for every prime
// divisor q of B, acc^(B/q) must not be 1 either (otherwise acc would
// generate a proper subgroup of the order-B group).
func findPrimitiveOmega(rng io.Reader, exp *big.Int, b int, primeFactors []int) field.Elt {
	for {
		h := randomNonzeroElt(rng)
		acc := field.PowBig(h, exp)
		if field.Eq(acc, field.One) {
			continue
		}
		ok := true
		for _, q := range primeFactors {
			sub := field.Pow(acc, uint64(b/q))
			if field.Eq(sub, field.One) {
				ok = false
				break
			}
		}
		if ok {
			return acc
		}
	}
}

// GenKeyPair runs KeyGen: builds canon_tag, H, U, four PRF keys, the
// order-B generator g and its power table, omega_B, and a fresh LPN
// secret, drawing every random value from rng.
func (kg *KeyGenerator) GenKeyPair(rng io.Reader) (PublicKey, SecretKey) {
	p := kg.params

	canonTag := readUint64(rng)
	hCols, hDigest := hgraph.Build(p.MBits(), p.NBits(), p.HColWeight(), canonTag)
	perm := hgraph.NewPermutation(canonTag, p.MBits())

	var prfKeys [4]uint64
	for i := range prfKeys {
		prfKeys[i] = readUint64(rng)
	}

	pMinus1 := new(big.Int).Sub(field.PBig(), big.NewInt(1))
	exp := new(big.Int).Div(pMinus1, big.NewInt(int64(p.B())))

	g := findGenerator(rng, exp)
	powG := make([]field.Elt, p.B())
	powG[0] = field.One
	for k := 1; k < p.B(); k++ {
		powG[k] = field.Mul(powG[k-1], g)
	}

	primeFactors := smallPrimeFactors(p.B())
	omegaB := findPrimitiveOmega(rng, exp, p.B(), primeFactors)

	lpnSecret := bitvec.New(p.LPNN())
	for i := range lpnSecret.Words {
		lpnSecret.Words[i] = readUint64(rng)
	}
	lpnSecret.ClearTail()

	pub := PublicKey{
		Params:   p,
		CanonTag: canonTag,
		H:        hCols,
		HDigest:  hDigest,
		Perm:     perm,
		OmegaB:   omegaB,
		PowG:     powG,
	}
	sec := SecretKey{
		PRFKeys:   prfKeys,
		LPNSecret: lpnSecret,
	}
	return pub, sec
}
