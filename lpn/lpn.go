// Package lpn implements prf_R, the Learning-Parity-with-Noise
// pseudorandom function PVAC uses to derive every layer's masking scalar
// R. Three independent LPN instances (each itself an LPN-sample stream
// compressed through a Toeplitz matrix down to a 127-bit string) are
// evaluated and multiplied together, amplifying distinguishing advantage
// beyond any single instance's margin.
package lpn

import (
	"crypto/aes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/sampling"
)

// Params bundles the LPN instance's public shape: secret length, sample
// count, and Bernoulli noise rate lpn_tau_num/lpn_tau_den.
type Params struct {
	N      int
	T      int
	TauNum int
	TauDen int
}

// Key holds the scheme's four 64-bit PRF keys and its LPN secret bit
// string. Keys[0..2] seed the three row-sampling/noise instances ("r.1",
// "r.2", "r.3"); Keys[3] seeds the shared Toeplitz top-row derivation.
type Key struct {
	PRFKeys [4]uint64
	Secret  bitvec.V
}

// Seed is the per-layer domain-separation pair every BASE layer carries:
// its ztag and its nonce.
type Seed struct {
	Ztag    uint64
	NonceLo uint64
	NonceHi uint64
}

// ErrZeroR is wrapped by callers that observe an unexpected zero R;
// kept here as a shared sentinel.
var ErrZeroR = errors.New("lpn: R evaluated to zero")

// deriveKeyIV reproduces the scheme's "derive 32-byte key + nonce via
// SHA-256 over (prf_k, canon_tag, H_digest, seed.ztag, seed.nonce, FNV-1a
// of a domain label)" construction. The IV is a second, domain-suffixed
// SHA-256 call, truncated to an AES block.
func deriveKeyIV(prfKey, canonTag uint64, hDigest [32]byte, seed Seed, dom string) ([32]byte, [aes.BlockSize]byte) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(dom))
	domSum := f.Sum64()

	write := func(h interface{ Write([]byte) (int, error) }, words ...uint64) {
		var b [8]byte
		for _, w := range words {
			binary.LittleEndian.PutUint64(b[:], w)
			h.Write(b[:])
		}
	}

	kh := sha256.New()
	write(kh, prfKey, canonTag)
	kh.Write(hDigest[:])
	write(kh, seed.Ztag, seed.NonceLo, seed.NonceHi, domSum)
	var key [32]byte
	copy(key[:], kh.Sum(nil))

	ih := sha256.New()
	write(ih, prfKey, canonTag)
	ih.Write(hDigest[:])
	write(ih, seed.Ztag, seed.NonceLo, seed.NonceHi, domSum)
	ih.Write([]byte("|iv"))
	var iv [aes.BlockSize]byte
	copy(iv[:], ih.Sum(nil))

	return key, iv
}

// sampleRow draws ceil(n/64) words from g as one row of the LPN sample
// matrix.
func sampleRow(g *sampling.PRG, n int) bitvec.V {
	row := bitvec.New(n)
	for i := range row.Words {
		row.Words[i] = g.NextU64()
	}
	row.ClearTail()
	return row
}

// core evaluates one of the three LPN-Toeplitz instances named by
// instance (0, 1, or 2), producing one 127-bit-derived Fp value.
func core(key Key, params Params, canonTag uint64, hDigest [32]byte, seed Seed, instance int) field.Elt {
	rowDom := fmt.Sprintf("pvac.prf.r.%d", instance+1)
	noiseDom := fmt.Sprintf("pvac.prf.noise.%d", instance+1)
	toepDom := fmt.Sprintf("pvac.dom.toeplitz.%d", instance+1)

	rowKey, rowIV := deriveKeyIV(key.PRFKeys[instance], canonTag, hDigest, seed, rowDom)
	noiseKey, noiseIV := deriveKeyIV(key.PRFKeys[instance], canonTag, hDigest, seed, noiseDom)
	toepKey, toepIV := deriveKeyIV(key.PRFKeys[3], canonTag, hDigest, seed, toepDom)

	rowPRG, _ := sampling.NewStreamCipherPRG(rowKey, rowIV)
	noisePRG, _ := sampling.NewStreamCipherPRG(noiseKey, noiseIV)
	toepPRG, _ := sampling.NewStreamCipherPRG(toepKey, toepIV)

	y := bitvec.New(params.T)
	for i := 0; i < params.T; i++ {
		row := sampleRow(rowPRG, params.N)
		parity := uint64(0)
		for wi, w := range row.Words {
			parity ^= popcount64(w & key.Secret.Words[wi])
		}
		parity &= 1

		e := uint64(0)
		if noisePRG.Bounded(uint64(params.TauDen)) < uint64(params.TauNum) {
			e = 1
		}

		if parity^e != 0 {
			y.SetBit(i)
		}
	}

	topRow := sampleRow(toepPRG, params.T+127)
	out := toeplitz127(topRow, y, params.T)

	lo := out.Words[0]
	var hi uint64
	if len(out.Words) > 1 {
		hi = out.Words[1] & ((uint64(1) << 63) - 1)
	}
	elt := field.FromWords(lo, hi)
	if field.IsZero(elt) {
		return field.One
	}
	return elt
}

// toeplitz127 compresses the length-T bitstring y through the Toeplitz
// matrix whose first row is topRow, producing 127 output bits: output
// bit k is the parity of topRow[k:k+T] AND y.
func toeplitz127(topRow, y bitvec.V, tLen int) bitvec.V {
	out := bitvec.New(127)
	for k := 0; k < 127; k++ {
		acc := uint64(0)
		for i := 0; i < tLen; i++ {
			acc ^= topRow.GetBit(k+i) & y.GetBit(i)
		}
		if acc&1 != 0 {
			out.SetBit(k)
		}
	}
	return out
}

func popcount64(x uint64) uint64 {
	c := uint64(0)
	for x != 0 {
		x &= x - 1
		c++
	}
	return c & 1
}

// PRFR evaluates prf_R: the product of three independent LPN-Toeplitz
// instances, deterministic in (key, canonTag, hDigest, seed) and
// independent with overwhelming probability across any change to those
// inputs.
func PRFR(key Key, params Params, canonTag uint64, hDigest [32]byte, seed Seed) field.Elt {
	r := field.One
	for inst := 0; inst < 3; inst++ {
		r = field.Mul(r, core(key, params, canonTag, hDigest, seed, inst))
	}
	return r
}

// CombineProductR derives a PROD layer's R from its two parent layers:
// R = R[pa] * R[pb].
func CombineProductR(ra, rb field.Elt) field.Elt {
	return field.Mul(ra, rb)
}

// CheckNonZero wraps ErrZeroR with the offending seed if r is zero.
func CheckNonZero(r field.Elt, seed Seed) error {
	if field.IsZero(r) {
		return fmt.Errorf("lpn: seed %+v: %w", seed, ErrZeroR)
	}
	return nil
}
