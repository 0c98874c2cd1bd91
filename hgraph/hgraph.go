// Package hgraph builds and queries PVAC's public structural artifacts:
// the sparse parity-check matrix H, the tag permutation U derived from
// canon_tag, the per-layer domain-separation tag ztag, and the edge tag
// generator sigma_from_H built on top of H. None of this package ever
// touches secret key material; everything here is part of the public key.
package hgraph

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/sampling"
	"golang.org/x/crypto/blake2b"
)

// DomH, DomX, DomNoise, DomZtag are the fixed domain-separation labels
// from the specification's glossary.
const (
	DomH     = "pvac.dom.h_gen"
	DomX     = "pvac.dom.x_seed"
	DomNoise = "pvac.dom.noise"
	DomZtag  = "pvac.dom.ztag"
)

// Sign mirrors the specification's edge sign, +1 or -1.
type Sign uint8

const (
	Plus  Sign = 0
	Minus Sign = 1
)

// Build constructs the n_bits columns of H, each an m_bits-wide sparse
// bit vector with exactly h_col_wt set bits, plus its SHA-256 digest.
// Column c is seeded by the public 5-tuple (m, n, h_col_wt, c, canonTag)
// under domain DomH, matching the specification's deterministic
// construction.
func Build(mBits, nBits, hColWt int, canonTag uint64) (cols []bitvec.V, digest [32]byte) {
	cols = make([]bitvec.V, nBits)

	for c := 0; c < nBits; c++ {
		words := []uint64{uint64(mBits), uint64(nBits), uint64(hColWt), uint64(c), canonTag}
		xof := sampling.NewXOF(DomH, words)

		col := bitvec.New(mBits)
		for _, r := range xof.ChooseK(hColWt, mBits) {
			col.SetBit(r)
		}
		cols[c] = col
	}

	digest = Digest(mBits, nBits, hColWt, cols)
	return
}

// Digest computes H's SHA-256 digest over its parameters and every
// column's packed byte layout, used to bind PRF derivation (and file
// format round-trips) to the exact H in force.
func Digest(mBits, nBits, hColWt int, cols []bitvec.V) [32]byte {
	h := sha256.New()
	h.Write([]byte("H|v2"))

	var be [8]byte
	writeU64 := func(x uint64) {
		binary.LittleEndian.PutUint64(be[:], x)
		h.Write(be[:])
	}
	writeU64(uint64(mBits))
	writeU64(uint64(nBits))
	writeU64(uint64(hColWt))

	for _, col := range cols {
		bytesLen := (col.NBits + 7) / 8
		full := bytesLen / 8
		rem := bytesLen % 8
		for i := 0; i < full; i++ {
			writeU64(col.Words[i])
		}
		if rem > 0 {
			var tail [8]byte
			x := col.Words[full]
			for j := 0; j < rem; j++ {
				tail[j] = byte(x >> (8 * uint(j)))
			}
			h.Write(tail[:rem])
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Permutation is a public permutation of [0, m_bits) and its inverse,
// used by recrypt to rotate tag representations.
type Permutation struct {
	Perm []int
	Inv  []int
}

// NewPermutation builds a Fisher-Yates permutation of [0, m_bits) driven
// by a keyed-BLAKE2b counter PRG seeded with canonTag, the same
// "keyed hash as deterministic-randomness seed" shape the teacher uses
// for its own collective reference string derivation.
func NewPermutation(canonTag uint64, mBits int) Permutation {
	perm := make([]int, mBits)
	for i := range perm {
		perm[i] = i
	}

	rng := newPermPRG(canonTag)
	for i := mBits - 1; i > 0; i-- {
		j := int(rng.bounded(uint64(i + 1)))
		perm[i], perm[j] = perm[j], perm[i]
	}

	inv := make([]int, mBits)
	for i, p := range perm {
		inv[p] = i
	}

	return Permutation{Perm: perm, Inv: inv}
}

// permPRG is a small counter-mode keyed-BLAKE2b PRG private to
// permutation generation.
type permPRG struct {
	tag   uint64
	ctr   uint64
	block []byte
	pos   int
}

func newPermPRG(tag uint64) *permPRG {
	return &permPRG{tag: tag}
}

func (p *permPRG) refill() {
	h, _ := blake2b.New256(nil)
	h.Write([]byte("UBK"))
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], p.tag)
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], p.ctr)
	h.Write(b[:])
	p.ctr++
	p.block = h.Sum(nil)
	p.pos = 0
}

func (p *permPRG) next() uint64 {
	if p.block == nil || p.pos+8 > len(p.block) {
		p.refill()
	}
	v := binary.LittleEndian.Uint64(p.block[p.pos : p.pos+8])
	p.pos += 8
	return v
}

func (p *permPRG) bounded(m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	limit := ^uint64(0) - (^uint64(0) % m)
	for {
		v := p.next()
		if v <= limit {
			return v % m
		}
	}
}

// Apply maps a bit vector through the inverse permutation, the direction
// recrypt uses to rotate tag representations: for every set bit at
// position src in v, the output sets bit inv[src].
func Apply(v bitvec.V, inv []int) bitvec.V {
	out := bitvec.New(v.NBits)
	for wi, w := range v.Words {
		x := w
		for x != 0 {
			bit := x & (-x)
			pos := trailingZeros(bit)
			src := wi<<6 + pos
			if src < v.NBits {
				out.SetBit(inv[src])
			}
			x ^= bit
		}
	}
	return out
}

func trailingZeros(x uint64) int {
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

// Ztag derives a base layer's domain-separation tag from the public
// canon_tag and the layer's private nonce, per the specification's
// glossary: SHA-256("pvac.dom.ztag" || canon_tag || nonce).lo64.
func Ztag(canonTag uint64, nonceLo, nonceHi uint64) uint64 {
	h := sha256.New()
	h.Write([]byte(DomZtag))
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], canonTag)
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], nonceLo)
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], nonceHi)
	h.Write(b[:])
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

// SigmaFromH derives an edge's tag: x_col_wt columns of H selected under
// domain DomX from the 7-tuple (canonTag, ztag, nonce, idx, sign, salt),
// XORed together, then err_wt additional bits flipped under domain
// DomNoise from the same tuple. salt exists purely to decorrelate tags
// of edges that would otherwise share every other coordinate.
func SigmaFromH(H []bitvec.V, mBits, xColWt, errWt int, canonTag, ztag, nonceLo, nonceHi uint64, idx uint16, sign Sign, salt uint64) bitvec.V {
	words := []uint64{canonTag, ztag, nonceLo, nonceHi, uint64(idx), uint64(sign), salt}

	out := bitvec.New(mBits)

	xXof := sampling.NewXOF(DomX, words)
	for _, c := range xXof.ChooseK(xColWt, len(H)) {
		out.XorWith(H[c])
	}

	nXof := sampling.NewXOF(DomNoise, words)
	for _, r := range nXof.ChooseK(errWt, mBits) {
		out.FlipBit(r)
	}

	return out
}
