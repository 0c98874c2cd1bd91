package sampling

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"
)

// XOF is a domain-separated extendable-output stream seeded from a label
// plus a list of 64-bit words. It backs every "counter-mode hash-based
// PRG seeded with a public tuple" construction in H-matrix column
// generation and edge-tag selection (column choice and noise bits). The
// permutation U uses its own BLAKE2b counter PRG, and the LPN Toeplitz
// top row comes from the AES-256-CTR PRG. BLAKE3's native XOF mode replaces
// the ad-hoc SHA-256-plus-counter refill loops that pattern is usually
// built from by hand.
type XOF struct {
	r *blake3.Digest
}

// NewXOF seeds an XOF stream from a domain label and an ordered list of
// public words. Changing any word, or the domain, yields an independent
// stream with overwhelming probability.
func NewXOF(domain string, words []uint64) *XOF {
	h := blake3.New()
	_, _ = h.Write([]byte(domain))
	var buf [8]byte
	for _, w := range words {
		binary.LittleEndian.PutUint64(buf[:], w)
		_, _ = h.Write(buf[:])
	}
	return &XOF{r: h.Digest()}
}

// Read fills p with output-function bytes. Never errors.
func (x *XOF) Read(p []byte) (int, error) {
	return x.r.Read(p)
}

// NextU64 reads the next 8 bytes of output as a little-endian uint64.
func (x *XOF) NextU64() uint64 {
	var buf [8]byte
	_, _ = x.Read(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Bounded returns a uniform integer in [0, m) by rejection sampling
// against math.MaxUint64 - (math.MaxUint64 mod m), so no value is
// over-represented.
func (x *XOF) Bounded(m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	limit := math.MaxUint64 - (math.MaxUint64 % m)
	for {
		v := x.NextU64()
		if v <= limit {
			return v % m
		}
	}
}

// ChooseK draws k distinct values from [0, n) using the receiver as the
// entropy source. Used to pick H-matrix rows/columns, tag columns, and
// noise bit positions.
func (x *XOF) ChooseK(k, n int) []int {
	if k > n {
		panic("sampling: ChooseK requested more distinct values than the domain holds")
	}
	used := make(map[int]struct{}, k*2+1)
	out := make([]int, 0, k)
	for len(out) < k {
		v := int(x.Bounded(uint64(n)))
		if _, dup := used[v]; dup {
			continue
		}
		used[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
