package pvac

import (
	"fmt"
	"io"

	"github.com/pvaclabs/pvac/field"
)

// readUint64 draws 8 bytes from rng. A failing entropy source is an
// environment failure, not a recoverable input error, so this panics
// rather than threading an error through every sampling call site, the
// same posture the teacher's ring package takes on a broken PRNG.
func readUint64(rng io.Reader) uint64 {
	var buf [8]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		panic(fmt.Sprintf("pvac: rng read failed: %v", err))
	}
	return le64(buf[:])
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func randomElt(rng io.Reader) field.Elt {
	lo := readUint64(rng)
	hi := readUint64(rng)
	return field.FromWords(lo, hi)
}

func randomNonzeroElt(rng io.Reader) field.Elt {
	for {
		e := randomElt(rng)
		if !field.IsZero(e) {
			return e
		}
	}
}

// boundedFromReader draws a uniform integer in [0, m) from rng by
// rejection sampling against MaxUint64 - (MaxUint64 mod m), the same
// sampler shape sampling.XOF/sampling.PRG use.
func boundedFromReader(rng io.Reader, m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	limit := ^uint64(0) - (^uint64(0) % m)
	for {
		v := readUint64(rng)
		if v <= limit {
			return v % m
		}
	}
}

// distinctIndices draws k distinct values from [0, n) using rng.
func distinctIndices(rng io.Reader, k, n int) []int {
	if k > n {
		panic("pvac: requested more distinct indices than the domain holds")
	}
	used := make(map[int]struct{}, k*2+1)
	out := make([]int, 0, k)
	for len(out) < k {
		v := int(boundedFromReader(rng, uint64(n)))
		if _, dup := used[v]; dup {
			continue
		}
		used[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// randomSign draws a uniformly random Sign from rng.
func randomSign(rng io.Reader) Sign {
	if boundedFromReader(rng, 2) == 0 {
		return Plus
	}
	return Minus
}
