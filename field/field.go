// Package field implements constant-time arithmetic over the Mersenne
// prime field Fp = 2^127 - 1, the base field PVAC ciphertexts are built
// over. Elements are represented as two 64-bit limbs (Lo, Hi) with Hi's
// top bit reserved; every operation here returns a canonical element and
// never branches on the value of a secret operand.
package field

import (
	"math/big"
	"math/bits"
)

// mask63 keeps the high limb within its 63 usable bits.
const mask63 = (uint64(1) << 63) - 1

// allOnes is the low limb of p = 2^127-1 (2^64-1) and also doubles as the
// all-ones mask used by the constant-time helpers below.
const allOnes = ^uint64(0)

// Elt is an element of Fp, canonical whenever Hi < 2^63 and it is not the
// case that Hi == 2^63-1 and Lo == 2^64-1 (i.e. the element is not p
// itself).
type Elt struct {
	Lo uint64
	Hi uint64
}

// Zero and One are the additive and multiplicative identities.
var (
	Zero = Elt{}
	One  = Elt{Lo: 1}
)

// FromU64 embeds a 64-bit integer into Fp.
func FromU64(x uint64) Elt {
	return Elt{Lo: x}
}

// FromWords builds the canonical Fp element congruent to hi*2^64 + lo mod p.
// hi's top bit is folded back in before reduction, matching the Mersenne
// identity x mod p = (x mod 2^127) + (x div 2^127).
func FromWords(lo, hi uint64) Elt {
	extra := hi >> 63
	hi &= mask63

	var carry uint64
	lo, carry = bits.Add64(lo, extra, 0)
	hi += carry

	lo2, borrow := bits.Sub64(lo, allOnes, 0)
	hi2 := hi - mask63 - borrow

	needSub := (hi >> 63) | (wordIsZero(hi^mask63) & wordIsZero(lo^allOnes))
	return Select(needSub, Elt{Lo: lo2, Hi: hi2}, Elt{Lo: lo, Hi: hi})
}

// IsCanonical reports whether e is in the library's canonical range.
func IsCanonical(e Elt) bool {
	if e.Hi>>63 != 0 {
		return false
	}
	return !(e.Hi == mask63 && e.Lo == allOnes)
}

// Add returns a+b mod p.
func Add(a, b Elt) Elt {
	lo, c0 := bits.Add64(a.Lo, b.Lo, 0)
	hi, _ := bits.Add64(a.Hi, b.Hi, c0)
	return FromWords(lo, hi)
}

// Neg returns p-a mod p.
func Neg(a Elt) Elt {
	lo, b0 := bits.Sub64(allOnes, a.Lo, 0)
	hi, _ := bits.Sub64(mask63, a.Hi, b0)
	return FromWords(lo, hi)
}

// Sub returns a-b mod p.
func Sub(a, b Elt) Elt {
	return Add(a, Neg(b))
}

// mul128x128 computes the full 256-bit product of two 127-bit operands,
// each given as (lo, hi) limb pairs, returning the result as four 64-bit
// limbs z0 (lowest) through z3 (highest).
func mul128x128(a0, a1, b0, b1 uint64) (z0, z1, z2, z3 uint64) {
	c0hi, c0lo := bits.Mul64(a0, b0)
	c1hi, c1lo := bits.Mul64(a0, b1)
	c2hi, c2lo := bits.Mul64(a1, b0)
	c3hi, c3lo := bits.Mul64(a1, b1)

	z0 = c0lo

	s, k1 := bits.Add64(c0hi, c1lo, 0)
	s, k2 := bits.Add64(s, c2lo, 0)
	z1 = s
	tHi := k1 + k2 // carry out of z1's limb, in [0,2]

	s2, j1 := bits.Add64(c1hi, c2hi, 0)
	s2, j2 := bits.Add64(s2, c3lo, 0)
	s2, j3 := bits.Add64(s2, tHi, 0)
	z2 = s2
	t2Hi := j1 + j2 + j3 // carry out of z2's limb, in [0,3]

	z3 = c3hi + t2Hi
	return
}

// reduce256 folds a 256-bit value (z0 lowest through z3 highest) down to
// the canonical Fp element it represents, applying the Mersenne reduction
// twice.
func reduce256(z0, z1, z2, z3 uint64) Elt {
	l0 := z0
	l1 := z1 & mask63

	h0 := (z1 >> 63) | (z2 << 1)
	h1 := (z2 >> 63) | (z3 << 1)
	h2 := z3 >> 63

	t0, c0 := bits.Add64(l0, h0, 0)
	t1, c1 := bits.Add64(l1, h1, c0)
	x2 := h2 + c1

	yl0 := t0
	yl1 := t1 & mask63
	yh0 := (t1 >> 63) | (x2 << 1)

	s0, cy := bits.Add64(yl0, yh0, 0)
	y1 := yl1 + cy

	return FromWords(s0, y1)
}

// Mul returns a*b mod p.
func Mul(a, b Elt) Elt {
	z0, z1, z2, z3 := mul128x128(a.Lo, a.Hi, b.Lo, b.Hi)
	return reduce256(z0, z1, z2, z3)
}

// Pow returns a^e mod p using a plain square-and-multiply ladder. Not
// constant-time: e is always a public exponent in this library (subgroup
// order checks, generator search), never a secret.
func Pow(a Elt, e uint64) Elt {
	r := One
	for e != 0 {
		if e&1 != 0 {
			r = Mul(r, a)
		}
		a = Mul(a, a)
		e >>= 1
	}
	return r
}

// pMinus2 is p-2 = 2^127-3, split into its low 64 bits and high 63 bits.
// Every bit is 1 except bit 1, which is the inversion exponent used by
// Inv via Fermat's little theorem.
const (
	pMinus2Lo = allOnes - 2
	pMinus2Hi = mask63
)

func pMinus2Bit(pos int) uint64 {
	if pos < 64 {
		return (pMinus2Lo >> uint(pos)) & 1
	}
	return (pMinus2Hi >> uint(pos-64)) & 1
}

// invWindow is the window width of the constant-time inversion ladder.
const invWindow = 5

// Inv returns a^-1 mod p via a^(p-2), walked MSB-to-LSB with a fixed
// window of width 5 over a precomputed table: every iteration performs
// the same number of squarings and exactly one table multiply regardless
// of the bit pattern of a, so the only data-dependent branching is on the
// public exponent p-2, never on a.
func Inv(a Elt) Elt {
	const tableSize = 1 << invWindow

	var tbl [tableSize]Elt
	tbl[0] = One
	tbl[1] = a
	for i := 2; i < tableSize; i++ {
		tbl[i] = Mul(tbl[i-1], a)
	}

	r := One
	pos := 126
	for pos >= 0 {
		if pMinus2Bit(pos) == 0 {
			r = Mul(r, r)
			pos--
			continue
		}

		l := pos - invWindow + 1
		if l < 0 {
			l = 0
		}

		k := 0
		for i := pos; i >= l; i-- {
			k = (k << 1) | int(pMinus2Bit(i))
		}
		for k >= tableSize {
			k >>= 1
			l++
		}

		for i := 0; i < pos-l+1; i++ {
			r = Mul(r, r)
		}
		r = Mul(r, tbl[k])
		pos = l - 1
	}

	return r
}

// Eq reports whether a and b are the same canonical element, in constant
// time.
func Eq(a, b Elt) bool {
	return wordIsZero(a.Lo^b.Lo) & wordIsZero(a.Hi^b.Hi) == 1
}

// IsZero reports whether a is the zero element, in constant time.
func IsZero(a Elt) bool {
	return wordIsZero(a.Lo)&wordIsZero(a.Hi) == 1
}

// Select returns a if cond is 1, b if cond is 0. cond must be exactly 0
// or 1; behavior is otherwise undefined. Branch-free.
func Select(cond uint64, a, b Elt) Elt {
	mask := 0 - cond
	return Elt{
		Lo: (a.Lo & mask) | (b.Lo & ^mask),
		Hi: (a.Hi & mask) | (b.Hi & ^mask),
	}
}

// CSwap swaps a and b in place when cond is 1, and leaves them untouched
// when cond is 0. Branch-free.
func CSwap(cond uint64, a, b *Elt) {
	*a, *b = Select(cond, *b, *a), Select(cond, *a, *b)
}

// PowBig returns a^e mod p for an arbitrary-size public exponent e,
// using plain square-and-multiply over e's bits. Not constant-time: e is
// always public here (subgroup-order searches during key generation),
// never a secret.
func PowBig(a Elt, e *big.Int) Elt {
	r := One
	base := a
	for i := 0; i < e.BitLen(); i++ {
		if e.Bit(i) == 1 {
			r = Mul(r, base)
		}
		base = Mul(base, base)
	}
	return r
}

// PBig returns the field modulus p = 2^127-1 as a *big.Int. Only meant
// for parameter validation (e.g. checking B | p-1) where big.Int's
// variable-time arithmetic is fine because none of the operands are
// secret.
func PBig() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 127)
	return p.Sub(p, big.NewInt(1))
}

// wordIsZero returns 1 if x == 0 and 0 otherwise, without branching.
func wordIsZero(x uint64) uint64 {
	y := x | (0 - x)
	return (y >> 63) ^ 1
}
