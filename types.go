package pvac

import (
	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// Nonce128 is a random 128-bit nonce used for layer-level domain
// separation.
type Nonce128 struct {
	Lo uint64
	Hi uint64
}

// RSeed is the (ztag, nonce) pair every BASE layer carries.
// ztag = SHA-256("pvac.dom.ztag" || canon_tag || nonce).lo64.
type RSeed struct {
	ZTag  uint64
	Nonce Nonce128
}

// Sign is an edge's signed contribution, + or -.
type Sign uint8

const (
	Plus Sign = iota
	Minus
)

// Flip returns the opposite sign.
func (s Sign) Flip() Sign {
	if s == Plus {
		return Minus
	}
	return Plus
}

// signedElt returns +1 or -1 as an Fp element.
func (s Sign) signedElt() field.Elt {
	if s == Plus {
		return field.One
	}
	return field.Neg(field.One)
}

// Rule distinguishes a BASE layer (owns an RSeed) from a PROD layer
// (references two parent layer indices whose virtual plaintexts are
// multiplied).
type Rule uint8

const (
	Base Rule = iota
	Prod
)

// Layer is a tagged union: BASE carries its own RSeed, PROD carries two
// parent layer indices. The layer list forms a DAG: PROD layers only
// reference strictly earlier layers, so it can be walked with a plain
// index-based arena rather than pointers.
type Layer struct {
	Rule Rule

	// Base fields.
	Seed RSeed

	// Prod fields: indices into the owning Ciphertext's Layers.
	PA uint32
	PB uint32
}

// Edge is a signed, weighted contribution to one layer at one B-index,
// carrying a sparse bit-vector tag drawn from the public parity-check
// matrix H.
type Edge struct {
	LayerID uint32
	Idx     uint16
	Sign    Sign
	Weight  field.Elt
	Tag     bitvec.V
}

// Ciphertext is PVAC's value-typed ciphertext: a layer DAG plus the edges
// attached to each layer. Every homomorphic operation consumes immutable
// Ciphertext arguments and returns a fresh instance.
type Ciphertext struct {
	Layers []Layer
	Edges  []Edge
}

// Clone returns a deep, independent copy of c.
func (c Ciphertext) Clone() Ciphertext {
	out := Ciphertext{
		Layers: make([]Layer, len(c.Layers)),
		Edges:  make([]Edge, len(c.Edges)),
	}
	copy(out.Layers, c.Layers)
	for i, e := range c.Edges {
		out.Edges[i] = e
		out.Edges[i].Tag = e.Tag.Clone()
	}
	return out
}

// PublicKey is the scheme's shared structural artifact: everything
// needed to encrypt, evaluate, and decrypt except the PRF keys and LPN
// secret. It is read-only after KeyGen.
type PublicKey struct {
	Params   Params
	CanonTag uint64
	H        []bitvec.V
	HDigest  [32]byte
	Perm     hgraph.Permutation
	OmegaB   field.Elt
	PowG     []field.Elt
}

// SecretKey holds the scheme's four PRF keys and its LPN secret bit
// string. Created once in KeyGen; read by the LPN-PRF and by Decrypt
// only.
type SecretKey struct {
	PRFKeys   [4]uint64
	LPNSecret bitvec.V
}

// EvalKey is the pool recrypt draws from: one or more encryptions of
// zero at a fixed depth, plus one encryption of 1.
type EvalKey struct {
	ZeroPool []Ciphertext
	EncOne   Ciphertext
}
