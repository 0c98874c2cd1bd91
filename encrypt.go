package pvac

import (
	"io"

	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// numIdx is the number of distinct B-indices an encryption's core
// balanced tuple spans (spec's S = 8).
const numIdx = 8

// Encryptor builds ciphertexts under a fixed (PublicKey, SecretKey) pair.
type Encryptor struct {
	pub PublicKey
	sec SecretKey
}

// NewEncryptor returns an Encryptor for pub/sec.
func NewEncryptor(pub PublicKey, sec SecretKey) *Encryptor {
	return &Encryptor{pub: pub, sec: sec}
}

func hgraphSign(s Sign) hgraph.Sign {
	if s == Plus {
		return hgraph.Plus
	}
	return hgraph.Minus
}

// freshSeed draws a fresh nonce and derives the layer's ztag and R.
func (enc *Encryptor) freshSeed(rng io.Reader) (RSeed, field.Elt) {
	nonce := Nonce128{Lo: readUint64(rng), Hi: readUint64(rng)}
	ztag := hgraph.Ztag(enc.pub.CanonTag, nonce.Lo, nonce.Hi)
	seed := RSeed{ZTag: ztag, Nonce: nonce}
	return seed, prfR(enc.pub, enc.sec, seed)
}

// tag draws a fresh edge tag from the public H for the given layer seed,
// index, and sign.
func (enc *Encryptor) tag(rng io.Reader, seed RSeed, idx uint16, sign Sign) bitvec.V {
	salt := readUint64(rng)
	return hgraph.SigmaFromH(enc.pub.H, enc.pub.Params.MBits(), enc.pub.Params.XColWeight(), enc.pub.Params.ErrWeight(),
		enc.pub.CanonTag, seed.ZTag, seed.Nonce.Lo, seed.Nonce.Hi, idx, hgraphSign(sign), salt)
}

func (enc *Encryptor) gpow(idx int) field.Elt {
	return enc.pub.PowG[idx]
}

// ginv returns g^-idx, using g's order B: g^-idx = g^(B-idx mod B).
func (enc *Encryptor) ginv(idx int) field.Elt {
	b := enc.pub.Params.B()
	return enc.pub.PowG[(b-idx)%b]
}

// Encrypt encrypts v at depth hint 0.
func (enc *Encryptor) Encrypt(rng io.Reader, v field.Elt) Ciphertext {
	return enc.EncryptAtDepth(rng, v, 0)
}

// EncryptAtDepth encrypts v, planning its noise budget for a
// multiplication chain depthHint layers deep: the deeper the planned
// chain, the more noise tuples are added up front (spec.md §4.8 step 6).
func (enc *Encryptor) EncryptAtDepth(rng io.Reader, v field.Elt, depthHint int) Ciphertext {
	b := enc.pub.Params.B()
	seed, r := enc.freshSeed(rng)

	idx := distinctIndices(rng, numIdx, b)
	signs := make([]Sign, numIdx)
	for i := range signs {
		signs[i] = randomSign(rng)
	}

	coreWeights := make([]field.Elt, numIdx)

	sum1 := field.Zero
	sumg := field.Zero
	for j := 0; j < numIdx-2; j++ {
		rj := randomNonzeroElt(rng)
		coreWeights[j] = rj
		signed := field.Mul(signs[j].signedElt(), rj)
		sum1 = field.Add(sum1, signed)
		sumg = field.Add(sumg, field.Mul(signed, enc.gpow(idx[j])))
	}

	ga := enc.gpow(idx[numIdx-2])
	gb := enc.gpow(idx[numIdx-1])
	sigA := signs[numIdx-2].signedElt()
	sigB := signs[numIdx-1].signedElt()

	// r_b * sigB * (gb - ga) = v - sumg + ga*sum1
	numerator := field.Add(field.Sub(v, sumg), field.Mul(ga, sum1))
	denom := field.Sub(gb, ga)
	rb := field.Mul(sigB, field.Mul(numerator, field.Inv(denom)))

	// r_a = -sigA*sum1 - sigA*sigB*rb
	ra := field.Neg(field.Add(field.Mul(sigA, sum1), field.Mul(sigA, field.Mul(sigB, rb))))

	coreWeights[numIdx-2] = ra
	coreWeights[numIdx-1] = rb

	edges := make([]Edge, 0, numIdx)
	for j := 0; j < numIdx; j++ {
		edges = append(edges, Edge{
			LayerID: 0,
			Idx:     uint16(idx[j]),
			Sign:    signs[j],
			Weight:  field.Mul(coreWeights[j], r),
			Tag:     enc.tag(rng, seed, uint16(idx[j]), signs[j]),
		})
	}

	z2, z3 := planNoise(enc.pub.Params, depthHint)

	for t := 0; t < z2; t++ {
		ij := distinctIndices(rng, 2, b)
		i, j := ij[0], ij[1]
		alpha := randomNonzeroElt(rng)

		w1 := field.Mul(alpha, r)
		w2 := field.Mul(field.Mul(alpha, field.Mul(enc.gpow(i), enc.ginv(j))), r)

		edges = append(edges,
			Edge{LayerID: 0, Idx: uint16(i), Sign: Plus, Weight: w1, Tag: enc.tag(rng, seed, uint16(i), Plus)},
			Edge{LayerID: 0, Idx: uint16(j), Sign: Minus, Weight: w2, Tag: enc.tag(rng, seed, uint16(j), Minus)},
		)
	}

	for t := 0; t < z3; t++ {
		ijk := distinctIndices(rng, 3, b)
		i, j, k := ijk[0], ijk[1], ijk[2]
		alpha := randomNonzeroElt(rng)
		beta := randomNonzeroElt(rng)

		inner := field.Add(field.Mul(alpha, enc.gpow(i)), field.Mul(beta, enc.gpow(j)))
		gamma := field.Mul(field.Neg(inner), enc.ginv(k))

		edges = append(edges,
			Edge{LayerID: 0, Idx: uint16(i), Sign: Plus, Weight: field.Mul(alpha, r), Tag: enc.tag(rng, seed, uint16(i), Plus)},
			Edge{LayerID: 0, Idx: uint16(j), Sign: Plus, Weight: field.Mul(beta, r), Tag: enc.tag(rng, seed, uint16(j), Plus)},
			Edge{LayerID: 0, Idx: uint16(k), Sign: Plus, Weight: field.Mul(gamma, r), Tag: enc.tag(rng, seed, uint16(k), Plus)},
		)
	}

	ct := Ciphertext{
		Layers: []Layer{{Rule: Base, Seed: seed}},
		Edges:  edges,
	}
	guardBudget(enc.pub.Params, &ct)
	return ct
}

// EncryptZero encrypts the zero plaintext at depth hint 0.
func (enc *Encryptor) EncryptZero(rng io.Reader) Ciphertext {
	return enc.EncryptAtDepth(rng, field.Zero, 0)
}

// EncryptZeroAtDepth encrypts the zero plaintext, planning noise for the
// given depth hint. Used to fill an EvalKey's zero-pool.
func (enc *Encryptor) EncryptZeroAtDepth(rng io.Reader, depthHint int) Ciphertext {
	return enc.EncryptAtDepth(rng, field.Zero, depthHint)
}
