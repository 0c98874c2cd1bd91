package pvac

import (
	"io"
	"sort"

	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// Evaluator performs homomorphic operations against a fixed PublicKey.
// Every method is a pure function of its (immutable) PubKey and
// (value-semantic) Ciphertext arguments, plus an entropy source where
// one is needed (Mul, which must mint fresh layer seeds and edge tags).
type Evaluator struct {
	pub PublicKey
}

// NewEvaluator returns an Evaluator for pub.
func NewEvaluator(pub PublicKey) *Evaluator {
	return &Evaluator{pub: pub}
}

// Add concatenates a's and b's layers (b's PROD references shifted past
// a's layer count) and edges (b's edges' LayerID shifted the same way),
// then guards the edge budget and prunes unreachable layers.
func (ev *Evaluator) Add(a, b Ciphertext) Ciphertext {
	shift := uint32(len(a.Layers))

	layers := make([]Layer, 0, len(a.Layers)+len(b.Layers))
	layers = append(layers, a.Layers...)
	for _, l := range b.Layers {
		if l.Rule == Prod {
			l.PA += shift
			l.PB += shift
		}
		layers = append(layers, l)
	}

	edges := make([]Edge, 0, len(a.Edges)+len(b.Edges))
	edges = append(edges, a.Edges...)
	for _, e := range b.Edges {
		e.LayerID += shift
		edges = append(edges, e)
	}

	ct := Ciphertext{Layers: layers, Edges: edges}
	guardBudget(ev.pub.Params, &ct)
	compactLayers(&ct)
	return ct
}

// Scale multiplies every edge's weight by s, scaling the decrypted value
// by s.
func (ev *Evaluator) Scale(a Ciphertext, s field.Elt) Ciphertext {
	edges := make([]Edge, len(a.Edges))
	for i, e := range a.Edges {
		e.Weight = field.Mul(e.Weight, s)
		edges[i] = e
	}
	layers := make([]Layer, len(a.Layers))
	copy(layers, a.Layers)
	return Ciphertext{Layers: layers, Edges: edges}
}

// Neg returns Scale(a, -1).
func (ev *Evaluator) Neg(a Ciphertext) Ciphertext {
	return ev.Scale(a, field.Neg(field.One))
}

// Sub returns Add(a, Neg(b)).
func (ev *Evaluator) Sub(a, b Ciphertext) Ciphertext {
	return ev.Add(a, ev.Neg(b))
}

// DivConst returns Scale(a, k^-1).
func (ev *Evaluator) DivConst(a Ciphertext, k field.Elt) Ciphertext {
	return ev.Scale(a, field.Inv(k))
}

// mulBucketKey identifies one (idx, sign) aggregation bucket within a
// single new PROD layer during Mul.
type mulBucketKey struct {
	Idx  uint16
	Sign Sign
}

// Mul appends a's and b's layers, then for every pair of layers (la, lb)
// that carry at least one edge each, appends a new PROD layer (la,
// shift+lb) and aggregates every edge-pair's product into that layer:
// index (ea.idx+eb.idx) mod B, sign XNOR(ea.sign, eb.sign), weight
// ea.weight * eb.weight. One edge is emitted per non-zero aggregate,
// with a fresh tag drawn for the new PROD layer's ephemeral ztag/nonce
// (PROD layers never store an RSeed; the ztag/nonce exist only to seed
// this layer's tag generation).
func (ev *Evaluator) Mul(rng io.Reader, a, b Ciphertext) Ciphertext {
	p := ev.pub.Params
	b_ := p.B()
	shift := uint32(len(a.Layers))

	layers := make([]Layer, 0, len(a.Layers)+len(b.Layers))
	layers = append(layers, a.Layers...)
	for _, l := range b.Layers {
		if l.Rule == Prod {
			l.PA += shift
			l.PB += shift
		}
		layers = append(layers, l)
	}

	aByLayer := edgesByLayer(a.Edges)
	bByLayer := edgesByLayer(b.Edges)

	var edges []Edge

	for la, aEdges := range aByLayer {
		if len(aEdges) == 0 {
			continue
		}
		for lb, bEdges := range bByLayer {
			if len(bEdges) == 0 {
				continue
			}

			newLayerID := uint32(len(layers))
			layers = append(layers, Layer{Rule: Prod, PA: la, PB: shift + lb})

			nonce := Nonce128{Lo: readUint64(rng), Hi: readUint64(rng)}
			ztag := hgraph.Ztag(ev.pub.CanonTag, nonce.Lo, nonce.Hi)

			buckets := make(map[mulBucketKey]field.Elt)
			for _, ea := range aEdges {
				for _, eb := range bEdges {
					idx := uint16((int(ea.Idx) + int(eb.Idx)) % b_)
					sign := Plus
					if ea.Sign != eb.Sign {
						sign = Minus
					}
					w := field.Mul(ea.Weight, eb.Weight)
					k := mulBucketKey{Idx: idx, Sign: sign}
					buckets[k] = field.Add(buckets[k], w)
				}
			}

			keys := make([]mulBucketKey, 0, len(buckets))
			for k := range buckets {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				if keys[i].Idx != keys[j].Idx {
					return keys[i].Idx < keys[j].Idx
				}
				return keys[i].Sign < keys[j].Sign
			})

			for _, k := range keys {
				w := buckets[k]
				if field.IsZero(w) {
					continue
				}
				salt := readUint64(rng)
				tag := hgraph.SigmaFromH(ev.pub.H, p.MBits(), p.XColWeight(), p.ErrWeight(),
					ev.pub.CanonTag, ztag, nonce.Lo, nonce.Hi, k.Idx, hgraphSign(k.Sign), salt)
				edges = append(edges, Edge{LayerID: newLayerID, Idx: k.Idx, Sign: k.Sign, Weight: w, Tag: tag})
			}
		}
	}

	ct := Ciphertext{Layers: layers, Edges: edges}
	guardBudget(p, &ct)
	compactLayers(&ct)
	return ct
}

// edgesByLayer groups edges by LayerID for Mul's cartesian product.
func edgesByLayer(edges []Edge) map[uint32][]Edge {
	m := make(map[uint32][]Edge)
	for _, e := range edges {
		m[e.LayerID] = append(m[e.LayerID], e)
	}
	return m
}
