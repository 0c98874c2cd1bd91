package pvac

import (
	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"golang.org/x/exp/slices"
)

// edgeKey identifies one (layer, idx, sign) aggregation bucket.
type edgeKey struct {
	Layer uint32
	Idx   uint16
	Sign  Sign
}

func (k edgeKey) less(other edgeKey) bool {
	if k.Layer != other.Layer {
		return k.Layer < other.Layer
	}
	if k.Idx != other.Idx {
		return k.Idx < other.Idx
	}
	return k.Sign < other.Sign
}

// compactEdges aggregates edges sharing (layer, idx, sign) by summing
// weights in Fp and XORing tags, emitting one edge per bucket whose
// weight or tag is non-zero. O(|E|) plus a sort over the surviving
// buckets for deterministic output order.
func compactEdges(ct *Ciphertext) {
	if len(ct.Edges) == 0 {
		return
	}

	mBits := ct.Edges[0].Tag.NBits
	type bucket struct {
		weight field.Elt
		tag    bitvec.V
	}
	buckets := make(map[edgeKey]*bucket, len(ct.Edges))
	var order []edgeKey

	for _, e := range ct.Edges {
		k := edgeKey{Layer: e.LayerID, Idx: e.Idx, Sign: e.Sign}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{weight: field.Zero, tag: bitvec.New(mBits)}
			buckets[k] = b
			order = append(order, k)
		}
		b.weight = field.Add(b.weight, e.Weight)
		b.tag.XorWith(e.Tag)
	}

	slices.SortFunc(order, func(a, b edgeKey) bool { return a.less(b) })

	out := make([]Edge, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		if field.IsZero(b.weight) && b.tag.IsZero() {
			continue
		}
		out = append(out, Edge{
			LayerID: k.Layer,
			Idx:     k.Idx,
			Sign:    k.Sign,
			Weight:  b.weight,
			Tag:     b.tag,
		})
	}
	ct.Edges = out
}

// compactLayers prunes unreachable layers: a layer is reachable if any
// edge references it, or if it is a PROD parent of a reachable layer.
// Surviving layers are remapped to a dense [0, n) index range and every
// reference (edge LayerID, PROD PA/PB) is rewritten accordingly.
func compactLayers(ct *Ciphertext) {
	n := len(ct.Layers)
	reachable := make([]bool, n)
	for _, e := range ct.Edges {
		reachable[e.LayerID] = true
	}
	for changed := true; changed; {
		changed = false
		for i := n - 1; i >= 0; i-- {
			if !reachable[i] || ct.Layers[i].Rule != Prod {
				continue
			}
			l := ct.Layers[i]
			if !reachable[l.PA] {
				reachable[l.PA] = true
				changed = true
			}
			if !reachable[l.PB] {
				reachable[l.PB] = true
				changed = true
			}
		}
	}

	allReachable := !slices.Contains(reachable, false)
	if allReachable {
		return
	}

	remap := make([]uint32, n)
	newLayers := make([]Layer, 0, n)
	for i := 0; i < n; i++ {
		if !reachable[i] {
			continue
		}
		remap[i] = uint32(len(newLayers))
		newLayers = append(newLayers, ct.Layers[i])
	}
	for i := range newLayers {
		if newLayers[i].Rule == Prod {
			newLayers[i].PA = remap[newLayers[i].PA]
			newLayers[i].PB = remap[newLayers[i].PB]
		}
	}
	for i := range ct.Edges {
		ct.Edges[i].LayerID = remap[ct.Edges[i].LayerID]
	}
	ct.Layers = newLayers
}

// guardBudget forces edge compaction if the ciphertext's edge count
// exceeds the configured edge_budget.
func guardBudget(p Params, ct *Ciphertext) {
	if len(ct.Edges) > p.EdgeBudget() {
		compactEdges(ct)
	}
}

// Compact runs compactEdges followed by compactLayers on a copy of ct and
// returns that normalized copy. Decrypt accepts compacted and
// uncompacted ciphertexts alike.
func Compact(ct Ciphertext) Ciphertext {
	out := ct.Clone()
	compactEdges(&out)
	compactLayers(&out)
	return out
}
