package pvac

import (
	"fmt"

	"github.com/pvaclabs/pvac/field"
)

// Decryptor decrypts ciphertexts under a fixed (PublicKey, SecretKey)
// pair.
type Decryptor struct {
	pub PublicKey
	sec SecretKey
}

// NewDecryptor returns a Decryptor for pub/sec.
func NewDecryptor(pub PublicKey, sec SecretKey) *Decryptor {
	return &Decryptor{pub: pub, sec: sec}
}

// Decrypt inverts a ciphertext's layer structure back to the Fp value
// it encodes.
//
// Every layer's R is computed bottom-up (BASE via prf_R, PROD via
// R[pa]*R[pb]); every layer that carries at least one edge contributes
// S_lid/R[lid] to the total, where S_lid is the signed, weighted,
// g-power sum of that layer's edges. This handles the full layer DAG
// uniformly: a BASE layer's contribution is its own encrypted value: a
// PROD layer's aggregated cartesian-product edges already equal
// R[pa]*R[pb]*V_pa*V_pb by construction (eval.go's Mul), so its
// contribution is V_pa*V_pb without any need to re-walk its parents.
// Add's concatenation of independent edge-bearing layers is what makes
// summing every contribution correct for sums of products, not only for
// a single leaf value.
func (d *Decryptor) Decrypt(ct Ciphertext) (field.Elt, error) {
	for i, l := range ct.Layers {
		if l.Rule != Prod {
			continue
		}
		if l.PA >= uint32(i) || l.PB >= uint32(i) {
			return field.Zero, fmt.Errorf("pvac: layer %d has a non-backward-referencing PROD parent: %w", i, ErrDecode)
		}
	}
	for _, e := range ct.Edges {
		if int(e.LayerID) >= len(ct.Layers) {
			return field.Zero, fmt.Errorf("pvac: edge references out-of-range layer %d: %w", e.LayerID, ErrDecode)
		}
	}

	rs := layerR(d.pub, d.sec, ct.Layers)
	groups := edgesByLayer(ct.Edges)

	total := field.Zero
	for lid, edges := range groups {
		r := rs[lid]
		if field.IsZero(r) {
			return field.Zero, fmt.Errorf("pvac: layer %d: %w", lid, ErrDecode)
		}
		s := field.Zero
		for _, e := range edges {
			term := field.Mul(e.Weight, d.pub.PowG[e.Idx])
			if e.Sign == Minus {
				term = field.Neg(term)
			}
			s = field.Add(s, term)
		}
		total = field.Add(total, field.Mul(s, field.Inv(r)))
	}
	return total, nil
}
