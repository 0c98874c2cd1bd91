package pvac

import (
	"io"

	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// NewEvalKey builds an EvalKey: poolSize encryptions of zero plus one
// encryption of 1, all planned at depthHint, for Recrypt to draw on.
func NewEvalKey(pub PublicKey, sec SecretKey, poolSize, depthHint int, rng io.Reader) EvalKey {
	enc := NewEncryptor(pub, sec)
	pool := make([]Ciphertext, poolSize)
	for i := range pool {
		pool[i] = enc.EncryptZeroAtDepth(rng, depthHint)
	}
	return EvalKey{
		ZeroPool: pool,
		EncOne:   enc.EncryptAtDepth(rng, field.One, depthHint),
	}
}

// Recryptor re-randomises ciphertexts using an EvalKey's zero-pool.
type Recryptor struct {
	pub PublicKey
}

// NewRecryptor returns a Recryptor for pub.
func NewRecryptor(pub PublicKey) *Recryptor {
	return &Recryptor{pub: pub}
}

// sigmaDensity computes (sum of edge.Tag.Popcount()) / (|E| * m_bits).
func sigmaDensity(ct Ciphertext, mBits int) float64 {
	if len(ct.Edges) == 0 {
		return 0
	}
	total := 0
	for _, e := range ct.Edges {
		total += e.Tag.Popcount()
	}
	return float64(total) / float64(len(ct.Edges)*mBits)
}

// Recrypt re-randomises C by repeatedly folding in a random zero-
// ciphertext from ek's pool and rotating every edge's tag through the
// public permutation U, until sigma_density(C) falls inside the
// configured recrypt band or the round budget is exhausted. It does not
// change the decrypted value: zero-ciphertexts sum to zero and U is a
// public permutation decryption never reads.
func (rc *Recryptor) Recrypt(rng io.Reader, ek EvalKey, ct Ciphertext) Ciphertext {
	p := rc.pub.Params
	lo, hi := p.RecryptBand()
	ev := NewEvaluator(rc.pub)

	cur := ct.Clone()
	for round := 0; round < p.RecryptRounds(); round++ {
		d := sigmaDensity(cur, p.MBits())
		if d >= lo && d <= hi {
			break
		}
		if len(ek.ZeroPool) == 0 {
			break
		}

		zi := int(boundedFromReader(rng, uint64(len(ek.ZeroPool))))
		cur = ev.Add(cur, ek.ZeroPool[zi])

		for i := range cur.Edges {
			cur.Edges[i].Tag = hgraph.Apply(cur.Edges[i].Tag, rc.pub.Perm.Inv)
		}
		guardBudget(p, &cur)
	}

	compactEdges(&cur)
	compactLayers(&cur)
	return cur
}
