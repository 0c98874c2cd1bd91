package codec

import (
	"io"

	"github.com/pvaclabs/pvac"
	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
	"github.com/pvaclabs/pvac/hgraph"
)

// WritePublicKey serializes pub to w per spec §6's public-key file
// format: magic, version, Params fields, canon_tag, H_digest, H, the
// permutation and its inverse, omega_B, and the full power table.
func WritePublicKey(w io.Writer, pub pvac.PublicKey) (int64, error) {
	c := newCountingWriter(w)

	if err := c.writeU32(magicPublicKey); err != nil {
		return c.n, err
	}
	if err := c.writeU8(formatVersion); err != nil {
		return c.n, err
	}

	lit := pub.Params.Literal()
	fields := []uint32{
		uint32(lit.B),
		uint32(lit.MBits), uint32(lit.NBits), uint32(lit.HColWeight),
		uint32(lit.XColWeight), uint32(lit.ErrWeight),
		uint32(lit.NoiseEntropyBits), uint32(lit.DepthSlopeBits),
		uint32(lit.LPNN), uint32(lit.LPNT), uint32(lit.LPNTauNum), uint32(lit.LPNTauDen),
		uint32(lit.RecryptRounds),
	}
	for _, f := range fields {
		if err := c.writeU32(f); err != nil {
			return c.n, err
		}
	}
	if err := c.writeU64(uint64(lit.EdgeBudget)); err != nil {
		return c.n, err
	}
	for _, f := range []float64{lit.Tuple2Fraction, lit.RecryptLo, lit.RecryptHi} {
		if err := c.writeF64(f); err != nil {
			return c.n, err
		}
	}

	if err := c.writeU64(pub.CanonTag); err != nil {
		return c.n, err
	}
	if _, err := c.w.Write(pub.HDigest[:]); err != nil {
		return c.n, err
	}
	c.n += int64(len(pub.HDigest))

	if err := c.writeU64(uint64(len(pub.H))); err != nil {
		return c.n, err
	}
	for _, col := range pub.H {
		if err := c.writeBitvec(col); err != nil {
			return c.n, err
		}
	}

	if err := writeIntSlice(c, pub.Perm.Perm); err != nil {
		return c.n, err
	}
	if err := writeIntSlice(c, pub.Perm.Inv); err != nil {
		return c.n, err
	}

	if err := c.writeElt(pub.OmegaB); err != nil {
		return c.n, err
	}
	if err := c.writeU64(uint64(len(pub.PowG))); err != nil {
		return c.n, err
	}
	for _, g := range pub.PowG {
		if err := c.writeElt(g); err != nil {
			return c.n, err
		}
	}

	return c.n, c.flush()
}

func writeIntSlice(c *countingWriter, xs []int) error {
	if err := c.writeU64(uint64(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := c.writeU32(uint32(x)); err != nil {
			return err
		}
	}
	return nil
}

func readIntSlice(c *countingReader) []int {
	n := c.readU64()
	out := make([]int, n)
	for i := range out {
		out[i] = int(c.readU32())
	}
	return out
}

// ReadPublicKey deserializes a public-key file written by
// WritePublicKey, rejecting wrong magic/version/truncated streams and
// validating the reconstructed Params.
func ReadPublicKey(r io.Reader) (pvac.PublicKey, int64, error) {
	c := newCountingReader(r)

	checkMagicVersion(c, magicPublicKey, "public-key file")
	if c.err != nil {
		return pvac.PublicKey{}, c.n, ioErr("public-key file: header: %v", c.err)
	}

	var lit pvac.ParametersLiteral
	lit.B = int(c.readU32())
	lit.MBits = int(c.readU32())
	lit.NBits = int(c.readU32())
	lit.HColWeight = int(c.readU32())
	lit.XColWeight = int(c.readU32())
	lit.ErrWeight = int(c.readU32())
	lit.NoiseEntropyBits = int(c.readU32())
	lit.DepthSlopeBits = int(c.readU32())
	lit.LPNN = int(c.readU32())
	lit.LPNT = int(c.readU32())
	lit.LPNTauNum = int(c.readU32())
	lit.LPNTauDen = int(c.readU32())
	lit.RecryptRounds = int(c.readU32())
	lit.EdgeBudget = int(c.readU64())
	lit.Tuple2Fraction = c.readF64()
	lit.RecryptLo = c.readF64()
	lit.RecryptHi = c.readF64()

	canonTag := c.readU64()
	var hDigest [32]byte
	c.readFull(hDigest[:])

	nH := c.readU64()
	if c.err != nil {
		return pvac.PublicKey{}, c.n, ioErr("public-key file: params: %v", c.err)
	}

	hCols := make([]bitvec.V, nH)
	for i := range hCols {
		hCols[i] = c.readBitvec()
	}

	perm := readIntSlice(c)
	inv := readIntSlice(c)
	omegaB := c.readElt()

	nPow := c.readU64()
	powG := make([]field.Elt, nPow)
	for i := range powG {
		powG[i] = c.readElt()
	}

	if c.err != nil {
		return pvac.PublicKey{}, c.n, ioErr("public-key file: body: %v", c.err)
	}

	params, err := pvac.NewParametersFromLiteral(lit)
	if err != nil {
		return pvac.PublicKey{}, c.n, err
	}

	pub := pvac.PublicKey{
		Params:   params,
		CanonTag: canonTag,
		H:        hCols,
		HDigest:  hDigest,
		Perm:     hgraph.Permutation{Perm: perm, Inv: inv},
		OmegaB:   omegaB,
		PowG:     powG,
	}
	return pub, c.n, nil
}
