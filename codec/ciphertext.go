package codec

import (
	"io"

	"github.com/pvaclabs/pvac"
)

// WriteCiphertexts serializes cts to w per spec §6's ciphertext file
// format: magic, version, u64 count, then each ciphertext as
// |L| u32, |E| u32, its layers, then its edges.
func WriteCiphertexts(w io.Writer, cts []pvac.Ciphertext) (int64, error) {
	c := newCountingWriter(w)

	if err := c.writeU32(magicCiphertext); err != nil {
		return c.n, err
	}
	if err := c.writeU8(formatVersion); err != nil {
		return c.n, err
	}
	if err := c.writeU64(uint64(len(cts))); err != nil {
		return c.n, err
	}

	for _, ct := range cts {
		if err := writeOneCiphertext(c, ct); err != nil {
			return c.n, err
		}
	}

	return c.n, c.flush()
}

func writeOneCiphertext(c *countingWriter, ct pvac.Ciphertext) error {
	if err := c.writeU32(uint32(len(ct.Layers))); err != nil {
		return err
	}
	if err := c.writeU32(uint32(len(ct.Edges))); err != nil {
		return err
	}

	for _, l := range ct.Layers {
		if err := c.writeU8(uint8(l.Rule)); err != nil {
			return err
		}
		switch l.Rule {
		case pvac.Base:
			if err := c.writeU64(l.Seed.ZTag); err != nil {
				return err
			}
			if err := c.writeU64(l.Seed.Nonce.Lo); err != nil {
				return err
			}
			if err := c.writeU64(l.Seed.Nonce.Hi); err != nil {
				return err
			}
		case pvac.Prod:
			if err := c.writeU32(l.PA); err != nil {
				return err
			}
			if err := c.writeU32(l.PB); err != nil {
				return err
			}
		}
	}

	for _, e := range ct.Edges {
		if err := c.writeU32(e.LayerID); err != nil {
			return err
		}
		if err := c.writeU16(e.Idx); err != nil {
			return err
		}
		if err := c.writeU8(uint8(e.Sign)); err != nil {
			return err
		}
		if err := c.writeU8(0); err != nil { // pad
			return err
		}
		if err := c.writeElt(e.Weight); err != nil {
			return err
		}
		if err := c.writeBitvec(e.Tag); err != nil {
			return err
		}
	}
	return nil
}

// ReadCiphertexts deserializes a ciphertext file written by
// WriteCiphertexts, rejecting wrong magic/version/truncated streams.
func ReadCiphertexts(r io.Reader) ([]pvac.Ciphertext, int64, error) {
	c := newCountingReader(r)

	checkMagicVersion(c, magicCiphertext, "ciphertext file")
	count := c.readU64()
	if c.err != nil {
		return nil, c.n, ioErr("ciphertext file: header: %v", c.err)
	}

	cts := make([]pvac.Ciphertext, count)
	for i := range cts {
		ct, err := readOneCiphertext(c)
		if err != nil {
			return nil, c.n, err
		}
		cts[i] = ct
	}
	return cts, c.n, nil
}

func readOneCiphertext(c *countingReader) (pvac.Ciphertext, error) {
	nLayers := c.readU32()
	nEdges := c.readU32()
	if c.err != nil {
		return pvac.Ciphertext{}, ioErr("ciphertext file: lengths: %v", c.err)
	}

	layers := make([]pvac.Layer, nLayers)
	for i := range layers {
		rule := pvac.Rule(c.readU8())
		l := pvac.Layer{Rule: rule}
		switch rule {
		case pvac.Base:
			l.Seed.ZTag = c.readU64()
			l.Seed.Nonce.Lo = c.readU64()
			l.Seed.Nonce.Hi = c.readU64()
		case pvac.Prod:
			l.PA = c.readU32()
			l.PB = c.readU32()
		default:
			if c.err == nil {
				return pvac.Ciphertext{}, ioErr("ciphertext file: layer %d: unknown rule %d", i, rule)
			}
		}
		layers[i] = l
	}

	edges := make([]pvac.Edge, nEdges)
	for i := range edges {
		e := pvac.Edge{}
		e.LayerID = c.readU32()
		e.Idx = c.readU16()
		e.Sign = pvac.Sign(c.readU8())
		c.readU8() // pad
		e.Weight = c.readElt()
		e.Tag = c.readBitvec()
		edges[i] = e
	}

	if c.err != nil {
		return pvac.Ciphertext{}, ioErr("ciphertext file: body: %v", c.err)
	}
	return pvac.Ciphertext{Layers: layers, Edges: edges}, nil
}
