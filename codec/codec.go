// Package codec implements PVAC's three on-disk binary formats (spec §6):
// ciphertext files, public-key files, and secret-key files. Every format is
// a fixed magic number, a version byte, and a little-endian field layout,
// following the same "magic + version + length-prefixed body" shape
// rlwe.Ciphertext.WriteTo/ReadFrom uses, adapted to write directly through
// bufio rather than the teacher's buffer.Writer/Reader interfaces, which
// this pack does not carry.
package codec

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pvaclabs/pvac"
	"github.com/pvaclabs/pvac/bitvec"
	"github.com/pvaclabs/pvac/field"
)

const (
	magicCiphertext uint32 = 0x66699666
	magicPublicKey  uint32 = 0x06660666
	magicSecretKey  uint32 = 0x66666999
	formatVersion   uint8  = 1
)

// countingWriter wraps a bufio.Writer and tracks how many bytes have been
// written, the way WriteTo's n int64 return value requires.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func newCountingWriter(w io.Writer) *countingWriter {
	if bw, ok := w.(*bufio.Writer); ok {
		return &countingWriter{w: bw}
	}
	return &countingWriter{w: bufio.NewWriter(w)}
}

func (c *countingWriter) writeU8(v uint8) error {
	err := c.w.WriteByte(v)
	if err == nil {
		c.n++
	}
	return err
}

func (c *countingWriter) writeU16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	n, err := c.w.Write(b[:])
	c.n += int64(n)
	return err
}

func (c *countingWriter) writeU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	n, err := c.w.Write(b[:])
	c.n += int64(n)
	return err
}

func (c *countingWriter) writeU64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	n, err := c.w.Write(b[:])
	c.n += int64(n)
	return err
}

func (c *countingWriter) writeF64(v float64) error {
	return c.writeU64(math.Float64bits(v))
}

func (c *countingWriter) writeElt(e field.Elt) error {
	if err := c.writeU64(e.Lo); err != nil {
		return err
	}
	return c.writeU64(e.Hi)
}

func (c *countingWriter) writeBitvec(v bitvec.V) error {
	if err := c.writeU32(uint32(v.NBits)); err != nil {
		return err
	}
	for _, w := range v.Words {
		if err := c.writeU64(w); err != nil {
			return err
		}
	}
	return nil
}

func (c *countingWriter) flush() error {
	return c.w.Flush()
}

// countingReader is countingWriter's mirror: a bufio.Reader plus a running byte
// count and the first error encountered, so callers can check err once
// after a sequence of reads instead of after every field.
type countingReader struct {
	r   *bufio.Reader
	n   int64
	err error
}

func newCountingReader(r io.Reader) *countingReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &countingReader{r: br}
	}
	return &countingReader{r: bufio.NewReader(r)}
}

func (c *countingReader) readU8() uint8 {
	if c.err != nil {
		return 0
	}
	b, err := c.r.ReadByte()
	if err != nil {
		c.err = err
		return 0
	}
	c.n++
	return b
}

func (c *countingReader) readU16() uint16 {
	var b [2]byte
	c.readFull(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

func (c *countingReader) readU32() uint32 {
	var b [4]byte
	c.readFull(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (c *countingReader) readU64() uint64 {
	var b [8]byte
	c.readFull(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func (c *countingReader) readF64() float64 {
	return math.Float64frombits(c.readU64())
}

func (c *countingReader) readElt() field.Elt {
	lo := c.readU64()
	hi := c.readU64()
	return field.Elt{Lo: lo, Hi: hi}
}

func (c *countingReader) readBitvec() bitvec.V {
	nbits := int(c.readU32())
	v := bitvec.New(nbits)
	for i := range v.Words {
		v.Words[i] = c.readU64()
	}
	v.ClearTail()
	return v
}

func (c *countingReader) readFull(b []byte) {
	if c.err != nil {
		return
	}
	n, err := io.ReadFull(c.r, b)
	c.n += int64(n)
	if err != nil {
		c.err = err
	}
}

func ioErr(format string, args ...interface{}) error {
	return fmt.Errorf("pvac/codec: "+format+": %w", append(args, pvac.ErrIO)...)
}

func checkMagicVersion(c *countingReader, want uint32, kind string) {
	if c.err != nil {
		return
	}
	got := c.readU32()
	if got != want {
		c.err = ioErr("%s: bad magic %#x", kind, got)
		return
	}
	ver := c.readU8()
	if ver != formatVersion {
		c.err = ioErr("%s: unsupported version %d", kind, ver)
	}
}
