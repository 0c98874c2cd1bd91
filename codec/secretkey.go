package codec

import (
	"io"

	"github.com/pvaclabs/pvac"
	"github.com/pvaclabs/pvac/bitvec"
)

// WriteSecretKey serializes sec to w per spec §6's secret-key file
// format: magic, version, four u64 PRF keys, the LPN secret's bit
// length, then its packed words.
func WriteSecretKey(w io.Writer, sec pvac.SecretKey) (int64, error) {
	c := newCountingWriter(w)

	if err := c.writeU32(magicSecretKey); err != nil {
		return c.n, err
	}
	if err := c.writeU8(formatVersion); err != nil {
		return c.n, err
	}
	for _, k := range sec.PRFKeys {
		if err := c.writeU64(k); err != nil {
			return c.n, err
		}
	}
	if err := c.writeU64(uint64(sec.LPNSecret.NBits)); err != nil {
		return c.n, err
	}
	for _, word := range sec.LPNSecret.Words {
		if err := c.writeU64(word); err != nil {
			return c.n, err
		}
	}

	return c.n, c.flush()
}

// ReadSecretKey deserializes a secret-key file written by
// WriteSecretKey, rejecting wrong magic/version/truncated streams.
func ReadSecretKey(r io.Reader) (pvac.SecretKey, int64, error) {
	c := newCountingReader(r)

	checkMagicVersion(c, magicSecretKey, "secret-key file")
	if c.err != nil {
		return pvac.SecretKey{}, c.n, ioErr("secret-key file: header: %v", c.err)
	}

	var sec pvac.SecretKey
	for i := range sec.PRFKeys {
		sec.PRFKeys[i] = c.readU64()
	}

	nBits := int(c.readU64())
	if c.err != nil {
		return pvac.SecretKey{}, c.n, ioErr("secret-key file: lpn length: %v", c.err)
	}

	secret := bitvec.New(nBits)
	for i := range secret.Words {
		secret.Words[i] = c.readU64()
	}
	secret.ClearTail()
	sec.LPNSecret = secret

	if c.err != nil {
		return pvac.SecretKey{}, c.n, ioErr("secret-key file: body: %v", c.err)
	}
	return sec, c.n, nil
}
