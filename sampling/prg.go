package sampling

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

var logAESNIOnce sync.Once

// logAESNI reports, once per process, whether the CPU advertises AES-NI.
// Purely diagnostic: PRG correctness never depends on it, only its
// throughput does.
func logAESNI() {
	logAESNIOnce.Do(func() {
		if cpuid.CPU.Supports(cpuid.AESNI) {
			log.Print("pvac/sampling: AES-NI available, using hardware-accelerated AES-256-CTR")
		} else {
			log.Print("pvac/sampling: AES-NI not detected, falling back to software AES-256-CTR")
		}
	})
}

// PRG is a keyed stream cipher PRG: AES-256-CTR, as specified for the LPN
// inner loop's throughput-sensitive sampling.
type PRG struct {
	stream cipher.Stream
	zeros  []byte
}

// NewStreamCipherPRG builds an AES-256-CTR PRG from a 32-byte key and a
// 16-byte initial counter block (the LPN PRF passes a truncated SHA-256
// digest here).
func NewStreamCipherPRG(key [32]byte, iv [aes.BlockSize]byte) (*PRG, error) {
	logAESNI()
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("pvac/sampling: cannot build AES-256-CTR PRG: %w", err)
	}
	return &PRG{
		stream: cipher.NewCTR(block, iv[:]),
		zeros:  make([]byte, 4096),
	}, nil
}

// Fill writes keystream bytes into p.
func (g *PRG) Fill(p []byte) {
	for len(p) > 0 {
		n := len(p)
		if n > len(g.zeros) {
			n = len(g.zeros)
		}
		g.stream.XORKeyStream(p[:n], g.zeros[:n])
		p = p[n:]
	}
}

// NextU64 reads the next 8 bytes of keystream as a little-endian uint64.
func (g *PRG) NextU64() uint64 {
	var buf [8]byte
	g.Fill(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Bounded returns a uniform integer in [0, m) by rejection sampling, with
// worst-case timing independent of any secret (the PRG's keystream is the
// only input, and retries are bounded by the fixed rejection probability
// of the modulus, never by m's relationship to a secret value).
func (g *PRG) Bounded(m uint64) uint64 {
	if m <= 1 {
		return 0
	}
	limit := math.MaxUint64 - (math.MaxUint64 % m)
	for {
		v := g.NextU64()
		if v <= limit {
			return v % m
		}
	}
}
