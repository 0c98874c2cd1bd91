package main

import (
	"encoding/binary"

	"github.com/pvaclabs/pvac/field"
)

// chunkSize is the number of plaintext bytes packed into one Fp element:
// 15 bytes (120 bits) sits comfortably inside the 127-bit field with
// room to spare, so every chunk value is trivially canonical.
const chunkSize = 15

// chunksOf splits msg into chunkSize-byte slices, the last zero-padded.
func chunksOf(msg []byte) [][]byte {
	var out [][]byte
	for i := 0; i < len(msg); i += chunkSize {
		end := i + chunkSize
		if end > len(msg) {
			end = len(msg)
		}
		chunk := make([]byte, chunkSize)
		copy(chunk, msg[i:end])
		out = append(out, chunk)
	}
	if len(out) == 0 {
		out = append(out, make([]byte, chunkSize))
	}
	return out
}

// chunkToElt packs a chunkSize-byte chunk into an Fp element: the low 8
// bytes become Lo, the remaining 7 become the low 7 bytes of Hi.
func chunkToElt(chunk []byte) field.Elt {
	var lo [8]byte
	copy(lo[:], chunk[0:8])
	var hi [8]byte
	copy(hi[0:7], chunk[8:15])
	return field.Elt{
		Lo: binary.LittleEndian.Uint64(lo[:]),
		Hi: binary.LittleEndian.Uint64(hi[:]),
	}
}

// eltToChunk is chunkToElt's inverse.
func eltToChunk(e field.Elt) []byte {
	out := make([]byte, chunkSize)
	var lo [8]byte
	binary.LittleEndian.PutUint64(lo[:], e.Lo)
	copy(out[0:8], lo[:])
	var hi [8]byte
	binary.LittleEndian.PutUint64(hi[:], e.Hi)
	copy(out[8:15], hi[0:7])
	return out
}

// encodeMessage packs msg into a sequence of Fp elements.
func encodeMessage(msg []byte) []field.Elt {
	chunks := chunksOf(msg)
	elts := make([]field.Elt, len(chunks))
	for i, c := range chunks {
		elts[i] = chunkToElt(c)
	}
	return elts
}

// decodeMessage is encodeMessage's inverse, given the original byte
// length (chunks are zero-padded so the length must travel alongside).
func decodeMessage(elts []field.Elt, msgLen int) []byte {
	out := make([]byte, 0, len(elts)*chunkSize)
	for _, e := range elts {
		out = append(out, eltToChunk(e)...)
	}
	if msgLen < len(out) {
		out = out[:msgLen]
	}
	return out
}
