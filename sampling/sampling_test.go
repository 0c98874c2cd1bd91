package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedPRNGDeterministic(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	a, err := NewKeyedPRNG(key)
	require.NoError(t, err)
	b, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	bufA := make([]byte, 512)
	bufB := make([]byte, 512)

	for i := 0; i < 128; i++ {
		_, _ = b.Read(make([]byte, 8))
	}
	b.Reset()

	_, _ = a.Read(bufA)
	_, _ = b.Read(bufB)

	require.Equal(t, bufA, bufB)
}

func TestXOFDeterministicAndDomainSeparated(t *testing.T) {
	a := NewXOF("pvac.dom.h_gen", []uint64{1, 2, 3})
	b := NewXOF("pvac.dom.h_gen", []uint64{1, 2, 3})
	c := NewXOF("pvac.dom.x_seed", []uint64{1, 2, 3})

	bufA := make([]byte, 64)
	bufB := make([]byte, 64)
	bufC := make([]byte, 64)

	_, _ = a.Read(bufA)
	_, _ = b.Read(bufB)
	_, _ = c.Read(bufC)

	require.Equal(t, bufA, bufB)
	require.NotEqual(t, bufA, bufC)
}

func TestXOFChooseKDistinct(t *testing.T) {
	x := NewXOF("pvac.dom.x_seed", []uint64{42})
	got := x.ChooseK(16, 128)
	require.Len(t, got, 16)

	seen := make(map[int]bool)
	for _, v := range got {
		require.False(t, seen[v])
		require.True(t, v >= 0 && v < 128)
		seen[v] = true
	}
}

func TestStreamCipherPRGDeterministic(t *testing.T) {
	var key [32]byte
	var iv [16]byte
	for i := range key {
		key[i] = byte(i + 1)
	}

	a, err := NewStreamCipherPRG(key, iv)
	require.NoError(t, err)
	b, err := NewStreamCipherPRG(key, iv)
	require.NoError(t, err)

	require.Equal(t, a.NextU64(), b.NextU64())
}

func TestBoundedInRange(t *testing.T) {
	x := NewXOF("pvac.dom.noise", []uint64{7})
	for i := 0; i < 1000; i++ {
		v := x.Bounded(337)
		require.Less(t, v, uint64(337))
	}
}
