package pvac

import (
	"testing"

	"github.com/pvaclabs/pvac/field"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T, seed byte) (PublicKey, SecretKey) {
	t.Helper()
	p := mustTestParams()
	kg := NewKeyGenerator(p)
	return kg.GenKeyPair(testRNG(t, seed))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	pub, sec := testKeyPair(t, 10)
	enc := NewEncryptor(pub, sec)
	dec := NewDecryptor(pub, sec)

	v := field.FromU64(42)
	ct := enc.Encrypt(testRNG(t, 11), v)

	got, err := dec.Decrypt(ct)
	require.NoError(t, err)
	require.True(t, field.Eq(v, got))
}

func TestEncryptZeroDecryptsToZero(t *testing.T) {
	pub, sec := testKeyPair(t, 12)
	enc := NewEncryptor(pub, sec)
	dec := NewDecryptor(pub, sec)

	ct := enc.EncryptZero(testRNG(t, 13))
	got, err := dec.Decrypt(ct)
	require.NoError(t, err)
	require.True(t, field.IsZero(got))
}

func TestEncryptEdgesRespectEdgeBudgetBeforeOverflow(t *testing.T) {
	pub, sec := testKeyPair(t, 14)
	enc := NewEncryptor(pub, sec)

	ct := enc.Encrypt(testRNG(t, 15), field.FromU64(7))
	require.LessOrEqual(t, len(ct.Edges), pub.Params.EdgeBudget())
	require.Len(t, ct.Layers, 1)
	require.Equal(t, Base, ct.Layers[0].Rule)
}

func TestEncryptAtDepthAddsMoreNoiseForDeeperChains(t *testing.T) {
	pub, sec := testKeyPair(t, 16)
	enc := NewEncryptor(pub, sec)

	shallow := enc.EncryptAtDepth(testRNG(t, 17), field.FromU64(3), 0)
	deep := enc.EncryptAtDepth(testRNG(t, 18), field.FromU64(3), 30)

	require.Greater(t, len(deep.Edges), len(shallow.Edges))
}
