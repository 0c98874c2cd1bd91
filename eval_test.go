package pvac

import (
	"testing"

	"github.com/pvaclabs/pvac/field"
	"github.com/stretchr/testify/require"
)

func TestEvaluatorAdd(t *testing.T) {
	pub, sec := testKeyPair(t, 20)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	a := enc.Encrypt(testRNG(t, 21), field.FromU64(10))
	b := enc.Encrypt(testRNG(t, 22), field.FromU64(32))

	sum := ev.Add(a, b)
	got, err := dec.Decrypt(sum)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(42), got))
}

func TestEvaluatorScaleNegSub(t *testing.T) {
	pub, sec := testKeyPair(t, 23)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	a := enc.Encrypt(testRNG(t, 24), field.FromU64(10))
	b := enc.Encrypt(testRNG(t, 25), field.FromU64(4))

	scaled := ev.Scale(a, field.FromU64(3))
	got, err := dec.Decrypt(scaled)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(30), got))

	negated := ev.Neg(a)
	got, err = dec.Decrypt(negated)
	require.NoError(t, err)
	require.True(t, field.Eq(field.Neg(field.FromU64(10)), got))

	diff := ev.Sub(a, b)
	got, err = dec.Decrypt(diff)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(6), got))
}

func TestEvaluatorMul(t *testing.T) {
	pub, sec := testKeyPair(t, 26)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	a := enc.EncryptAtDepth(testRNG(t, 27), field.FromU64(6), 1)
	b := enc.EncryptAtDepth(testRNG(t, 28), field.FromU64(7), 1)

	prod := ev.Mul(testRNG(t, 29), a, b)
	got, err := dec.Decrypt(prod)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(42), got))
}

func TestEvaluatorAddThenMul(t *testing.T) {
	pub, sec := testKeyPair(t, 30)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	x := enc.EncryptAtDepth(testRNG(t, 31), field.FromU64(3), 1)
	y := enc.EncryptAtDepth(testRNG(t, 32), field.FromU64(5), 1)
	z := enc.EncryptAtDepth(testRNG(t, 33), field.FromU64(4), 1)

	sum := ev.Add(x, y)
	product := ev.Mul(testRNG(t, 34), sum, z)

	got, err := dec.Decrypt(product)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(32), got)) // (3+5)*4
}

func TestEvaluatorPolynomialEvaluation(t *testing.T) {
	// f(x) = x^2 + 2x + 3, evaluated at x=10: 100+20+3 = 123.
	pub, sec := testKeyPair(t, 35)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	x := enc.EncryptAtDepth(testRNG(t, 36), field.FromU64(10), 2)

	x2 := ev.Mul(testRNG(t, 37), x, x)
	twoX := ev.Scale(x, field.FromU64(2))
	three := enc.EncryptAtDepth(testRNG(t, 38), field.FromU64(3), 2)

	result := ev.Add(ev.Add(x2, twoX), three)
	got, err := dec.Decrypt(result)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(123), got))
}

// TestEvaluatorMulChainToTenthPower starts from enc(2) and, nine times in
// a row, multiplies the running product by a fresh encryption of 2, so
// ten factors of 2 accumulate to 2^10 = 1024, exercising the full
// multiplicative depth the encryptions were planned for.
func TestEvaluatorMulChainToTenthPower(t *testing.T) {
	const depth = 10
	pub, sec := testKeyPair(t, 70)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	acc := enc.EncryptAtDepth(testRNG(t, 71), field.FromU64(2), depth)
	for i := 1; i < depth; i++ {
		two := enc.EncryptAtDepth(testRNG(t, byte(72+i)), field.FromU64(2), depth)
		acc = ev.Mul(testRNG(t, byte(90+i)), acc, two)
	}

	got, err := dec.Decrypt(acc)
	require.NoError(t, err)
	require.True(t, field.Eq(field.FromU64(1024), got))
}

// TestEvaluatorConcreteAddMulScenario checks (x+y)*z mod p against the
// concrete values and expected result called out in the scheme's
// worked example.
func TestEvaluatorConcreteAddMulScenario(t *testing.T) {
	const x, y, z = 2016733, 7083881, 13579
	pub, sec := testKeyPair(t, 80)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	ex := enc.EncryptAtDepth(testRNG(t, 81), field.FromU64(x), 1)
	ey := enc.EncryptAtDepth(testRNG(t, 82), field.FromU64(y), 1)
	ez := enc.EncryptAtDepth(testRNG(t, 83), field.FromU64(z), 1)

	sum := ev.Add(ex, ey)
	product := ev.Mul(testRNG(t, 84), sum, ez)

	got, err := dec.Decrypt(product)
	require.NoError(t, err)

	want := field.Mul(field.Add(field.FromU64(x), field.FromU64(y)), field.FromU64(z))
	require.True(t, field.Eq(want, got))
}

// TestEvaluatorAlgebraicIdentities checks that Add/Mul satisfy the
// algebraic identities a ciphertext ring is expected to, decrypting
// both sides of each identity and comparing.
func TestEvaluatorAlgebraicIdentities(t *testing.T) {
	pub, sec := testKeyPair(t, 85)
	enc := NewEncryptor(pub, sec)
	ev := NewEvaluator(pub)
	dec := NewDecryptor(pub, sec)

	decOf := func(ct Ciphertext) field.Elt {
		v, err := dec.Decrypt(ct)
		require.NoError(t, err)
		return v
	}

	a := enc.EncryptAtDepth(testRNG(t, 86), field.FromU64(6), 2)
	b := enc.EncryptAtDepth(testRNG(t, 87), field.FromU64(11), 2)
	c := enc.EncryptAtDepth(testRNG(t, 88), field.FromU64(4), 2)

	// commutativity of Add and Mul
	require.True(t, field.Eq(decOf(ev.Add(a, b)), decOf(ev.Add(b, a))))
	require.True(t, field.Eq(decOf(ev.Mul(testRNG(t, 89), a, b)), decOf(ev.Mul(testRNG(t, 90), b, a))))

	// associativity of Add
	lhs := ev.Add(ev.Add(a, b), c)
	rhs := ev.Add(a, ev.Add(b, c))
	require.True(t, field.Eq(decOf(lhs), decOf(rhs)))

	// distributivity: a*(b+c) == a*b + a*c
	bc := ev.Add(b, c)
	left := ev.Mul(testRNG(t, 91), a, bc)
	ab := ev.Mul(testRNG(t, 92), a, b)
	ac := ev.Mul(testRNG(t, 93), a, c)
	right := ev.Add(ab, ac)
	require.True(t, field.Eq(decOf(left), decOf(right)))

	// (a+b)^2 == a^2 + 2ab + b^2
	ab2 := ev.Add(a, b)
	squared := ev.Mul(testRNG(t, 94), ab2, ab2)
	a2 := ev.Mul(testRNG(t, 95), a, a)
	b2 := ev.Mul(testRNG(t, 96), b, b)
	twoAB := ev.Scale(ev.Mul(testRNG(t, 97), a, b), field.FromU64(2))
	expanded := ev.Add(ev.Add(a2, twoAB), b2)
	require.True(t, field.Eq(decOf(squared), decOf(expanded)))
}
