package finitefield

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFieldElement(t *testing.T) {
	value := big.NewInt(7)
	prime := big.NewInt(17)
	fe, err := NewFieldElement(value, prime)
	require.NoError(t, err)
	require.True(t, fe.Equal(&FieldElement{value, prime}))

	_, err = NewFieldElement(big.NewInt(17), prime)
	require.Error(t, err, "value out of range must be rejected")

	fe, err = NewFieldElement(nil, prime)
	require.NoError(t, err)
	require.Nil(t, fe, "a nil value must produce a nil FieldElement")
}

func TestFieldElementAdd(t *testing.T) {
	a, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	b, _ := NewFieldElement(big.NewInt(8), big.NewInt(17))
	result, err := a.Add(b)
	require.NoError(t, err)
	expected, _ := NewFieldElement(big.NewInt(15), big.NewInt(17))
	require.True(t, result.Equal(expected))

	c, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	d, _ := NewFieldElement(big.NewInt(8), big.NewInt(19))
	_, err = c.Add(d)
	require.ErrorIs(t, err, ErrDomainMismatch)
}

func TestFieldElementSubtract(t *testing.T) {
	a, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	b, _ := NewFieldElement(big.NewInt(8), big.NewInt(17))
	result, err := a.Subtract(b)
	require.NoError(t, err)
	expected, _ := NewFieldElement(big.NewInt(16), big.NewInt(17))
	require.True(t, result.Equal(expected))

	c, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	d, _ := NewFieldElement(big.NewInt(8), big.NewInt(19))
	_, err = c.Subtract(d)
	require.ErrorIs(t, err, ErrDomainMismatch)
}

func TestFieldElementMultiply(t *testing.T) {
	a, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	b, _ := NewFieldElement(big.NewInt(8), big.NewInt(17))
	result, err := a.Multiply(b)
	require.NoError(t, err)
	expected, _ := NewFieldElement(big.NewInt(5), big.NewInt(17))
	require.True(t, result.Equal(expected))

	c, _ := NewFieldElement(big.NewInt(8), big.NewInt(19))
	_, err = a.Multiply(c)
	require.ErrorIs(t, err, ErrDomainMismatch)

	d, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	zero, _ := NewFieldElement(big.NewInt(0), big.NewInt(17))
	result, err = d.Multiply(zero)
	require.NoError(t, err)
	require.True(t, result.Equal(zero))

	result, err = zero.Multiply(d)
	require.NoError(t, err)
	require.True(t, result.Equal(zero))
}

func TestFieldElementExponentiate(t *testing.T) {
	testCases := []struct {
		base, power, expected, prime int64
	}{
		{3, 3, 27, 53},
		{0, 5, 0, 53},
		{5, 0, 1, 53},
		{6, 2, 36, 53},
		{2, 3, 8, 53},
		{12, 1, 12, 53},
		{15, 3, 3375 % 53, 53},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("Base%dPower%d", tc.base, tc.power), func(t *testing.T) {
			base, _ := NewFieldElement(big.NewInt(tc.base), big.NewInt(tc.prime))
			expected, _ := NewFieldElement(big.NewInt(tc.expected), big.NewInt(tc.prime))

			result, err := base.Exponentiate(big.NewInt(tc.power))
			require.NoError(t, err)
			require.True(t, result.Equal(expected), "got %s, want %s", result, expected)
		})
	}
}

func TestFieldElementSquared(t *testing.T) {
	prime := big.NewInt(17)
	testCases := []struct {
		name     string
		input    *big.Int
		expected *big.Int
	}{
		{"Square of 2", big.NewInt(2), big.NewInt(4)},
		{"Square of 0", big.NewInt(0), big.NewInt(0)},
		{"Square of 5", big.NewInt(5), big.NewInt(8)},
		{"Square of 6", big.NewInt(6), big.NewInt(2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := NewFieldElement(tc.input, prime)
			result, err := a.Squared()
			require.NoError(t, err)
			expected, _ := NewFieldElement(tc.expected, prime)
			require.True(t, result.Equal(expected))
		})
	}
}

func TestFieldElementCubed(t *testing.T) {
	prime := big.NewInt(17)
	testCases := []struct {
		name     string
		input    *big.Int
		expected *big.Int
	}{
		{"Cube of 2", big.NewInt(2), big.NewInt(8)},
		{"Cube of 0", big.NewInt(0), big.NewInt(0)},
		{"Cube of 5", big.NewInt(5), big.NewInt(6)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := NewFieldElement(tc.input, prime)
			result, err := a.Cubed()
			require.NoError(t, err)
			expected, _ := NewFieldElement(tc.expected, prime)
			require.True(t, result.Equal(expected))
		})
	}
}

func TestFieldElementEqual(t *testing.T) {
	a, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	b, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	require.True(t, a.Equal(b))

	c, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	d, _ := NewFieldElement(big.NewInt(8), big.NewInt(17))
	require.False(t, c.Equal(d))
}

func TestFieldElementString(t *testing.T) {
	a, _ := NewFieldElement(big.NewInt(7), big.NewInt(17))
	require.Equal(t, "FieldElement_17(7)", a.String())
}

func TestFieldElementNegate(t *testing.T) {
	prime := big.NewInt(13)
	tests := []struct {
		inputValue    *big.Int
		expectedValue *big.Int
	}{
		{big.NewInt(7), big.NewInt(6)},
		{big.NewInt(0), big.NewInt(0)},
		{big.NewInt(12), big.NewInt(1)},
	}

	for _, test := range tests {
		fe, err := NewFieldElement(test.inputValue, prime)
		require.NoError(t, err)

		negatedFe, err := fe.Negate()
		require.NoError(t, err)
		require.Equal(t, 0, negatedFe.Value.Cmp(test.expectedValue))
	}
}

func TestFieldElementDivide(t *testing.T) {
	prime := big.NewInt(19)
	a, _ := NewFieldElement(big.NewInt(2), prime)
	b, _ := NewFieldElement(big.NewInt(7), prime)

	result, err := a.Divide(b)
	require.NoError(t, err)

	expected, _ := NewFieldElement(big.NewInt(3), prime)
	require.Equal(t, 0, result.Value.Cmp(expected.Value))

	zero, _ := NewFieldElement(big.NewInt(0), prime)
	_, err = a.Divide(zero)
	require.Error(t, err)

	otherPrime := big.NewInt(17)
	c, _ := NewFieldElement(big.NewInt(3), otherPrime)
	_, err = a.Divide(c)
	require.ErrorIs(t, err, ErrDomainMismatch)
}

// TestFieldAxioms exercises the universal properties from the
// specification: (a+b)-b==a, (a*b)/b==a for b!=0, and a^(p-1)==1 for a!=0.
func TestFieldAxioms(t *testing.T) {
	primes := []int64{17, 19, 23, 223, 65537}
	rng := rand.New(rand.NewSource(1))

	for _, p := range primes {
		prime := big.NewInt(p)
		for i := 0; i < 20; i++ {
			av := big.NewInt(rng.Int63n(p))
			bv := new(big.Int).Add(big.NewInt(rng.Int63n(p-1)), big.NewInt(1)) // nonzero

			a, err := NewFieldElement(av, prime)
			require.NoError(t, err)
			b, err := NewFieldElement(bv, prime)
			require.NoError(t, err)

			sum, err := a.Add(b)
			require.NoError(t, err)
			back, err := sum.Subtract(b)
			require.NoError(t, err)
			require.True(t, back.Equal(a), "(a+b)-b != a for a=%s b=%s", a, b)

			if av.Sign() != 0 {
				prod, err := a.Multiply(b)
				require.NoError(t, err)
				quotient, err := prod.Divide(b)
				require.NoError(t, err)
				require.True(t, quotient.Equal(a), "(a*b)/b != a for a=%s b=%s", a, b)

				one, err := a.Exponentiate(new(big.Int).Sub(prime, big.NewInt(1)))
				require.NoError(t, err)
				require.Equal(t, int64(1), one.Value.Int64(), "a^(p-1) != 1 for a=%s", a)
			}
		}
	}
}
