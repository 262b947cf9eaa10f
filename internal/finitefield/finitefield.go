// Package finitefield implements arithmetic over a generic prime field
// F_p, the foundation the elliptic-curve point arithmetic is built on.
package finitefield

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrDomainMismatch is returned whenever an operation is attempted
// between two FieldElements that do not share the same prime modulus.
var ErrDomainMismatch = errors.New("field elements are from different fields")

// FieldElement represents an element in a finite field.
type FieldElement struct {
	Value *big.Int
	Prime *big.Int
}

// NewFieldElement creates a new FieldElement with the given value and prime.
// A nil value is accepted and produces a nil FieldElement, mirroring the
// point-at-infinity convention used by the curve package.
func NewFieldElement(value, prime *big.Int) (*FieldElement, error) {
	if value == nil {
		return nil, nil
	}
	if value.Sign() < 0 || value.Cmp(prime) >= 0 {
		return nil, fmt.Errorf("value not in the range [0, prime-1]")
	}
	return &FieldElement{Value: new(big.Int).Set(value), Prime: new(big.Int).Set(prime)}, nil
}

// Add adds two field elements and returns a new field element.
func (a *FieldElement) Add(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, ErrDomainMismatch
	}
	result := new(big.Int).Mod(new(big.Int).Add(a.Value, b.Value), a.Prime)
	return NewFieldElement(result, a.Prime)
}

// Subtract subtracts two field elements and returns a new field element.
func (a *FieldElement) Subtract(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, ErrDomainMismatch
	}
	result := new(big.Int).Sub(a.Value, b.Value)
	if result.Sign() < 0 {
		result.Add(result, a.Prime)
	}
	return NewFieldElement(result, a.Prime)
}

// Multiply multiplies two field elements and returns a new field element.
func (a *FieldElement) Multiply(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, ErrDomainMismatch
	}
	result := new(big.Int).Mul(a.Value, b.Value)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}

// Exponentiate computes a^power, reducing the exponent modulo prime-1
// (Fermat) first, so negative or oversized exponents behave correctly.
func (a *FieldElement) Exponentiate(power *big.Int) (*FieldElement, error) {
	exponent := new(big.Int).Mod(power, new(big.Int).Sub(a.Prime, big.NewInt(1)))
	result := new(big.Int).Exp(a.Value, exponent, a.Prime)
	return NewFieldElement(result, a.Prime)
}

// Squared computes the square of a field element.
func (a *FieldElement) Squared() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(2))
}

// Cubed computes the cube of a field element.
func (a *FieldElement) Cubed() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(3))
}

// Equal checks if two field elements are equal.
func (a *FieldElement) Equal(b *FieldElement) bool {
	return a.Value.Cmp(b.Value) == 0 && a.Prime.Cmp(b.Prime) == 0
}

// Negate returns a new FieldElement with the negated value of the current FieldElement.
func (a *FieldElement) Negate() (*FieldElement, error) {
	negatedValue := new(big.Int).Sub(a.Prime, a.Value)
	return NewFieldElement(negatedValue.Mod(negatedValue, a.Prime), a.Prime)
}

// String returns the string representation of a field element.
func (a *FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", a.Prime.String(), a.Value.String())
}

// Divide computes the division of two field elements (a / b) as
// a * b^-1 mod prime, with b^-1 the modular inverse of b.
func (a *FieldElement) Divide(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, ErrDomainMismatch
	}
	if b.Value.Sign() == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	inverse := new(big.Int).ModInverse(b.Value, a.Prime)
	if inverse == nil {
		return nil, fmt.Errorf("division by non-invertible element")
	}
	result := new(big.Int).Mul(a.Value, inverse)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}
