// Package secp256k1 fixes the generic finitefield/ellipticcurve
// packages to the curve parameters Bitcoin actually uses: the prime
// P, curve coefficients A=0 and B=7, the group order N, and the base
// point G. It also carries the operations that only make sense once
// those parameters are fixed (square roots, SEC point encoding).
package secp256k1

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ohallgren/btcconsensus/internal/ellipticcurve"
	"github.com/ohallgren/btcconsensus/internal/finitefield"
)

// ErrInvalidSEC is returned when a SEC-encoded point cannot be parsed.
var ErrInvalidSEC = errors.New("invalid SEC encoding")

// FieldElement specializes finitefield.FieldElement to the secp256k1
// prime P.
type FieldElement struct {
	finitefield.FieldElement
}

// Point specializes ellipticcurve.Point to the secp256k1 curve
// (A=0, B=7 over FieldElement).
type Point struct {
	ellipticcurve.Point
}

var (
	// P is the field prime secp256k1 is defined over:
	// 2^256 - 2^32 - 977.
	P *big.Int
	// N is the order of the base point G.
	N *big.Int
	// A and B are the short Weierstrass coefficients, as FieldElements
	// reduced mod P.
	A *FieldElement
	B *FieldElement
	// G is the base point of the secp256k1 group.
	G *Point
)

func init() {
	P, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f", 16)
	N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

	aFe, err := finitefield.NewFieldElement(big.NewInt(0), P)
	if err != nil {
		panic(err)
	}
	bFe, err := finitefield.NewFieldElement(big.NewInt(7), P)
	if err != nil {
		panic(err)
	}
	A = &FieldElement{*aFe}
	B = &FieldElement{*bFe}

	gx, _ := new(big.Int).SetString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", 16)
	gy, _ := new(big.Int).SetString("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", 16)

	x, err := NewFieldElement(gx)
	if err != nil {
		panic(err)
	}
	y, err := NewFieldElement(gy)
	if err != nil {
		panic(err)
	}
	point, err := ellipticcurve.NewPoint(&x.FieldElement, &y.FieldElement, &A.FieldElement, &B.FieldElement)
	if err != nil {
		panic(err)
	}
	G = &Point{*point}
}

// NewFieldElement builds a FieldElement over P; values outside [0, P)
// are rejected with an error, not reduced.
func NewFieldElement(value *big.Int) (*FieldElement, error) {
	fe, err := finitefield.NewFieldElement(value, P)
	if err != nil {
		return nil, err
	}
	return &FieldElement{*fe}, nil
}

// NewPoint builds a Point on the secp256k1 curve from raw coordinates.
// A nil x and y construct the point at infinity.
func NewPoint(x, y *big.Int) (*Point, error) {
	var xFe, yFe *finitefield.FieldElement
	if x != nil && y != nil {
		xf, err := NewFieldElement(x)
		if err != nil {
			return nil, err
		}
		yf, err := NewFieldElement(y)
		if err != nil {
			return nil, err
		}
		xFe, yFe = &xf.FieldElement, &yf.FieldElement
	}
	point, err := ellipticcurve.NewPoint(xFe, yFe, &A.FieldElement, &B.FieldElement)
	if err != nil {
		return nil, err
	}
	return &Point{*point}, nil
}

// Equal reports whether two secp256k1 points are the same point,
// overriding the promoted ellipticcurve.Point.Equal so callers compare
// *Point values directly instead of reaching into the embedded field.
func (p *Point) Equal(q *Point) bool {
	return p.Point.Equal(&q.Point)
}

// ScalarMultiplication multiplies the point by a scalar reduced mod N,
// as required by the group order.
func (p *Point) ScalarMultiplication(coefficient *big.Int) (*Point, error) {
	coef := new(big.Int).Mod(coefficient, N)
	result, err := p.Point.ScalarMultiplication(coef)
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// Sqrt computes a square root of the field element using the Fermat
// trick valid because P % 4 == 3: sqrt(v) = v^((P+1)/4) mod P.
func (a *FieldElement) Sqrt() (*FieldElement, error) {
	exponent := new(big.Int).Add(P, big.NewInt(1))
	exponent.Div(exponent, big.NewInt(4))
	result, err := a.Exponentiate(exponent)
	if err != nil {
		return nil, err
	}
	return &FieldElement{*result}, nil
}

// GetEvenOddSquareRoots returns the two square roots of the field
// element, ordered (even, odd) by the parity of their integer value.
// This lets SEC point parsing pick the root matching the prefix byte
// without needing to know which one Sqrt happened to return.
func (a *FieldElement) GetEvenOddSquareRoots() (even, odd *FieldElement, err error) {
	root, err := a.Sqrt()
	if err != nil {
		return nil, nil, err
	}
	negRoot, err := root.Negate()
	if err != nil {
		return nil, nil, err
	}
	negFe := &FieldElement{*negRoot}

	if root.Value.Bit(0) == 0 {
		return root, negFe, nil
	}
	return negFe, root, nil
}

// SerializeSEC encodes the point using the SEC format: compressed
// (33 bytes, 0x02/0x03 prefix) or uncompressed (65 bytes, 0x04 prefix).
func (p *Point) SerializeSEC(compressed bool) []byte {
	xBytes := make([]byte, 32)
	p.X.Value.FillBytes(xBytes)

	if compressed {
		prefix := byte(0x02)
		if p.Y.Value.Bit(0) == 1 {
			prefix = 0x03
		}
		return append([]byte{prefix}, xBytes...)
	}

	yBytes := make([]byte, 32)
	p.Y.Value.FillBytes(yBytes)
	out := make([]byte, 0, 65)
	out = append(out, 0x04)
	out = append(out, xBytes...)
	out = append(out, yBytes...)
	return out
}

// ParseSEC parses a SEC-encoded point, recovering y from x and the
// parity prefix for the compressed form.
func ParseSEC(sec []byte) (*Point, error) {
	if len(sec) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidSEC)
	}

	if sec[0] == 0x04 {
		if len(sec) != 65 {
			return nil, fmt.Errorf("%w: uncompressed point must be 65 bytes", ErrInvalidSEC)
		}
		x := new(big.Int).SetBytes(sec[1:33])
		y := new(big.Int).SetBytes(sec[33:65])
		return NewPoint(x, y)
	}

	if sec[0] != 0x02 && sec[0] != 0x03 {
		return nil, fmt.Errorf("%w: unrecognized prefix 0x%x", ErrInvalidSEC, sec[0])
	}
	if len(sec) != 33 {
		return nil, fmt.Errorf("%w: compressed point must be 33 bytes", ErrInvalidSEC)
	}

	isEven := sec[0] == 0x02
	x, err := NewFieldElement(new(big.Int).SetBytes(sec[1:33]))
	if err != nil {
		return nil, err
	}

	xCubed, err := x.Cubed()
	if err != nil {
		return nil, err
	}
	ySquared, err := xCubed.Add(&B.FieldElement)
	if err != nil {
		return nil, err
	}
	ySquaredFe := &FieldElement{*ySquared}

	even, odd, err := ySquaredFe.GetEvenOddSquareRoots()
	if err != nil {
		return nil, err
	}

	var y *FieldElement
	if isEven {
		y = even
	} else {
		y = odd
	}

	point, err := ellipticcurve.NewPoint(&x.FieldElement, &y.FieldElement, &A.FieldElement, &B.FieldElement)
	if err != nil {
		return nil, err
	}
	return &Point{*point}, nil
}
