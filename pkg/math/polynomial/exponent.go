package polynomial

import (
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points on an elliptic curve.
type Exponent struct {
	coefficients []*curve.Point
}

// NewPolynomialExponent generates an Exponent polynomial F(X) = [secret + a₁⋅X + … + aₜ⋅Xᵗ]⋅G,
// with coefficients in G, and degree t.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{coefficients: make([]*curve.Point, len(polynomial.coefficients))}
	for i, c := range polynomial.coefficients {
		p.coefficients[i] = c.ActOnBase()
	}
	return p
}

// Evaluate returns F(index) using Horner's method.
func (p *Exponent) Evaluate(index *curve.Scalar) *curve.Point {
	result := curve.NewPoint()
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// Bₙ₋₁ = [x]Bₙ + Aₙ₋₁
		result = index.Act(result).Add(p.coefficients[i])
	}
	return result
}

// Constant returns a copy of F(0).
func (p *Exponent) Constant() *curve.Point {
	return p.coefficients[0].Clone()
}

// Degree is the highest power of the Exponent.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}
