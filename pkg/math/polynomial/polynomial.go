package polynomial

import (
	"io"

	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
)

// Polynomial is f(X) = a₀ + a₁⋅X + … + aₜ⋅Xᵗ over the scalar field.
type Polynomial struct {
	coefficients []*curve.Scalar
}

// NewPolynomial returns a random polynomial of the given degree with f(0) = constant.
// A nil constant is read as 0.
func NewPolynomial(rand io.Reader, degree int, constant *curve.Scalar) *Polynomial {
	coefficients := make([]*curve.Scalar, 0, degree+1)
	if constant == nil {
		coefficients = append(coefficients, curve.NewScalar())
	} else {
		coefficients = append(coefficients, constant.Clone())
	}
	for len(coefficients) <= degree {
		coefficients = append(coefficients, sample.Scalar(rand))
	}
	return &Polynomial{coefficients: coefficients}
}

// Evaluate returns f(x) using Horner's rule.
// It panics when x = 0, since f(0) is the shared secret.
func (p *Polynomial) Evaluate(x *curve.Scalar) *curve.Scalar {
	if x.IsZero() {
		panic("polynomial: evaluation at 0")
	}
	y := curve.NewScalar()
	for i := p.Degree(); i >= 0; i-- {
		y.Mul(x).Add(p.coefficients[i])
	}
	return y
}

// Constant returns a copy of f(0).
func (p *Polynomial) Constant() *curve.Scalar {
	return p.coefficients[0].Clone()
}

func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}
