package polynomial

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

func TestPolynomial_Constant(t *testing.T) {
	deg := 10
	secret := sample.Scalar(rand.Reader)
	poly := NewPolynomial(rand.Reader, deg, secret)
	require.Equal(t, deg, poly.Degree())
	assert.True(t, poly.Constant().Equal(secret))
}

func TestPolynomial_Evaluate(t *testing.T) {
	// f(X) = 1 + X
	one := curve.NewScalar().SetUInt32(1)
	p := &Polynomial{coefficients: []*curve.Scalar{one, one}}
	x := curve.NewScalar().SetUInt32(41)
	assert.True(t, p.Evaluate(x).Equal(curve.NewScalar().SetUInt32(42)))
	assert.Panics(t, func() { p.Evaluate(curve.NewScalar()) })
}

func TestExponent_Evaluate(t *testing.T) {
	for x := 0; x < 5; x++ {
		var secret *curve.Scalar
		if x%2 == 0 {
			secret = sample.Scalar(rand.Reader)
		}
		poly := NewPolynomial(rand.Reader, 20, secret)
		polyExp := NewPolynomialExponent(poly)

		randomIndex := sample.ScalarUnit(rand.Reader)
		lhs := poly.Evaluate(randomIndex).ActOnBase()
		assert.True(t, lhs.Equal(polyExp.Evaluate(randomIndex)), "base eval differs from exponent eval")
		assert.True(t, poly.Constant().ActOnBase().Equal(polyExp.Constant()))
		assert.Equal(t, poly.Degree(), polyExp.Degree())
	}
}

func TestLagrange(t *testing.T) {
	allIDs := party.NewIDSlice([]party.ID{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"})
	for _, ids := range []party.IDSlice{allIDs, allIDs[:9]} {
		sum := curve.NewScalar()
		for _, c := range Lagrange(ids) {
			sum.Add(c)
		}
		assert.True(t, sum.Equal(curve.NewScalar().SetUInt32(1)))
	}
}

func TestLagrange_Reconstruct(t *testing.T) {
	ids := party.NewIDSlice([]party.ID{"alice", "bob", "carol", "dave"})
	secret := sample.Scalar(rand.Reader)
	poly := NewPolynomial(rand.Reader, 2, secret)

	subset := ids[1:]
	coefs := Lagrange(subset)
	result := curve.NewScalar()
	for _, id := range subset {
		result.Add(coefs[id].Clone().Mul(poly.Evaluate(id.Scalar())))
	}
	assert.True(t, result.Equal(secret))
	assert.True(t, LagrangeSingle(subset, "bob").Equal(coefs["bob"]))
}
