package arith

import (
	"io"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/taurusgroup/mpc-sign/internal/params"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
)

func sampleCoprime(r io.Reader) (*saferith.Nat, *saferith.Nat, *saferith.Modulus) {
	a := sample.IntervalLEpsN(r).Abs()
	b := new(saferith.Nat)
	for b.Coprime(a) != 1 {
		b = sample.IntervalLEpsN(r).Abs()
	}
	cNat := new(saferith.Nat).Mul(a, b, -1)
	c := saferith.ModulusFromNat(cNat)
	return a, b, c
}

func TestModulus_Exp(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))
	a, b, c := sampleCoprime(r)

	cFast := ModulusFromFactors(a, b)
	cSlow := ModulusFromN(c)
	assert.True(t, cFast.Nat().Eq(cSlow.Nat()) == 1, "n moduli should be the same")

	x := sample.ModN(r, c)
	e := sample.IntervalLN(r).Abs()
	eNeg := new(saferith.Int).SetNat(e).Neg(1)

	yExpected := new(saferith.Nat).Exp(x, e, c)
	yFast := cFast.Exp(x, e)
	ySlow := cSlow.Exp(x, e)
	assert.True(t, yExpected.Eq(yFast) == 1, "exponentiation with acceleration should give the same result")
	assert.True(t, yExpected.Eq(ySlow) == 1, "exponentiation with acceleration should give the same result")

	yExpected.ExpI(x, eNeg, c)
	yFast = cFast.ExpI(x, eNeg)
	ySlow = cSlow.ExpI(x, eNeg)
	assert.True(t, yExpected.Eq(yFast) == 1, "negative exponentiation with acceleration should give the same result")
	assert.True(t, yExpected.Eq(ySlow) == 1, "negative exponentiation with acceleration should give the same result")
}

func TestIsValidNatModN(t *testing.T) {
	n := saferith.ModulusFromUint64(35)
	assert.True(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(2), new(saferith.Nat).SetUint64(34)))
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(0)), "zero is not a unit")
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(7)), "7 shares a factor with 35")
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(36)), "36 is out of range")
	assert.False(t, IsValidNatModN(n, nil))
}

func TestIntervals(t *testing.T) {
	r := mrand.New(mrand.NewSource(1))
	assert.True(t, IsInIntervalLEps(sample.IntervalLEps(r)))
	assert.True(t, IsInIntervalLPrimeEps(sample.IntervalLPrimeEps(r)))

	tooBig := new(saferith.Int).SetNat(new(saferith.Nat).Lsh(new(saferith.Nat).SetUint64(1), params.LPrimePlusEpsilon+1, -1))
	assert.False(t, IsInIntervalLEps(tooBig))
	assert.False(t, IsInIntervalLPrimeEps(tooBig))
	assert.False(t, IsInIntervalLEps(tooBig.Clone().Neg(1)))
	assert.False(t, IsInIntervalLEps(nil))
}

func benchmarkExp(b *testing.B, m *Modulus, size int) {
	r := mrand.New(mrand.NewSource(0))
	e := new(saferith.Nat)
	buf := make([]byte, size)
	for i := 0; i < b.N; i++ {
		x := sample.ModN(r, m.Modulus)
		r.Read(buf)
		e.SetBytes(buf)
		m.Exp(x, e)
	}
}

func BenchmarkExpCRT(b *testing.B) {
	r := mrand.New(mrand.NewSource(0))
	p, q, n := sampleCoprime(r)
	b.Run("crt", func(b *testing.B) { benchmarkExp(b, ModulusFromFactors(p, q), 256) })
	b.Run("plain", func(b *testing.B) { benchmarkExp(b, ModulusFromN(n), 256) })
}
