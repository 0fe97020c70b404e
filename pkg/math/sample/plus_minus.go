package sample

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/params"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
)

// signed returns x with |x| < 2ᵇⁱᵗˢ.
// The low bit of the first byte read decides the sign, in constant time.
func signed(rand io.Reader, bits int) *saferith.Int {
	buf := make([]byte, 1+bits/8)
	mustReadBits(rand, buf)
	negative := saferith.Choice(buf[0] & 1)
	return new(saferith.Int).SetBytes(buf[1:]).Neg(negative)
}

// IntervalL returns x ∈ ±2ˡ.
func IntervalL(rand io.Reader) *saferith.Int { return signed(rand, params.L) }

// IntervalLPrime returns x ∈ ±2ˡ'.
func IntervalLPrime(rand io.Reader) *saferith.Int { return signed(rand, params.LPrime) }

// IntervalLEps returns x ∈ ±2ˡ⁺ᵉ.
func IntervalLEps(rand io.Reader) *saferith.Int { return signed(rand, params.LPlusEpsilon) }

// IntervalLPrimeEps returns x ∈ ±2ˡ'⁺ᵉ, the range of the MtA mask β.
func IntervalLPrimeEps(rand io.Reader) *saferith.Int {
	return signed(rand, params.LPrimePlusEpsilon)
}

// IntervalLN returns x ∈ ±2ˡ⋅N, with N the size of a Paillier modulus.
func IntervalLN(rand io.Reader) *saferith.Int {
	return signed(rand, params.L+params.BitsIntModN)
}

// IntervalLEpsN returns x ∈ ±2ˡ⁺ᵉ⋅N, the range of the masks used in the range proofs.
func IntervalLEpsN(rand io.Reader) *saferith.Int {
	return signed(rand, params.LPlusEpsilon+params.BitsIntModN)
}

// IntervalScalar returns x ∈ ±q, the range of a Fiat-Shamir challenge.
func IntervalScalar(rand io.Reader) *saferith.Int { return signed(rand, curve.ScalarBits) }
