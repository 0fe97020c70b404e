// Package curve implements the arithmetic of the secp256k1 group used for signing.
//
// Scalar methods modify their receiver and return it, so that operations can be chained.
// Point methods never modify their receiver and always return a new Point.
package curve

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// Name identifies the group in transcripts and logs.
const Name = "secp256k1"

// ScalarBits is the bit length of the group order.
const ScalarBits = 256

var (
	orderBig, _  = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	orderModulus = saferith.ModulusFromBytes(orderBig.Bytes())
)

// Order returns q, the order of the group.
func Order() *saferith.Modulus {
	return orderModulus
}

// MakeInt converts a scalar into a saferith.Int in [0, q).
func MakeInt(s *Scalar) *saferith.Int {
	b := s.value.Bytes()
	return new(saferith.Int).SetBytes(b[:])
}

// ScalarFromInt reduces x modulo q.
func ScalarFromInt(x *saferith.Int) *Scalar {
	return NewScalar().SetNat(x.Mod(orderModulus))
}

// FromHash converts a hash value to a Scalar.
//
// There is some disagreement about how this should be done.
// [NSA] suggests that this is done in the obvious
// manner, but [SECG] truncates the hash to the bit-length of the curve order
// first. We follow [SECG] because that's what OpenSSL does. Additionally,
// OpenSSL right shifts excess bits from the number if the hash is too large
// and we mirror that too.
func FromHash(h []byte) *Scalar {
	orderBits := orderModulus.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(h) > orderBytes {
		h = h[:orderBytes]
	}
	s := new(saferith.Nat).SetBytes(h)
	excess := len(h)*8 - orderBits
	if excess > 0 {
		s.Rsh(s, uint(excess), -1)
	}
	return NewScalar().SetNat(s)
}
