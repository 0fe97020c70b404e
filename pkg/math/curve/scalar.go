package curve

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is an element of ℤ/qℤ.
type Scalar struct {
	value secp256k1.ModNScalar
}

// NewScalar returns the scalar 0.
func NewScalar() *Scalar {
	return new(Scalar)
}

// Clone returns a copy of s.
func (s *Scalar) Clone() *Scalar {
	out := new(Scalar)
	out.value.Set(&s.value)
	return out
}

func (s *Scalar) Add(that *Scalar) *Scalar {
	s.value.Add(&that.value)
	return s
}

func (s *Scalar) Sub(that *Scalar) *Scalar {
	var negated secp256k1.ModNScalar
	negated.NegateVal(&that.value)
	s.value.Add(&negated)
	return s
}

func (s *Scalar) Mul(that *Scalar) *Scalar {
	s.value.Mul(&that.value)
	return s
}

func (s *Scalar) Negate() *Scalar {
	s.value.Negate()
	return s
}

// Invert sets s = s⁻¹. The inverse of 0 is 0.
func (s *Scalar) Invert() *Scalar {
	s.value.InverseNonConst()
	return s
}

func (s *Scalar) Equal(that *Scalar) bool {
	return s.value.Equals(&that.value)
}

func (s *Scalar) IsZero() bool {
	return s.value.IsZero()
}

// IsOverHalfOrder returns true if s > q/2.
func (s *Scalar) IsOverHalfOrder() bool {
	return s.value.IsOverHalfOrder()
}

func (s *Scalar) Set(that *Scalar) *Scalar {
	s.value.Set(&that.value)
	return s
}

func (s *Scalar) SetUInt32(x uint32) *Scalar {
	s.value.SetInt(x)
	return s
}

// SetNat sets s = x mod q.
func (s *Scalar) SetNat(x *saferith.Nat) *Scalar {
	reduced := new(saferith.Nat).Mod(x, orderModulus)
	s.value.SetByteSlice(reduced.Bytes())
	return s
}

// Act returns [s]P.
func (s *Scalar) Act(p *Point) *Point {
	out := new(Point)
	secp256k1.ScalarMultNonConst(&s.value, &p.value, &out.value)
	return out
}

// ActOnBase returns [s]G.
func (s *Scalar) ActOnBase() *Point {
	out := new(Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	return out
}

// Bytes returns the 32 byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.value.Bytes()
	return b[:]
}

// ModNScalar returns a copy of the underlying secp256k1 value.
func (s *Scalar) ModNScalar() secp256k1.ModNScalar {
	return s.value
}

func (s *Scalar) MarshalBinary() ([]byte, error) {
	return s.Bytes(), nil
}

// UnmarshalBinary sets s from a 32 byte big-endian encoding, rejecting values ≥ q.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("curve.Scalar: invalid length %d", len(data))
	}
	var exactData [32]byte
	copy(exactData[:], data)
	if s.value.SetBytes(&exactData) != 0 {
		return errors.New("curve.Scalar: value is not reduced modulo the group order")
	}
	return nil
}

// MarshalJSON encodes s as a hex string.
func (s *Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s.Bytes()))
}

// UnmarshalJSON decodes a hex string of at most 32 bytes, rejecting values ≥ q.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	b, err := decodeHex(str, 32)
	if err != nil {
		return fmt.Errorf("curve.Scalar: %w", err)
	}
	return s.UnmarshalBinary(b)
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (s *Scalar) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Scalar) Domain() string {
	return "secp256k1 Scalar"
}

func (s *Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

// decodeHex decodes a hex string with an optional 0x prefix into a big-endian
// buffer of exactly size bytes.
func decodeHex(str string, size int) ([]byte, error) {
	if len(str) >= 2 && (str[:2] == "0x" || str[:2] == "0X") {
		str = str[2:]
	}
	if len(str)%2 == 1 {
		str = "0" + str
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	if len(b) > size {
		return nil, fmt.Errorf("value has %d bytes, maximum is %d", len(b), size)
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out, nil
}
