package curve

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var ErrInvalidPoint = errors.New("curve: invalid point")

// Point is an element of the secp256k1 group.
// The zero value is the identity.
type Point struct {
	value secp256k1.JacobianPoint
}

// NewPoint returns the identity.
func NewPoint() *Point {
	return new(Point)
}

// NewBasePoint returns the generator G.
func NewBasePoint() *Point {
	return NewScalar().SetUInt32(1).ActOnBase()
}

// affine returns an affine copy of p, leaving p untouched so that points can be shared between goroutines.
func (p *Point) affine() secp256k1.JacobianPoint {
	var a secp256k1.JacobianPoint
	a.Set(&p.value)
	a.ToAffine()
	return a
}

func (p *Point) Add(that *Point) *Point {
	out := new(Point)
	secp256k1.AddNonConst(&p.value, &that.value, &out.value)
	return out
}

func (p *Point) Sub(that *Point) *Point {
	return p.Add(that.Negate())
}

func (p *Point) Negate() *Point {
	out := new(Point)
	if p.IsIdentity() {
		return out
	}
	out.value = p.affine()
	out.value.Y.Negate(1).Normalize()
	return out
}

func (p *Point) Set(that *Point) *Point {
	p.value.Set(&that.value)
	return p
}

// Clone returns a copy of p.
func (p *Point) Clone() *Point {
	return new(Point).Set(p)
}

func (p *Point) IsIdentity() bool {
	var z secp256k1.FieldVal
	if z.Set(&p.value.Z).Normalize().IsZero() {
		return true
	}
	a := p.affine()
	return a.X.IsZero() && a.Y.IsZero()
}

func (p *Point) Equal(that *Point) bool {
	pIdentity, thatIdentity := p.IsIdentity(), that.IsIdentity()
	if pIdentity || thatIdentity {
		return pIdentity == thatIdentity
	}
	a, b := p.affine(), that.affine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// XScalar returns the x coordinate of p reduced modulo q.
func (p *Point) XScalar() *Scalar {
	out := NewScalar()
	a := p.affine()
	out.value.SetByteSlice(a.X.Bytes()[:])
	return out
}

// HasEvenY returns true if the affine y coordinate of p is even.
func (p *Point) HasEvenY() bool {
	a := p.affine()
	return a.Y.IsOddBit() == 0
}

// PublicKey converts p to a secp256k1 public key.
func (p *Point) PublicKey() (*secp256k1.PublicKey, error) {
	if p.IsIdentity() {
		return nil, ErrInvalidPoint
	}
	a := p.affine()
	return secp256k1.NewPublicKey(&a.X, &a.Y), nil
}

// PointFromPublicKey converts a secp256k1 public key to a Point.
func PointFromPublicKey(pk *secp256k1.PublicKey) *Point {
	out := new(Point)
	pk.AsJacobian(&out.value)
	return out
}

// MarshalBinary returns the 33 byte compressed encoding of p.
func (p *Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return nil, ErrInvalidPoint
	}
	return p.compressed(), nil
}

func (p *Point) compressed() []byte {
	out := make([]byte, 33)
	if p.IsIdentity() {
		return out
	}
	a := p.affine()
	// Doing it this way is compatible with Bitcoin
	out[0] = byte(a.Y.IsOddBit()) + 2
	a.X.PutBytesUnchecked(out[1:])
	return out
}

// UnmarshalBinary decodes a compressed point, rejecting anything not on the curve.
func (p *Point) UnmarshalBinary(data []byte) error {
	if len(data) != 33 {
		return fmt.Errorf("curve.Point: invalid length %d", len(data))
	}
	if data[0] != 2 && data[0] != 3 {
		return fmt.Errorf("curve.Point: invalid prefix %d", data[0])
	}
	var value secp256k1.JacobianPoint
	value.Z.SetInt(1)
	if value.X.SetByteSlice(data[1:]) {
		return fmt.Errorf("curve.Point: x coordinate out of range: %w", ErrInvalidPoint)
	}
	if !secp256k1.DecompressY(&value.X, data[0] == 3, &value.Y) {
		return fmt.Errorf("curve.Point: x coordinate not on curve: %w", ErrInvalidPoint)
	}
	value.Y.Normalize()
	p.value = value
	return nil
}

type affinePointJSON struct {
	XHex string `json:"xHex"`
	YHex string `json:"yHex"`
}

// MarshalJSON encodes p as its affine coordinates {xHex, yHex}.
func (p *Point) MarshalJSON() ([]byte, error) {
	if p.IsIdentity() {
		return nil, ErrInvalidPoint
	}
	a := p.affine()
	return json.Marshal(affinePointJSON{
		XHex: hex.EncodeToString(a.X.Bytes()[:]),
		YHex: hex.EncodeToString(a.Y.Bytes()[:]),
	})
}

// UnmarshalJSON decodes {xHex, yHex}, rejecting coordinates that are out of range or not on the curve.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw affinePointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	xb, err := decodeHex(raw.XHex, 32)
	if err != nil {
		return fmt.Errorf("curve.Point: xHex: %w", err)
	}
	yb, err := decodeHex(raw.YHex, 32)
	if err != nil {
		return fmt.Errorf("curve.Point: yHex: %w", err)
	}
	var x, y secp256k1.FieldVal
	if x.SetByteSlice(xb) || y.SetByteSlice(yb) {
		return fmt.Errorf("curve.Point: coordinate out of range: %w", ErrInvalidPoint)
	}
	pk := secp256k1.NewPublicKey(&x, &y)
	if !pk.IsOnCurve() {
		return fmt.Errorf("curve.Point: not on curve: %w", ErrInvalidPoint)
	}
	pk.AsJacobian(&p.value)
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Point) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(p.compressed())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Point) Domain() string {
	return "secp256k1 Point"
}

func (p *Point) String() string {
	return hex.EncodeToString(p.compressed())
}
