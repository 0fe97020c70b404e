package curve

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalar(t *testing.T) *Scalar {
	buf := make([]byte, 48)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
}

func TestScalarArithmetic(t *testing.T) {
	a, b := randomScalar(t), randomScalar(t)

	sum := a.Clone().Add(b)
	assert.True(t, sum.Sub(b).Equal(a))

	inv := a.Clone().Invert()
	assert.True(t, inv.Mul(a).Equal(NewScalar().SetUInt32(1)))

	neg := a.Clone().Negate()
	assert.True(t, neg.Add(a).IsZero())
}

func TestPointArithmetic(t *testing.T) {
	a, b := randomScalar(t), randomScalar(t)
	A, B := a.ActOnBase(), b.ActOnBase()

	// [a+b]G = A + B
	assert.True(t, a.Clone().Add(b).ActOnBase().Equal(A.Add(B)))
	// [b]A = [a]B
	assert.True(t, b.Act(A).Equal(a.Act(B)))
	// A - A = 0
	assert.True(t, A.Sub(A).IsIdentity())
	assert.True(t, A.Add(NewPoint()).Equal(A))
	assert.False(t, A.IsIdentity())
	assert.True(t, NewPoint().Equal(NewPoint()))
	assert.False(t, NewPoint().Equal(A))
	assert.True(t, NewBasePoint().Equal(NewScalar().SetUInt32(1).ActOnBase()))
}

func TestPointBinary(t *testing.T) {
	P := randomScalar(t).ActOnBase()
	data, err := P.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 33)

	Q := NewPoint()
	require.NoError(t, Q.UnmarshalBinary(data))
	assert.True(t, P.Equal(Q))

	_, err = NewPoint().MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidPoint)

	data[0] = 5
	assert.Error(t, NewPoint().UnmarshalBinary(data))
}

func TestJSON(t *testing.T) {
	s := randomScalar(t)
	P := s.ActOnBase()

	type wrapper struct {
		S *Scalar `json:"s"`
		P *Point  `json:"p"`
	}
	data, err := json.Marshal(wrapper{S: s, P: P})
	require.NoError(t, err)

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, s.Equal(decoded.S))
	assert.True(t, P.Equal(decoded.P))
}

func TestJSONRejectsInvalid(t *testing.T) {
	// (1, 1) is not on the curve
	assert.Error(t, json.Unmarshal([]byte(`{"xHex":"01","yHex":"01"}`), NewPoint()))
	// coordinate larger than the field
	assert.Error(t, json.Unmarshal([]byte(`{"xHex":"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff","yHex":"01"}`), NewPoint()))
	assert.Error(t, json.Unmarshal([]byte(`{"xHex":"zz","yHex":"01"}`), NewPoint()))

	// q itself is out of range
	q := `"` + orderBig.Text(16) + `"`
	assert.Error(t, json.Unmarshal([]byte(q), NewScalar()))
	qMinus1 := `"` + new(big.Int).Sub(orderBig, big.NewInt(1)).Text(16) + `"`
	assert.NoError(t, json.Unmarshal([]byte(qMinus1), NewScalar()))
}

func TestCBOR(t *testing.T) {
	s := randomScalar(t)
	P := s.ActOnBase()
	data, err := cbor.Marshal(P)
	require.NoError(t, err)
	Q := NewPoint()
	require.NoError(t, cbor.Unmarshal(data, Q))
	assert.True(t, P.Equal(Q))
}

func TestFromHash(t *testing.T) {
	h := make([]byte, 64)
	for i := range h {
		h[i] = 0xff
	}
	s := FromHash(h)
	// only the first 32 bytes are used, then reduced mod q
	expected := new(big.Int).SetBytes(h[:32])
	expected.Mod(expected, orderBig)
	assert.Equal(t, expected.Bytes(), new(big.Int).SetBytes(s.Bytes()).Bytes())
}

func TestXScalar(t *testing.T) {
	P := NewBasePoint()
	gx, _ := new(big.Int).SetString("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798", 16)
	assert.Equal(t, gx.Bytes(), new(big.Int).SetBytes(P.XScalar().Bytes()).Bytes())
}

func TestPublicKeyConversion(t *testing.T) {
	P := randomScalar(t).ActOnBase()
	pk, err := P.PublicKey()
	require.NoError(t, err)
	assert.True(t, PointFromPublicKey(pk).Equal(P))
}
