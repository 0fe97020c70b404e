package jsontools

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNatHex(t *testing.T) {
	n := new(saferith.Nat).SetUint64(0xdeadbeef)
	s := NatToHex(n)
	got, err := NatFromHex(s)
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), got.Eq(n))

	got, err = NatFromHex("0xabc")
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), got.Eq(new(saferith.Nat).SetUint64(0xabc)))

	_, err = NatFromHex("")
	assert.ErrorIs(t, err, ErrEmptyHex)
	_, err = NatFromHex("zz")
	assert.Error(t, err)
}

func TestIntHex(t *testing.T) {
	x := new(saferith.Int).SetUint64(12345).Neg(1)
	s := IntToHex(x)
	assert.Equal(t, "-", s[:1])
	got, err := IntFromHex(s)
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), got.Eq(x))

	pos := new(saferith.Int).SetUint64(7)
	got, err = IntFromHex(IntToHex(pos))
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), got.Eq(pos))
}

func TestModulusHex(t *testing.T) {
	m := saferith.ModulusFromUint64(35)
	got, err := ModulusFromHex(ModulusToHex(m))
	require.NoError(t, err)
	assert.Equal(t, saferith.Choice(1), got.Nat().Eq(m.Nat()))

	_, err = ModulusFromHex("22")
	assert.Error(t, err, "even modulus")
	_, err = ModulusFromHex("00")
	assert.Error(t, err, "zero modulus")
}

func TestDecoder(t *testing.T) {
	var d Decoder
	a := d.Nat("a", "01")
	b := d.Int("b", "-02")
	require.NoError(t, d.Err())
	assert.Equal(t, saferith.Choice(1), a.Eq(new(saferith.Nat).SetUint64(1)))
	assert.Equal(t, saferith.Choice(1), b.IsNegative())

	_ = d.Nat("c", "")
	_ = d.Nat("d", "zz")
	assert.ErrorIs(t, d.Err(), ErrEmptyHex)
	assert.Contains(t, d.Err().Error(), "c:")
}
