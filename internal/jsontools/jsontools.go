// Package jsontools holds the hex codecs shared by the JSON forms of keys,
// proofs and round messages.
package jsontools

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cronokirby/saferith"
)

var ErrEmptyHex = errors.New("jsontools: empty hex string")

// NatToHex encodes n as lower case hex, without a prefix.
func NatToHex(n *saferith.Nat) string {
	if n == nil {
		return ""
	}
	return hex.EncodeToString(n.Bytes())
}

// NatFromHex decodes a hex string, with an optional 0x prefix.
func NatFromHex(s string) (*saferith.Nat, error) {
	b, err := decode(s)
	if err != nil {
		return nil, err
	}
	return new(saferith.Nat).SetBytes(b), nil
}

// IntToHex encodes x as hex, with a leading '-' when x is negative.
func IntToHex(x *saferith.Int) string {
	if x == nil {
		return ""
	}
	abs := hex.EncodeToString(x.Abs().Bytes())
	if x.IsNegative() == 1 {
		return "-" + abs
	}
	return abs
}

// IntFromHex is the inverse of IntToHex.
func IntFromHex(s string) (*saferith.Int, error) {
	neg := strings.HasPrefix(s, "-")
	b, err := decode(strings.TrimPrefix(s, "-"))
	if err != nil {
		return nil, err
	}
	out := new(saferith.Int).SetBytes(b)
	if neg {
		out.Neg(1)
	}
	return out, nil
}

// ModulusFromHex decodes an odd modulus.
func ModulusFromHex(s string) (*saferith.Modulus, error) {
	b, err := decode(s)
	if err != nil {
		return nil, err
	}
	n := new(saferith.Nat).SetBytes(b)
	if n.TrueLen() == 0 || n.Byte(0)&1 != 1 {
		return nil, errors.New("jsontools: modulus must be odd and non zero")
	}
	return saferith.ModulusFromNat(n), nil
}

// ModulusToHex encodes m as hex.
func ModulusToHex(m *saferith.Modulus) string {
	if m == nil {
		return ""
	}
	return hex.EncodeToString(m.Bytes())
}

func decode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, ErrEmptyHex
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jsontools: %w", err)
	}
	return b, nil
}

// Decoder decodes a sequence of hex fields and keeps the first error.
type Decoder struct {
	err error
}

// Nat decodes s, recording an error mentioning field on failure.
func (d *Decoder) Nat(field, s string) *saferith.Nat {
	if d.err != nil {
		return nil
	}
	n, err := NatFromHex(s)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return n
}

// Int decodes s, recording an error mentioning field on failure.
func (d *Decoder) Int(field, s string) *saferith.Int {
	if d.err != nil {
		return nil
	}
	n, err := IntFromHex(s)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return n
}

// Err returns the first error encountered.
func (d *Decoder) Err() error {
	return d.err
}
