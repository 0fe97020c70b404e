package ecdsa

import (
	"encoding/json"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
)

var ErrInvalidSignature = errors.New("ecdsa: invalid signature")

// Signature is an ECDSA signature where R is the full nonce point instead of only its x coordinate.
type Signature struct {
	R *curve.Point
	S *curve.Scalar
}

// EmptySignature returns a new signature with allocated fields, ready for unmarshalling.
func EmptySignature() Signature {
	return Signature{R: curve.NewPoint(), S: curve.NewScalar()}
}

// Verify is a custom signature format using curve data.
//
// It checks that R = s⁻¹⋅(m⋅G + r⋅X), where r = R|ₓ and m is the digest reduced to a scalar.
func (sig Signature) Verify(X *curve.Point, hash []byte) bool {
	if sig.R == nil || sig.S == nil || X == nil || sig.R.IsIdentity() || sig.S.IsZero() || X.IsIdentity() {
		return false
	}
	r := sig.R.XScalar()
	if r.IsZero() {
		return false
	}
	m := curve.FromHash(hash)
	sInv := sig.S.Clone().Invert()
	mG := m.ActOnBase()
	rX := r.Act(X)
	R2 := sInv.Act(mG.Add(rX))
	return R2.Equal(sig.R)
}

// SigEthereum returns the 65 byte signature r‖s‖v used by Ethereum,
// where s is normalized to the lower half of the order and v ∈ {0, 1} is the recovery id.
func (sig Signature) SigEthereum() ([]byte, error) {
	if sig.R == nil || sig.S == nil || sig.R.IsIdentity() || sig.S.IsZero() {
		return nil, ErrInvalidSignature
	}
	s := sig.S.Clone()
	v := byte(0)
	if !sig.R.HasEvenY() {
		v = 1
	}
	// s-values greater than secp256k1n/2 are considered invalid
	if s.IsOverHalfOrder() {
		s.Negate()
		v ^= 1
	}
	rs := make([]byte, 0, 65)
	rs = append(rs, sig.R.XScalar().Bytes()...)
	rs = append(rs, s.Bytes()...)
	return append(rs, v), nil
}

// SerializeDER returns the canonical (low s) DER encoding of the signature.
func (sig Signature) SerializeDER() ([]byte, error) {
	if sig.R == nil || sig.S == nil || sig.R.IsIdentity() || sig.S.IsZero() {
		return nil, ErrInvalidSignature
	}
	r := sig.R.XScalar().ModNScalar()
	s := sig.S.ModNScalar()
	return btcecdsa.NewSignature(&r, &s).Serialize(), nil
}

// PublicKey converts X into the btcec representation, for interop with other secp256k1 tooling.
func PublicKey(X *curve.Point) (*btcec.PublicKey, error) {
	return X.PublicKey()
}

type signatureJSON struct {
	R *curve.Point  `json:"R"`
	S *curve.Scalar `json:"S"`
}

// MarshalJSON encodes the signature as {R: {xHex, yHex}, S: hex}.
func (sig Signature) MarshalJSON() ([]byte, error) {
	if sig.R == nil || sig.S == nil {
		return nil, ErrInvalidSignature
	}
	return json.Marshal(signatureJSON{R: sig.R, S: sig.S})
}

// UnmarshalJSON decodes {R, S}, rejecting a missing or zero S.
func (sig *Signature) UnmarshalJSON(data []byte) error {
	raw := signatureJSON{R: curve.NewPoint(), S: curve.NewScalar()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.R.IsIdentity() || raw.S.IsZero() {
		return ErrInvalidSignature
	}
	sig.R, sig.S = raw.R, raw.S
	return nil
}
