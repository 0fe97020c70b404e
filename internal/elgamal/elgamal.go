package elgamal

import (
	"errors"
	"io"

	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
)

var ErrKeyMismatch = errors.New("elgamal: public key is not secret⋅G")

type (
	PublicKey = curve.Point
	SecretKey = curve.Scalar
)

// NewKeyPair samples a secret x ≠ 0 and returns (x, x⋅G).
func NewKeyPair(rand io.Reader) (*SecretKey, *PublicKey) {
	x := sample.ScalarUnit(rand)
	return x, x.ActOnBase()
}

// ValidateKeyPair checks that public = secret⋅G and that neither is trivial.
func ValidateKeyPair(secret *SecretKey, public *PublicKey) error {
	if secret == nil || public == nil || secret.IsZero() || public.IsIdentity() {
		return ErrKeyMismatch
	}
	if !secret.ActOnBase().Equal(public) {
		return ErrKeyMismatch
	}
	return nil
}
