package paillier

import (
	"encoding/json"
	"fmt"

	"github.com/taurusgroup/mpc-sign/internal/jsontools"
)

type publicKeyJSON struct {
	N string `json:"nHex"`
}

type secretKeyJSON struct {
	P string `json:"pHex"`
	Q string `json:"qHex"`
}

// MarshalJSON encodes the public key as {nHex}.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyJSON{N: jsontools.ModulusToHex(pk.n.Modulus)})
}

// UnmarshalJSON decodes a public key and checks its modulus with ValidateN.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var raw publicKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := jsontools.ModulusFromHex(raw.N)
	if err != nil {
		return fmt.Errorf("paillier: n: %w", err)
	}
	if err = ValidateN(n); err != nil {
		return err
	}
	*pk = *NewPublicKey(n)
	return nil
}

// MarshalJSON encodes the secret key as its two factors {pHex, qHex}.
func (sk *SecretKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(secretKeyJSON{
		P: jsontools.NatToHex(sk.p),
		Q: jsontools.NatToHex(sk.q),
	})
}

// UnmarshalJSON decodes both factors and checks them with ValidatePrime.
func (sk *SecretKey) UnmarshalJSON(data []byte) error {
	var raw secretKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := jsontools.NatFromHex(raw.P)
	if err != nil {
		return fmt.Errorf("paillier: p: %w", err)
	}
	q, err := jsontools.NatFromHex(raw.Q)
	if err != nil {
		return fmt.Errorf("paillier: q: %w", err)
	}
	if err = ValidatePrime(p); err != nil {
		return fmt.Errorf("paillier: p: %w", err)
	}
	if err = ValidatePrime(q); err != nil {
		return fmt.Errorf("paillier: q: %w", err)
	}
	*sk = *NewSecretKeyFromPrimes(p, q)
	return nil
}

// MarshalJSON encodes the ciphertext as a hex string.
func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsontools.NatToHex(ct.c))
}

// UnmarshalJSON decodes a hex ciphertext. The value is range checked
// against a key with PublicKey.ValidateCiphertexts.
func (ct *Ciphertext) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c, err := jsontools.NatFromHex(s)
	if err != nil {
		return fmt.Errorf("paillier: ciphertext: %w", err)
	}
	if c.EqZero() == 1 {
		return ErrInvalidCiphertext
	}
	ct.c = c
	return nil
}
