package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/mpc-sign/pkg/math/arith"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
)

type configMarshal struct {
	ID             party.ID
	Threshold      int
	ECDSA, ElGamal *curve.Scalar
	P, Q           []byte
	Public         []cbor.RawMessage
}

type publicMarshal struct {
	ID             party.ID
	ECDSA, ElGamal *curve.Point
	N, S, T        []byte
}

// MarshalBinary encodes the config with CBOR, for persistence.
func (c *Config) MarshalBinary() ([]byte, error) {
	ps := make([]cbor.RawMessage, 0, len(c.Public))
	for _, id := range c.PartyIDs() {
		p := c.Public[id]
		pm := &publicMarshal{
			ID:      id,
			ECDSA:   p.ECDSA,
			ElGamal: p.ElGamal,
			N:       p.Pedersen.N().Bytes(),
			S:       p.Pedersen.S().Bytes(),
			T:       p.Pedersen.T().Bytes(),
		}
		data, err := cbor.Marshal(pm)
		if err != nil {
			return nil, err
		}
		ps = append(ps, data)
	}
	return cbor.Marshal(&configMarshal{
		ID:        c.ID,
		Threshold: c.Threshold,
		ECDSA:     c.ECDSA,
		ElGamal:   c.ElGamal,
		P:         c.Paillier.P().Bytes(),
		Q:         c.Paillier.Q().Bytes(),
		Public:    ps,
	})
}

// UnmarshalBinary decodes a config produced by MarshalBinary and runs Validate.
func (c *Config) UnmarshalBinary(data []byte) error {
	cm := &configMarshal{
		ECDSA:   curve.NewScalar(),
		ElGamal: curve.NewScalar(),
	}
	if err := cbor.Unmarshal(data, cm); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if len(cm.P) == 0 || len(cm.Q) == 0 {
		return errors.New("config: missing Paillier primes")
	}
	P, Q := new(saferith.Nat).SetBytes(cm.P), new(saferith.Nat).SetBytes(cm.Q)
	if err := paillier.ValidatePrime(P); err != nil {
		return fmt.Errorf("%w: config: prime P: %w", ErrParameter, err)
	}
	if err := paillier.ValidatePrime(Q); err != nil {
		return fmt.Errorf("%w: config: prime Q: %w", ErrParameter, err)
	}
	paillierSecret := paillier.NewSecretKeyFromPrimes(P, Q)

	ps := make(map[party.ID]*Public, len(cm.Public))
	for _, raw := range cm.Public {
		pm := &publicMarshal{
			ECDSA:   curve.NewPoint(),
			ElGamal: curve.NewPoint(),
		}
		if err := cbor.Unmarshal(raw, pm); err != nil {
			return fmt.Errorf("config: party %s: %w", pm.ID, err)
		}
		if _, ok := ps[pm.ID]; ok {
			return fmt.Errorf("config: party %s: duplicate entry", pm.ID)
		}
		if len(pm.N) == 0 {
			return fmt.Errorf("config: party %s: missing modulus", pm.ID)
		}
		n := saferith.ModulusFromBytes(pm.N)
		if err := paillier.ValidateN(n); err != nil {
			return fmt.Errorf("config: party %s: %w", pm.ID, err)
		}
		s, t := new(saferith.Nat).SetBytes(pm.S), new(saferith.Nat).SetBytes(pm.T)
		if err := pedersen.ValidateParameters(n, s, t); err != nil {
			return fmt.Errorf("config: party %s: %w", pm.ID, err)
		}
		ps[pm.ID] = &Public{
			ECDSA:    pm.ECDSA,
			ElGamal:  pm.ElGamal,
			Paillier: paillier.NewPublicKey(n),
			Pedersen: pedersen.New(arith.ModulusFromN(n), s, t),
		}
	}

	decoded := &Config{
		ID:        cm.ID,
		Threshold: cm.Threshold,
		ECDSA:     cm.ECDSA,
		ElGamal:   cm.ElGamal,
		Paillier:  paillierSecret,
		Public:    ps,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*c = *decoded
	return nil
}

type publicJSON struct {
	Paillier *paillier.PublicKey  `json:"paillier"`
	Pedersen *pedersen.Parameters `json:"pedersen"`
	ECDSA    *curve.Point         `json:"ecdsa"`
	ElGamal  *curve.Point         `json:"elgamal"`
}

type configJSON struct {
	ID        party.ID             `json:"id"`
	Threshold int                  `json:"threshold"`
	ECDSA     *curve.Scalar        `json:"ecdsaHex"`
	ElGamal   *curve.Scalar        `json:"elgamalHex"`
	Paillier  *paillier.SecretKey  `json:"paillier"`
	Public    map[party.ID]*Public `json:"public"`
}

// MarshalJSON encodes the public data of a party with hex fields.
func (p *Public) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicJSON{
		Paillier: p.Paillier,
		Pedersen: p.Pedersen,
		ECDSA:    p.ECDSA,
		ElGamal:  p.ElGamal,
	})
}

// UnmarshalJSON decodes the public data of a party and validates it.
func (p *Public) UnmarshalJSON(data []byte) error {
	var raw publicJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := &Public{
		ECDSA:    raw.ECDSA,
		ElGamal:  raw.ElGamal,
		Paillier: raw.Paillier,
		Pedersen: raw.Pedersen,
	}
	if err := decoded.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrParameter, err)
	}
	*p = *decoded
	return nil
}

// MarshalJSON encodes the config as {id, threshold, ecdsaHex, elgamalHex, paillier, public}.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		ID:        c.ID,
		Threshold: c.Threshold,
		ECDSA:     c.ECDSA,
		ElGamal:   c.ElGamal,
		Paillier:  c.Paillier,
		Public:    c.Public,
	})
}

// UnmarshalJSON decodes a config and runs Validate.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := &Config{
		ID:        raw.ID,
		Threshold: raw.Threshold,
		ECDSA:     raw.ECDSA,
		ElGamal:   raw.ElGamal,
		Paillier:  raw.Paillier,
		Public:    raw.Public,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*c = *decoded
	return nil
}
