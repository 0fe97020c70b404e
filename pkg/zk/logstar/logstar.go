package zklogstar

import (
	"crypto/rand"
	"encoding/json"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/jsontools"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/arith"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
)

type Public struct {
	// C = Enc₀(x;ρ)
	// Encryption of x under the prover's key
	C *paillier.Ciphertext

	// X = x⋅G
	X *curve.Point

	// G is the base point of the group used for the discrete log
	G *curve.Point

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// X is the plaintext of C and the discrete log of X.
	X *saferith.Int

	// Rho = ρ is nonce used to encrypt C.
	Rho *saferith.Nat
}

type Commitment struct {
	// S = sˣ tᵘ (mod N)
	S *saferith.Nat
	// A = Enc₀(alpha; r)
	A *paillier.Ciphertext
	// Y = α⋅G
	Y *curve.Point
	// D = sᵃ tᵍ (mod N)
	D *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = α + e x
	Z1 *saferith.Int
	// Z2 = r ρᵉ mod N
	Z2 *saferith.Nat
	// Z3 = γ + e μ
	Z3 *saferith.Int
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
		return false
	}
	if p.Y == nil || p.Y.IsIdentity() {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	return true
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	N := public.Prover.N()
	NModulus := public.Prover.Modulus()

	if public.G == nil {
		public.G = curve.NewBasePoint()
	}

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	commitment := &Commitment{
		A: public.Prover.EncWithNonce(alpha, r),
		Y: curve.ScalarFromInt(alpha).Act(public.G),
		S: public.Aux.Commit(private.X, mu),
		D: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, public, commitment)

	// z1 = α + e x,
	z1 := new(saferith.Int).SetInt(private.X)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)
	// z2 = r ρᵉ mod N,
	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)
	// z3 = γ + e μ,
	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}
}

func (p Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}

	if public.G == nil {
		public.G = curve.NewBasePoint()
	}

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	prover := public.Prover

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.D, p.S) {
		return false
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	{
		// lhs = [z₁]G
		lhs := curve.ScalarFromInt(p.Z1).Act(public.G)

		// rhs = Y + [e]X
		rhs := curve.ScalarFromInt(e).Act(public.X).Add(p.Y)

		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	err = hash.WriteAny(public.Aux, public.Prover, public.C, public.X, public.G,
		commitment.S, commitment.A, commitment.Y, commitment.D)
	e = sample.IntervalScalar(hash.Digest())
	return
}

type proofJSON struct {
	S  string               `json:"sHex"`
	A  *paillier.Ciphertext `json:"a"`
	Y  *curve.Point         `json:"y"`
	D  string               `json:"dHex"`
	Z1 string               `json:"z1Hex"`
	Z2 string               `json:"z2Hex"`
	Z3 string               `json:"z3Hex"`
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	if p == nil || p.Commitment == nil {
		return nil, errors.New("zklogstar: nil proof")
	}
	return json.Marshal(proofJSON{
		S:  jsontools.NatToHex(p.S),
		A:  p.A,
		Y:  p.Y,
		D:  jsontools.NatToHex(p.D),
		Z1: jsontools.IntToHex(p.Z1),
		Z2: jsontools.NatToHex(p.Z2),
		Z3: jsontools.IntToHex(p.Z3),
	})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.A == nil || raw.Y == nil {
		return errors.New("zklogstar: missing commitment")
	}
	var d jsontools.Decoder
	proof := Proof{
		Commitment: &Commitment{
			S: d.Nat("sHex", raw.S),
			A: raw.A,
			Y: raw.Y,
			D: d.Nat("dHex", raw.D),
		},
		Z1: d.Int("z1Hex", raw.Z1),
		Z2: d.Nat("z2Hex", raw.Z2),
		Z3: d.Int("z3Hex", raw.Z3),
	}
	if err := d.Err(); err != nil {
		return errors.New("zklogstar: " + err.Error())
	}
	*p = proof
	return nil
}
