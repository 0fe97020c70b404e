package zkenc

import (
	"crypto/rand"
	"encoding/json"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/jsontools"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/arith"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
)

type Public struct {
	// K = Enc₀(k;ρ)
	K *paillier.Ciphertext

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// K = k ∈ 2ˡ = Dec₀(K)
	// plaintext of K
	K *saferith.Int

	// Rho = ρ
	// nonce of K
	Rho *saferith.Nat
}

type Commitment struct {
	// S = sᵏtᵘ
	S *saferith.Nat
	// A = Enc₀ (α, r)
	A *paillier.Ciphertext
	// C = sᵃtᵍ
	C *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z1 = z₁ = α + e⋅k
	Z1 *saferith.Int
	// Z2 = z₂ = r ⋅ ρᵉ mod N₀
	Z2 *saferith.Nat
	// Z3 = z₃ = γ + e⋅μ
	Z3 *saferith.Int
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
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

	alpha := sample.IntervalLEps(rand.Reader)
	r := sample.UnitModN(rand.Reader, N)
	mu := sample.IntervalLN(rand.Reader)
	gamma := sample.IntervalLEpsN(rand.Reader)

	A := public.Prover.EncWithNonce(alpha, r)

	commitment := &Commitment{
		S: public.Aux.Commit(private.K, mu),
		A: A,
		C: public.Aux.Commit(alpha, gamma),
	}

	e, _ := challenge(hash, public, commitment)

	z1 := new(saferith.Int).SetInt(private.K)
	z1.Mul(e, z1, -1)
	z1.Add(z1, alpha, -1)

	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)

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

	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return false
	}

	e, err := challenge(hash, public, p.Commitment)
	if err != nil {
		return false
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.C, p.S) {
		return false
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ K) ⊕ A
		rhs := public.K.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return false
		}
	}

	return true
}

func challenge(hash *hash.Hash, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	err = hash.WriteAny(public.Aux, public.Prover, public.K,
		commitment.S, commitment.A, commitment.C)
	e = sample.IntervalScalar(hash.Digest())
	return
}

type proofJSON struct {
	S  string               `json:"sHex"`
	A  *paillier.Ciphertext `json:"a"`
	C  string               `json:"cHex"`
	Z1 string               `json:"z1Hex"`
	Z2 string               `json:"z2Hex"`
	Z3 string               `json:"z3Hex"`
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	if p == nil || p.Commitment == nil {
		return nil, errors.New("zkenc: nil proof")
	}
	return json.Marshal(proofJSON{
		S:  jsontools.NatToHex(p.S),
		A:  p.A,
		C:  jsontools.NatToHex(p.C),
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
	if raw.A == nil {
		return errors.New("zkenc: missing commitment A")
	}
	var d jsontools.Decoder
	proof := Proof{
		Commitment: &Commitment{
			S: d.Nat("sHex", raw.S),
			A: raw.A,
			C: d.Nat("cHex", raw.C),
		},
		Z1: d.Int("z1Hex", raw.Z1),
		Z2: d.Nat("z2Hex", raw.Z2),
		Z3: d.Int("z3Hex", raw.Z3),
	}
	if err := d.Err(); err != nil {
		return errors.New("zkenc: " + err.Error())
	}
	*p = proof
	return nil
}
