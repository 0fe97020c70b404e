package pedersen

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/jsontools"
	"github.com/taurusgroup/mpc-sign/internal/params"
	"github.com/taurusgroup/mpc-sign/pkg/math/arith"
)

type Error string

const (
	ErrNilFields    Error = "contains nil field"
	ErrSEqualT      Error = "S cannot be equal to T"
	ErrNotValidModN Error = "S and T must be in [1,…,N-1] and coprime to N"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Parameters are the auxiliary commitment parameters (N, s, t) a party publishes
// so that others can prove statements to it.
type Parameters struct {
	n    *arith.Modulus
	s, t *saferith.Nat
}

// New returns a new set of Pedersen parameters.
// Assumes ValidateParameters(n, s, t) returns nil.
func New(n *arith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{
		s: s,
		t: t,
		n: n,
	}
}

// ValidateParameters check n, s and t, and returns an error if any of the following is true:
// - n, s, or t is nil.
// - s, t are not in [1, …,n-1].
// - s, t are not coprime to N.
// - s = t.
func ValidateParameters(n *saferith.Modulus, s, t *saferith.Nat) error {
	if n == nil || s == nil || t == nil {
		return ErrNilFields
	}
	// s, t ∈ ℤₙˣ
	if !arith.IsValidNatModN(n, s, t) {
		return ErrNotValidModN
	}
	// s ≡ t
	if _, eq, _ := s.Cmp(t); eq == 1 {
		return ErrSEqualT
	}
	return nil
}

// Validate runs ValidateParameters on p.
func (p *Parameters) Validate() error {
	if p == nil || p.n == nil {
		return ErrNilFields
	}
	return ValidateParameters(p.n.Modulus, p.s, p.t)
}

// N = p•q, p ≡ q ≡ 3 mod 4.
func (p Parameters) N() *saferith.Modulus { return p.n.Modulus }

// NArith returns the modulus N, with a cached factorization if the owner created p.
func (p Parameters) NArith() *arith.Modulus { return p.n }

// S = r² mod N.
func (p Parameters) S() *saferith.Nat { return p.s }

// T = Sˡ mod N.
func (p Parameters) T() *saferith.Nat { return p.t }

// Equal returns true if both parameter sets hold the same (N, s, t).
func (p *Parameters) Equal(other *Parameters) bool {
	if p == nil || other == nil {
		return false
	}
	_, eqN, _ := p.n.Cmp(other.n.Modulus)
	return eqN&p.s.Eq(other.s)&p.t.Eq(other.t) == 1
}

// Commit computes sˣ tʸ (mod N)
//
// x and y are taken as saferith.Int, because we want to keep these values in secret,
// in general. The commitment produced, on the other hand, hides their values,
// and can be safely shared.
func (p Parameters) Commit(x, y *saferith.Int) *saferith.Nat {
	sx := p.n.ExpI(p.s, x)
	ty := p.n.ExpI(p.t, y)

	result := sx.ModMul(sx, ty, p.n.Modulus)

	return result
}

// Verify returns true if sᵃ tᵇ ≡ S Tᵉ (mod N).
func (p Parameters) Verify(a, b, e *saferith.Int, S, T *saferith.Nat) bool {
	if a == nil || b == nil || S == nil || T == nil || e == nil {
		return false
	}
	nMod := p.n.Modulus
	if !arith.IsValidNatModN(nMod, S, T) {
		return false
	}

	sa := p.n.ExpI(p.s, a)         // sᵃ (mod N)
	tb := p.n.ExpI(p.t, b)         // tᵇ (mod N)
	lhs := sa.ModMul(sa, tb, nMod) // lhs = sᵃ⋅tᵇ (mod N)

	te := p.n.ExpI(T, e)          // Tᵉ (mod N)
	rhs := te.ModMul(te, S, nMod) // rhs = S⋅Tᵉ (mod N)
	return lhs.Eq(rhs) == 1
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)
	buf := make([]byte, params.BytesIntModN)

	// write N, S, T
	for _, i := range []*saferith.Nat{p.n.Nat(), p.s, p.t} {
		i.FillBytes(buf)
		n, err := w.Write(buf)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (Parameters) Domain() string {
	return "Pedersen Parameters"
}

type parametersJSON struct {
	N string `json:"nHex"`
	S string `json:"sHex"`
	T string `json:"tHex"`
}

// MarshalJSON encodes the parameters as {nHex, sHex, tHex}.
func (p *Parameters) MarshalJSON() ([]byte, error) {
	if p == nil || p.n == nil {
		return nil, ErrNilFields
	}
	return json.Marshal(parametersJSON{
		N: jsontools.ModulusToHex(p.n.Modulus),
		S: jsontools.NatToHex(p.s),
		T: jsontools.NatToHex(p.t),
	})
}

// UnmarshalJSON decodes and validates the parameters.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var raw parametersJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := jsontools.ModulusFromHex(raw.N)
	if err != nil {
		return fmt.Errorf("pedersen: n: %w", err)
	}
	s, err := jsontools.NatFromHex(raw.S)
	if err != nil {
		return fmt.Errorf("pedersen: s: %w", err)
	}
	t, err := jsontools.NatFromHex(raw.T)
	if err != nil {
		return fmt.Errorf("pedersen: t: %w", err)
	}
	if err = ValidateParameters(n, s, t); err != nil {
		return err
	}
	*p = Parameters{n: arith.ModulusFromN(n), s: s, t: t}
	return nil
}
