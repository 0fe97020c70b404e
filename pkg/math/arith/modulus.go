package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus is an RSA style modulus n.
// Paillier secret keys and Pedersen parameters created by their owner know n = p⋅q,
// in which case exponentiation is split into one exponentiation mod p and one mod q.
type Modulus struct {
	*saferith.Modulus
	crt *crtFactors
}

// crtFactors holds what is needed to recombine residues mod p and mod q.
type crtFactors struct {
	p, q *saferith.Modulus
	// pNat = p as a Nat, so it can multiply mod n
	pNat *saferith.Nat
	// pInvQ = p⁻¹ (mod q)
	pInvQ *saferith.Nat
}

// ModulusFromN wraps n without its factorization. n is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{Modulus: n}
}

// ModulusFromFactors returns n = p⋅q together with the CRT values derived from p and q.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	qMod := saferith.ModulusFromNat(q)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1)),
		crt: &crtFactors{
			p:     saferith.ModulusFromNat(p),
			q:     qMod,
			pNat:  new(saferith.Nat).SetNat(p),
			pInvQ: new(saferith.Nat).ModInverse(p, qMod),
		},
	}
}

// Exp returns xᵉ (mod n).
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	xp := new(saferith.Nat).Exp(x, e, n.crt.p)
	xq := new(saferith.Nat).Exp(x, e, n.crt.q)
	return n.recombine(xp, xq)
}

// ExpI returns xᵉ (mod n) for a signed exponent.
func (n *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).ExpI(x, e, n.Modulus)
	}
	y := n.Exp(x, e.Abs())
	y.CondAssign(e.IsNegative(), new(saferith.Nat).ModInverse(y, n.Modulus))
	return y
}

// recombine returns the unique y (mod n) with y ≡ xp (mod p) and y ≡ xq (mod q):
//
//	y = xp + p⋅[p⁻¹ (mod q)]⋅(xq - xp) (mod n).
func (n *Modulus) recombine(xp, xq *saferith.Nat) *saferith.Nat {
	y := new(saferith.Nat).ModSub(xq, xp, n.Modulus)
	y.ModMul(y, n.crt.pInvQ, n.Modulus)
	y.ModMul(y, n.crt.pNat, n.Modulus)
	return y.ModAdd(y, xp, n.Modulus)
}
