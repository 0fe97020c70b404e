// Package zk holds the key material shared by the proof tests.
package zk

import (
	"crypto/rand"

	"github.com/taurusgroup/mpc-sign/internal/fixtures"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
)

var (
	ProverPaillierPublic, VerifierPaillierPublic *paillier.PublicKey
	ProverPaillierSecret, VerifierPaillierSecret *paillier.SecretKey
	// Pedersen are the verifier's auxiliary parameters.
	Pedersen *pedersen.Parameters
	// OtherPedersen are parameters over the prover's modulus, used to check that
	// proofs bound to one set of parameters fail against another.
	OtherPedersen *pedersen.Parameters
)

func init() {
	ProverPaillierSecret = paillier.NewSecretKeyFromPrimes(fixtures.PaillierPrimes(0))
	VerifierPaillierSecret = paillier.NewSecretKeyFromPrimes(fixtures.PaillierPrimes(1))

	ProverPaillierPublic = ProverPaillierSecret.PublicKey
	VerifierPaillierPublic = VerifierPaillierSecret.PublicKey

	Pedersen, _ = VerifierPaillierSecret.GeneratePedersen(rand.Reader)
	OtherPedersen, _ = ProverPaillierSecret.GeneratePedersen(rand.Reader)
}
