package mta

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
	zkaffg "github.com/taurusgroup/mpc-sign/pkg/zk/affg"
)

// ProveAffG returns the necessary messages for the receiver of the
// h is a hash function initialized with the sender's ID.
// - senderSecretShare = aᵢ
// - senderSecretSharePoint = Aᵢ = aᵢ⋅G
// - receiverEncryptedShare = Encⱼ(bⱼ)
// The elements returned are :
// - Beta = β
// - D = (aᵢ ⊙ Bⱼ) ⊕ encⱼ(-β, s)
// - F = encᵢ(-β, r)
// - Proof = zkaffg proof of correct encryption.
func ProveAffG(h *hash.Hash,
	senderSecretShare *saferith.Int, senderSecretSharePoint *curve.Point, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.SecretKey, receiver *paillier.PublicKey, verifier *pedersen.Parameters) (Beta *saferith.Int, D, F *paillier.Ciphertext, Proof *zkaffg.Proof) {
	D, F, S, R, BetaNeg := newMta(senderSecretShare, receiverEncryptedShare, sender, receiver)
	Proof = zkaffg.NewProof(h, zkaffg.Public{
		Kv:       receiverEncryptedShare,
		Dv:       D,
		Fp:       F,
		Xp:       senderSecretSharePoint,
		Prover:   sender.PublicKey,
		Verifier: receiver,
		Aux:      verifier,
	}, zkaffg.Private{
		X: senderSecretShare,
		Y: BetaNeg,
		S: S,
		R: R,
	})
	Beta = BetaNeg.Neg(1)
	return
}

// VerifyAffG checks the proof sent along D and F by the sender of an MtA exchange.
// h is a hash function initialized with the sender's ID.
func VerifyAffG(h *hash.Hash, proof *zkaffg.Proof,
	senderSecretSharePoint *curve.Point, receiverEncryptedShare, D, F *paillier.Ciphertext,
	sender, receiver *paillier.PublicKey, verifier *pedersen.Parameters) bool {
	if proof == nil {
		return false
	}
	return proof.Verify(h, zkaffg.Public{
		Kv:       receiverEncryptedShare,
		Dv:       D,
		Fp:       F,
		Xp:       senderSecretSharePoint,
		Prover:   sender,
		Verifier: receiver,
		Aux:      verifier,
	})
}

func newMta(senderSecretShare *saferith.Int, receiverEncryptedShare *paillier.Ciphertext,
	sender *paillier.SecretKey, receiver *paillier.PublicKey) (D, F *paillier.Ciphertext, S, R *saferith.Nat, BetaNeg *saferith.Int) {
	BetaNeg = sample.IntervalLPrime(rand.Reader)

	F, R = sender.Enc(BetaNeg) // F = encᵢ(-β, r)

	D, S = receiver.Enc(BetaNeg)
	tmp := receiverEncryptedShare.Clone().Mul(receiver, senderSecretShare) // tmp = aᵢ ⊙ Bⱼ
	D.Add(receiver, tmp)                                                   // D = encⱼ(-β;s) ⊕ (aᵢ ⊙ Bⱼ) = encⱼ(aᵢ•bⱼ-β)

	return
}
