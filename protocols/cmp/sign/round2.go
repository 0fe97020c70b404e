package sign

import (
	"context"
	"fmt"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/mta"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	zkenc "github.com/taurusgroup/mpc-sign/pkg/zk/enc"
	zklogstar "github.com/taurusgroup/mpc-sign/pkg/zk/logstar"
)

var _ round.BroadcastRound = (*round2)(nil)

type round2 struct {
	*round1

	// K[j] = Kⱼ = encⱼ(kⱼ)
	K map[party.ID]*paillier.Ciphertext
	// G[j] = Gⱼ = encⱼ(γⱼ)
	G map[party.ID]*paillier.Ciphertext

	// BigGammaShare[j] = Γⱼ = [γⱼ]•G
	BigGammaShare map[party.ID]*curve.Point

	// GammaShare = γᵢ <- 𝔽
	GammaShare *saferith.Int
	// KShare = kᵢ  <- 𝔽
	KShare *curve.Scalar

	// KNonce = ρᵢ <- ℤₙ
	// used to encrypt Kᵢ = Encᵢ(kᵢ)
	KNonce *saferith.Nat
	// GNonce = νᵢ <- ℤₙ
	// used to encrypt Gᵢ = Encᵢ(γᵢ)
	GNonce *saferith.Nat
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Kⱼ, Gⱼ.
func (r *round2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}

	if !r.Paillier[msg.From].ValidateCiphertexts(body.K, body.G) {
		return fmt.Errorf("%w: invalid K or G", round.ErrInvalidContent)
	}

	r.K[msg.From] = body.K
	r.G[msg.From] = body.G

	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zkenc(Kⱼ).
func (r *round2) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}

	if body.ProofEnc == nil || r.K[from] == nil {
		return round.ErrInvalidContent
	}

	if !body.ProofEnc.Verify(r.session.CloneHashForID(from), zkenc.Public{
		K:      r.K[from],
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}) {
		return ErrRound2ZKEnc
	}
	return nil
}

// StoreMessage implements round.Round.
func (round2) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - broadcast Γᵢ
// - run the two MtA instances with every other party, and prove with zklog* that Gᵢ encrypts log Γᵢ.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.session.advance(r.Number()); err != nil {
		return r, err
	}

	broadcast, err := newBroadcast3(r.BigGammaShare[r.SelfID()])
	if err != nil {
		return r, err
	}
	if err = r.BroadcastMessage(out, broadcast); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	type mtaOut struct {
		DeltaBeta *saferith.Int
		ChiBeta   *saferith.Int
	}
	var mtx sync.Mutex
	mtaOuts := make(map[party.ID]mtaOut, len(otherIDs))
	SecretECDSAInt := curve.MakeInt(r.SecretECDSA)
	err = r.Pool.Parallelize(r.session.ctx, len(otherIDs), func(_ context.Context, i int) error {
		j := otherIDs[i]

		DeltaBeta, DeltaD, DeltaF, DeltaProof := mta.ProveAffG(r.session.CloneHashForID(r.SelfID()),
			r.GammaShare, r.BigGammaShare[r.SelfID()], r.K[j],
			r.SecretPaillier, r.Paillier[j], r.Pedersen[j])
		ChiBeta, ChiD, ChiF, ChiProof := mta.ProveAffG(r.session.CloneHashForID(r.SelfID()),
			SecretECDSAInt, r.ECDSA[r.SelfID()], r.K[j],
			r.SecretPaillier, r.Paillier[j], r.Pedersen[j])

		proof := zklogstar.NewProof(r.session.CloneHashForID(r.SelfID()), zklogstar.Public{
			C:      r.G[r.SelfID()],
			X:      r.BigGammaShare[r.SelfID()],
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zklogstar.Private{
			X:   r.GammaShare,
			Rho: r.GNonce,
		})

		msg, err := newMessage3(DeltaD, DeltaF, DeltaProof, ChiD, ChiF, ChiProof, proof)
		if err != nil {
			return err
		}
		if err = r.SendMessage(out, msg, j); err != nil {
			return fmt.Errorf("send to %s: %w", j, err)
		}

		mtx.Lock()
		mtaOuts[j] = mtaOut{
			DeltaBeta: DeltaBeta,
			ChiBeta:   ChiBeta,
		}
		mtx.Unlock()
		return nil
	})
	if err != nil {
		return r, err
	}

	ChiShareBeta := make(map[party.ID]*saferith.Int, len(otherIDs))
	DeltaShareBeta := make(map[party.ID]*saferith.Int, len(otherIDs))
	for _, j := range otherIDs {
		DeltaShareBeta[j] = mtaOuts[j].DeltaBeta
		ChiShareBeta[j] = mtaOuts[j].ChiBeta
	}

	return &round3{
		round2:          r,
		DeltaShareBeta:  DeltaShareBeta,
		ChiShareBeta:    ChiShareBeta,
		DeltaShareAlpha: map[party.ID]*saferith.Int{},
		ChiShareAlpha:   map[party.ID]*saferith.Int{},
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return &message2{} }

// BroadcastContent implements round.BroadcastRound.
func (round2) BroadcastContent() round.BroadcastContent { return &broadcast2{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
