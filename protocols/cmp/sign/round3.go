package sign

import (
	"context"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/mpc-sign/internal/mta"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	zklogstar "github.com/taurusgroup/mpc-sign/pkg/zk/logstar"
)

var _ round.BroadcastRound = (*round3)(nil)

type round3 struct {
	*round2

	// DeltaShareAlpha[j] = αᵢⱼ
	DeltaShareAlpha map[party.ID]*saferith.Int
	// DeltaShareBeta[j] = βᵢⱼ
	DeltaShareBeta map[party.ID]*saferith.Int
	// ChiShareAlpha[j] = α̂ᵢⱼ
	ChiShareAlpha map[party.ID]*saferith.Int
	// ChiShareBeta[j] = β̂ᵢⱼ
	ChiShareBeta map[party.ID]*saferith.Int
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store Γⱼ.
func (r *round3) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.BigGammaShare == nil || body.BigGammaShare.IsIdentity() {
		return errNilFields
	}
	r.BigGammaShare[msg.From] = body.BigGammaShare
	return nil
}

// VerifyMessage implements round.Round.
//
// - verify zkproofs affg (2x) zklog*.
func (r *round3) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := body.validate(); err != nil {
		return err
	}
	if r.BigGammaShare[from] == nil {
		return round.ErrInvalidContent
	}

	if !r.Paillier[to].ValidateCiphertexts(body.DeltaD, body.ChiD) ||
		!r.Paillier[from].ValidateCiphertexts(body.DeltaF, body.ChiF) {
		return errors.New("invalid MtA ciphertexts")
	}

	if !mta.VerifyAffG(r.session.CloneHashForID(from), body.DeltaProof,
		r.BigGammaShare[from], r.K[to], body.DeltaD, body.DeltaF,
		r.Paillier[from], r.Paillier[to], r.Pedersen[to]) {
		return ErrRound3ZKAffGDelta
	}

	if !mta.VerifyAffG(r.session.CloneHashForID(from), body.ChiProof,
		r.ECDSA[from], r.K[to], body.ChiD, body.ChiF,
		r.Paillier[from], r.Paillier[to], r.Pedersen[to]) {
		return ErrRound3ZKAffGChi
	}

	if !body.ProofLog.Verify(r.session.CloneHashForID(from), zklogstar.Public{
		C:      r.G[from],
		X:      r.BigGammaShare[from],
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}) {
		return ErrRound3ZKLog
	}

	return nil
}

// StoreMessage implements round.Round.
//
// - Decrypt MtA shares,
// - save αᵢⱼ, α̂ᵢⱼ.
func (r *round3) StoreMessage(msg round.Message) error {
	from, body := msg.From, msg.Content.(*message3)

	// αᵢⱼ
	DeltaShareAlpha, err := r.SecretPaillier.Dec(body.DeltaD)
	if err != nil {
		return fmt.Errorf("failed to decrypt alpha share for delta: %w", err)
	}
	// α̂ᵢⱼ
	ChiShareAlpha, err := r.SecretPaillier.Dec(body.ChiD)
	if err != nil {
		return fmt.Errorf("failed to decrypt alpha share for chi: %w", err)
	}

	r.DeltaShareAlpha[from] = DeltaShareAlpha
	r.ChiShareAlpha[from] = ChiShareAlpha

	return nil
}

// Finalize implements round.Round
//
// - Γ = ∑ⱼ Γⱼ
// - Δᵢ = [kᵢ]Γ
// - δᵢ = γᵢ kᵢ + ∑ⱼ δᵢⱼ
// - χᵢ = xᵢ kᵢ + ∑ⱼ χᵢⱼ.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.session.advance(r.Number()); err != nil {
		return r, err
	}

	// Γ = ∑ⱼ Γⱼ
	Gamma := curve.NewPoint()
	for _, BigGammaShare := range r.BigGammaShare {
		Gamma = Gamma.Add(BigGammaShare)
	}

	// Δᵢ = [kᵢ]Γ
	KShareInt := curve.MakeInt(r.KShare)
	BigDeltaShare := r.KShare.Act(Gamma)

	// δᵢ = γᵢ kᵢ
	DeltaShare := new(saferith.Int).Mul(r.GammaShare, KShareInt, -1)

	// χᵢ = xᵢ kᵢ
	ChiShare := new(saferith.Int).Mul(curve.MakeInt(r.SecretECDSA), KShareInt, -1)

	for _, j := range r.OtherPartyIDs() {
		// δᵢ += αᵢⱼ + βᵢⱼ
		DeltaShare.Add(DeltaShare, r.DeltaShareAlpha[j], -1)
		DeltaShare.Add(DeltaShare, r.DeltaShareBeta[j], -1)

		// χᵢ += α̂ᵢⱼ +  ̂βᵢⱼ
		ChiShare.Add(ChiShare, r.ChiShareAlpha[j], -1)
		ChiShare.Add(ChiShare, r.ChiShareBeta[j], -1)
	}

	DeltaShareScalar := curve.ScalarFromInt(DeltaShare)
	broadcast, err := newBroadcast4(DeltaShareScalar, BigDeltaShare)
	if err != nil {
		return r, err
	}
	if err = r.BroadcastMessage(out, broadcast); err != nil {
		return r, err
	}

	zkPrivate := zklogstar.Private{
		X:   KShareInt,
		Rho: r.KNonce,
	}
	otherIDs := r.OtherPartyIDs()
	err = r.Pool.Parallelize(r.session.ctx, len(otherIDs), func(_ context.Context, i int) error {
		j := otherIDs[i]
		proofLog := zklogstar.NewProof(r.session.CloneHashForID(r.SelfID()), zklogstar.Public{
			C:      r.K[r.SelfID()],
			X:      BigDeltaShare,
			G:      Gamma,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zkPrivate)
		msg, err := newMessage4(proofLog)
		if err != nil {
			return err
		}
		return r.SendMessage(out, msg, j)
	})
	if err != nil {
		return r, err
	}

	return &round4{
		round3:         r,
		DeltaShares:    map[party.ID]*curve.Scalar{r.SelfID(): DeltaShareScalar},
		BigDeltaShares: map[party.ID]*curve.Point{r.SelfID(): BigDeltaShare},
		Gamma:          Gamma,
		ChiShare:       curve.ScalarFromInt(ChiShare),
	}, nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return &message3{} }

// BroadcastContent implements round.BroadcastRound.
func (round3) BroadcastContent() round.BroadcastContent { return &broadcast3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
