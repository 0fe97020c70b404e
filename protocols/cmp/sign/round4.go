package sign

import (
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	zklogstar "github.com/taurusgroup/mpc-sign/pkg/zk/logstar"
)

var _ round.BroadcastRound = (*round4)(nil)

type round4 struct {
	*round3
	// DeltaShares[j] = δⱼ
	DeltaShares map[party.ID]*curve.Scalar

	// BigDeltaShares[j] = Δⱼ = [kⱼ]•Γⱼ
	BigDeltaShares map[party.ID]*curve.Point

	// Gamma = ∑ᵢ Γᵢ
	Gamma *curve.Point

	// ChiShare = χᵢ
	ChiShare *curve.Scalar
}

// StoreBroadcastMessage implements round.BroadcastRound.
//
// - store δⱼ, Δⱼ.
func (r *round4) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.DeltaShare == nil || body.BigDeltaShare == nil || body.BigDeltaShare.IsIdentity() {
		return errNilFields
	}
	r.BigDeltaShares[msg.From] = body.BigDeltaShare
	r.DeltaShares[msg.From] = body.DeltaShare
	return nil
}

// VerifyMessage implements round.Round.
//
// - Verify Π(log*)(ϕ”ᵢⱼ, Δⱼ, Γ).
func (r *round4) VerifyMessage(msg round.Message) error {
	from, to := msg.From, msg.To
	body, ok := msg.Content.(*message4)
	if !ok || body == nil || body.ProofLog == nil {
		return round.ErrInvalidContent
	}
	if r.BigDeltaShares[from] == nil {
		return round.ErrInvalidContent
	}

	zkLogPublic := zklogstar.Public{
		C:      r.K[from],
		X:      r.BigDeltaShares[from],
		G:      r.Gamma,
		Prover: r.Paillier[from],
		Aux:    r.Pedersen[to],
	}
	if !body.ProofLog.Verify(r.session.CloneHashForID(from), zkLogPublic) {
		return ErrRound4ZKLog
	}

	return nil
}

// StoreMessage implements round.Round.
func (round4) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - set δ = ∑ⱼ δⱼ
// - set Δ = ∑ⱼ Δⱼ
// - verify Δ = [δ]G
// - compute σᵢ = rχᵢ + kᵢm.
func (r *round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.session.advance(r.Number()); err != nil {
		return r, err
	}

	// δ = ∑ⱼ δⱼ
	// Δ = ∑ⱼ Δⱼ
	Delta := curve.NewScalar()
	BigDelta := curve.NewPoint()
	for _, j := range r.PartyIDs() {
		Delta.Add(r.DeltaShares[j])
		BigDelta = BigDelta.Add(r.BigDeltaShares[j])
	}

	// Δ == [δ]G
	deltaComputed := Delta.ActOnBase()
	if !deltaComputed.Equal(BigDelta) {
		r.session.conclude()
		return r.AbortRound(ErrRound4BigDelta), nil
	}

	deltaInv := curve.NewScalar().Set(Delta).Invert() // δ⁻¹
	BigR := deltaInv.Act(r.Gamma)                     // R = [δ⁻¹] Γ
	R := BigR.XScalar()                               // r = R|ₓ

	// km = Hash(m)⋅kᵢ
	km := curve.FromHash(r.Message)
	km.Mul(r.KShare)

	// σᵢ = rχᵢ + kᵢm
	SigmaShare := curve.NewScalar().Set(R).Mul(r.ChiShare).Add(km)

	broadcast, err := newBroadcast5(SigmaShare)
	if err != nil {
		return r, err
	}
	if err = r.BroadcastMessage(out, broadcast); err != nil {
		return r, err
	}

	return &round5{
		round4:      r,
		SigmaShares: map[party.ID]*curve.Scalar{r.SelfID(): SigmaShare},
		BigR:        BigR,
	}, nil
}

// MessageContent implements round.Round.
func (round4) MessageContent() round.Content { return &message4{} }

// BroadcastContent implements round.BroadcastRound.
func (round4) BroadcastContent() round.BroadcastContent { return &broadcast4{} }

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }
