package sign

import (
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/ecdsa"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

var _ round.BroadcastRound = (*round5)(nil)

// round5 collects the signature shares σⱼ and outputs (R, σ).
type round5 struct {
	*round4

	// SigmaShares[j] = σⱼ = m⋅kⱼ + r⋅χⱼ
	SigmaShares map[party.ID]*curve.Scalar

	// BigR = [δ⁻¹]Γ, the nonce point shared by all parties
	BigR *curve.Point
}

// StoreBroadcastMessage implements round.BroadcastRound.
func (r *round5) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*broadcast5)
	switch {
	case !ok || body == nil || body.SigmaShare == nil:
		return round.ErrInvalidContent
	case body.SigmaShare.IsZero():
		return ErrRound5SigmaZero
	}
	r.SigmaShares[msg.From] = body.SigmaShare
	return nil
}

// VerifyMessage implements round.Round.
func (round5) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round5) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// The signature (R, ∑ⱼ σⱼ) is checked against the group key before it is output,
// a share which does not fit the others makes the execution abort.
func (r *round5) Finalize(chan<- *round.Message) (round.Session, error) {
	if err := r.session.advance(r.Number()); err != nil {
		return r, err
	}

	s := curve.NewScalar()
	for _, j := range r.PartyIDs() {
		s.Add(r.SigmaShares[j])
	}
	signature := &ecdsa.Signature{R: r.BigR, S: s}

	if !signature.Verify(r.PublicKey, r.Message) {
		return r.AbortRound(ErrRound5SignatureFail), nil
	}
	return r.ResultRound(signature), nil
}

// MessageContent implements round.Round.
func (round5) MessageContent() round.Content { return nil }

// BroadcastContent implements round.BroadcastRound.
func (round5) BroadcastContent() round.BroadcastContent { return &broadcast5{} }

// Number implements round.Round.
func (round5) Number() round.Number { return 5 }
