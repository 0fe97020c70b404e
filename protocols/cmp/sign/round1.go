package sign

import (
	"context"
	"crypto/rand"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
	zkenc "github.com/taurusgroup/mpc-sign/pkg/zk/enc"
)

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper

	session *Session

	// PublicKey = X = ∑ⱼ λⱼ⋅Xⱼ
	PublicKey *curve.Point

	SecretECDSA    *curve.Scalar
	SecretPaillier *paillier.SecretKey
	Paillier       map[party.ID]*paillier.PublicKey
	Pedersen       map[party.ID]*pedersen.Parameters
	ECDSA          map[party.ID]*curve.Point

	Message []byte
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample kᵢ, γᵢ <- 𝔽,
// - Γᵢ = [γᵢ]⋅G
// - Gᵢ = Encᵢ(γᵢ;νᵢ)
// - Kᵢ = Encᵢ(kᵢ;ρᵢ)
// - broadcast {Kᵢ, Gᵢ} and send zkenc(Kᵢ) to every other party.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.session.advance(r.Number()); err != nil {
		return r, err
	}

	// γᵢ <- 𝔽,
	// Γᵢ = [γᵢ]⋅G
	GammaShare, BigGammaShare := sample.ScalarPointPair(rand.Reader)
	// Gᵢ = Encᵢ(γᵢ;νᵢ)
	G, GNonce := r.Paillier[r.SelfID()].Enc(curve.MakeInt(GammaShare))

	// kᵢ <- 𝔽,
	KShare := sample.Scalar(rand.Reader)
	KShareInt := curve.MakeInt(KShare)
	// Kᵢ = Encᵢ(kᵢ;ρᵢ)
	K, KNonce := r.Paillier[r.SelfID()].Enc(KShareInt)

	broadcast, err := newBroadcast2(K, G)
	if err != nil {
		return r, err
	}
	if err = r.BroadcastMessage(out, broadcast); err != nil {
		return r, err
	}

	otherIDs := r.OtherPartyIDs()
	err = r.Pool.Parallelize(r.session.ctx, len(otherIDs), func(_ context.Context, i int) error {
		j := otherIDs[i]
		proof := zkenc.NewProof(r.session.CloneHashForID(r.SelfID()), zkenc.Public{
			K:      K,
			Prover: r.Paillier[r.SelfID()],
			Aux:    r.Pedersen[j],
		}, zkenc.Private{
			K:   KShareInt,
			Rho: KNonce,
		})
		msg, err := newMessage2(proof)
		if err != nil {
			return err
		}
		return r.SendMessage(out, msg, j)
	})
	if err != nil {
		return r, err
	}

	return &round2{
		round1:        r,
		K:             map[party.ID]*paillier.Ciphertext{r.SelfID(): K},
		G:             map[party.ID]*paillier.Ciphertext{r.SelfID(): G},
		BigGammaShare: map[party.ID]*curve.Point{r.SelfID(): BigGammaShare},
		GammaShare:    curve.MakeInt(GammaShare),
		KShare:        KShare,
		KNonce:        KNonce,
		GNonce:        GNonce,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
