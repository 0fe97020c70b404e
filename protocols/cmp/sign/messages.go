package sign

import (
	"encoding/json"
	"errors"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	zkaffg "github.com/taurusgroup/mpc-sign/pkg/zk/affg"
	zkenc "github.com/taurusgroup/mpc-sign/pkg/zk/enc"
	zklogstar "github.com/taurusgroup/mpc-sign/pkg/zk/logstar"
)

var errNilFields = errors.New("sign: message contains empty fields")

// broadcast2 is sent by round1 and consumed by round2.
type broadcast2 struct {
	// K = Kᵢ = Encᵢ(kᵢ)
	K *paillier.Ciphertext
	// G = Gᵢ = Encᵢ(γᵢ)
	G *paillier.Ciphertext
}

func newBroadcast2(K, G *paillier.Ciphertext) (*broadcast2, error) {
	if K == nil || G == nil {
		return nil, errNilFields
	}
	return &broadcast2{K: K, G: G}, nil
}

type message2 struct {
	ProofEnc *zkenc.Proof
}

func newMessage2(proof *zkenc.Proof) (*message2, error) {
	if proof == nil {
		return nil, errNilFields
	}
	return &message2{ProofEnc: proof}, nil
}

type broadcast3 struct {
	// BigGammaShare = Γⱼ
	BigGammaShare *curve.Point
}

func newBroadcast3(bigGammaShare *curve.Point) (*broadcast3, error) {
	if bigGammaShare == nil || bigGammaShare.IsIdentity() {
		return nil, errNilFields
	}
	return &broadcast3{BigGammaShare: bigGammaShare}, nil
}

type message3 struct {
	DeltaD     *paillier.Ciphertext // DeltaD = Dᵢⱼ
	DeltaF     *paillier.Ciphertext // DeltaF = Fᵢⱼ
	DeltaProof *zkaffg.Proof
	ChiD       *paillier.Ciphertext // ChiD = D̂ᵢⱼ
	ChiF       *paillier.Ciphertext // ChiF = F̂ᵢⱼ
	ChiProof   *zkaffg.Proof
	ProofLog   *zklogstar.Proof
}

func newMessage3(deltaD, deltaF *paillier.Ciphertext, deltaProof *zkaffg.Proof,
	chiD, chiF *paillier.Ciphertext, chiProof *zkaffg.Proof, proofLog *zklogstar.Proof) (*message3, error) {
	m := &message3{
		DeltaD:     deltaD,
		DeltaF:     deltaF,
		DeltaProof: deltaProof,
		ChiD:       chiD,
		ChiF:       chiF,
		ChiProof:   chiProof,
		ProofLog:   proofLog,
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *message3) validate() error {
	if m.DeltaD == nil || m.DeltaF == nil || m.DeltaProof == nil ||
		m.ChiD == nil || m.ChiF == nil || m.ChiProof == nil || m.ProofLog == nil {
		return errNilFields
	}
	return nil
}

type broadcast4 struct {
	// DeltaShare = δⱼ
	DeltaShare *curve.Scalar
	// BigDeltaShare = Δⱼ = [kⱼ]•Γ
	BigDeltaShare *curve.Point
}

func newBroadcast4(deltaShare *curve.Scalar, bigDeltaShare *curve.Point) (*broadcast4, error) {
	if deltaShare == nil || bigDeltaShare == nil || bigDeltaShare.IsIdentity() {
		return nil, errNilFields
	}
	return &broadcast4{DeltaShare: deltaShare, BigDeltaShare: bigDeltaShare}, nil
}

type message4 struct {
	ProofLog *zklogstar.Proof
}

func newMessage4(proof *zklogstar.Proof) (*message4, error) {
	if proof == nil {
		return nil, errNilFields
	}
	return &message4{ProofLog: proof}, nil
}

type broadcast5 struct {
	// SigmaShare = σᵢ
	SigmaShare *curve.Scalar
}

func newBroadcast5(sigmaShare *curve.Scalar) (*broadcast5, error) {
	if sigmaShare == nil {
		return nil, errNilFields
	}
	return &broadcast5{SigmaShare: sigmaShare}, nil
}

// RoundNumber implements round.Content.
func (broadcast2) RoundNumber() round.Number { return 2 }

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// RoundNumber implements round.Content.
func (broadcast3) RoundNumber() round.Number { return 3 }

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// RoundNumber implements round.Content.
func (broadcast4) RoundNumber() round.Number { return 4 }

// RoundNumber implements round.Content.
func (message4) RoundNumber() round.Number { return 4 }

// RoundNumber implements round.Content.
func (broadcast5) RoundNumber() round.Number { return 5 }

type broadcast2JSON struct {
	K *paillier.Ciphertext `json:"K"`
	G *paillier.Ciphertext `json:"G"`
}

func (m *broadcast2) MarshalJSON() ([]byte, error) {
	return json.Marshal(broadcast2JSON{K: m.K, G: m.G})
}

func (m *broadcast2) UnmarshalJSON(data []byte) error {
	var raw broadcast2JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newBroadcast2(raw.K, raw.G)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

type message2JSON struct {
	ProofEnc *zkenc.Proof `json:"proofEnc"`
}

func (m *message2) MarshalJSON() ([]byte, error) {
	return json.Marshal(message2JSON{ProofEnc: m.ProofEnc})
}

func (m *message2) UnmarshalJSON(data []byte) error {
	var raw message2JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newMessage2(raw.ProofEnc)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

type broadcast3JSON struct {
	BigGammaShare *curve.Point `json:"Gamma"`
}

func (m *broadcast3) MarshalJSON() ([]byte, error) {
	return json.Marshal(broadcast3JSON{BigGammaShare: m.BigGammaShare})
}

func (m *broadcast3) UnmarshalJSON(data []byte) error {
	var raw broadcast3JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newBroadcast3(raw.BigGammaShare)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

type message3JSON struct {
	DeltaD     *paillier.Ciphertext `json:"DeltaD"`
	DeltaF     *paillier.Ciphertext `json:"DeltaF"`
	DeltaProof *zkaffg.Proof        `json:"DeltaProof"`
	ChiD       *paillier.Ciphertext `json:"ChiD"`
	ChiF       *paillier.Ciphertext `json:"ChiF"`
	ChiProof   *zkaffg.Proof        `json:"ChiProof"`
	ProofLog   *zklogstar.Proof     `json:"ProofLog"`
}

func (m *message3) MarshalJSON() ([]byte, error) {
	return json.Marshal(message3JSON(*m))
}

func (m *message3) UnmarshalJSON(data []byte) error {
	var raw message3JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := message3(raw)
	if err := decoded.validate(); err != nil {
		return err
	}
	*m = decoded
	return nil
}

type broadcast4JSON struct {
	DeltaShare    *curve.Scalar `json:"DeltaShare"`
	BigDeltaShare *curve.Point  `json:"BigDeltaShare"`
}

func (m *broadcast4) MarshalJSON() ([]byte, error) {
	return json.Marshal(broadcast4JSON{DeltaShare: m.DeltaShare, BigDeltaShare: m.BigDeltaShare})
}

func (m *broadcast4) UnmarshalJSON(data []byte) error {
	var raw broadcast4JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newBroadcast4(raw.DeltaShare, raw.BigDeltaShare)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

type message4JSON struct {
	ProofLog *zklogstar.Proof `json:"ProofLog"`
}

func (m *message4) MarshalJSON() ([]byte, error) {
	return json.Marshal(message4JSON{ProofLog: m.ProofLog})
}

func (m *message4) UnmarshalJSON(data []byte) error {
	var raw message4JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newMessage4(raw.ProofLog)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

type broadcast5JSON struct {
	SigmaShare *curve.Scalar `json:"SigmaShare"`
}

func (m *broadcast5) MarshalJSON() ([]byte, error) {
	return json.Marshal(broadcast5JSON{SigmaShare: m.SigmaShare})
}

func (m *broadcast5) UnmarshalJSON(data []byte) error {
	var raw broadcast5JSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := newBroadcast5(raw.SigmaShare)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
