package zklogstar

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/zk"
)

func newPublicPrivate(G *curve.Point) (Public, Private) {
	verifierPedersen := zk.Pedersen
	prover := zk.ProverPaillierPublic

	x := sample.IntervalL(rand.Reader)
	C, rho := prover.Enc(x)
	X := curve.ScalarFromInt(x).Act(G)
	return Public{
			C:      C,
			X:      X,
			G:      G,
			Prover: prover,
			Aux:    verifierPedersen,
		}, Private{
			X:   x,
			Rho: rho,
		}
}

func TestLogStar(t *testing.T) {
	_, G := sample.ScalarPointPair(rand.Reader)
	for _, base := range []*curve.Point{curve.NewBasePoint(), G} {
		public, private := newPublicPrivate(base)

		proof := NewProof(hash.New(), public, private)
		assert.True(t, proof.Verify(hash.New(), public))

		out, err := json.Marshal(proof)
		require.NoError(t, err, "failed to marshal proof")
		proof2 := &Proof{}
		require.NoError(t, json.Unmarshal(out, proof2), "failed to unmarshal proof")
		assert.True(t, proof2.Verify(hash.New(), public))
	}
}

func TestLogStar_DefaultBase(t *testing.T) {
	public, private := newPublicPrivate(curve.NewBasePoint())
	public.G = nil
	proof := NewProof(hash.New(), public, private)
	assert.True(t, proof.Verify(hash.New(), public))
}

func TestLogStar_Rejects(t *testing.T) {
	_, G := sample.ScalarPointPair(rand.Reader)
	public, private := newPublicPrivate(G)
	proof := NewProof(hash.New(), public, private)

	wrongBase := public
	wrongBase.G = curve.NewBasePoint()
	assert.False(t, proof.Verify(hash.New(), wrongBase), "wrong base point")

	wrongPoint := public
	wrongPoint.X = sample.ScalarUnit(rand.Reader).ActOnBase()
	assert.False(t, proof.Verify(hash.New(), wrongPoint), "wrong discrete log")

	wrongAux := public
	wrongAux.Aux = zk.OtherPedersen
	assert.False(t, proof.Verify(hash.New(), wrongAux), "wrong auxiliary parameters")

	bad := *proof
	bad.Commitment = &Commitment{S: proof.S, A: proof.A, Y: curve.NewPoint(), D: proof.D}
	assert.False(t, bad.Verify(hash.New(), public), "identity commitment")
}
