package zkenc

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/zk"
)

func newPublicPrivate() (Public, Private) {
	prover := zk.ProverPaillierPublic
	k := sample.IntervalL(rand.Reader)
	K, rho := prover.Enc(k)
	return Public{
			K:      K,
			Prover: prover,
			Aux:    zk.Pedersen,
		}, Private{
			K:   k,
			Rho: rho,
		}
}

func TestEnc(t *testing.T) {
	public, private := newPublicPrivate()

	proof := NewProof(hash.New(), public, private)
	assert.True(t, proof.Verify(hash.New(), public))

	out, err := json.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, json.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.True(t, proof2.Verify(hash.New(), public))

	out2, err := json.Marshal(proof2)
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(out2))
}

func TestEnc_WrongPedersen(t *testing.T) {
	public, private := newPublicPrivate()
	proof := NewProof(hash.New(), public, private)

	public.Aux = zk.OtherPedersen
	assert.False(t, proof.Verify(hash.New(), public), "proof must be bound to the verifier's parameters")
}

func TestEnc_Transcript(t *testing.T) {
	public, private := newPublicPrivate()

	h := hash.New()
	require.NoError(t, h.WriteAny([]byte("session 1")))
	proof := NewProof(h.Clone(), public, private)
	assert.True(t, proof.Verify(h.Clone(), public))

	replay := hash.New()
	require.NoError(t, replay.WriteAny([]byte("session 2")))
	assert.False(t, proof.Verify(replay, public), "proof must not verify under another transcript")
}

func TestEnc_Tampered(t *testing.T) {
	public, private := newPublicPrivate()
	proof := NewProof(hash.New(), public, private)

	other, _ := newPublicPrivate()
	assert.False(t, proof.Verify(hash.New(), other), "proof for another ciphertext")

	bad := *proof
	bad.Z1 = new(saferith.Int).Add(proof.Z1, new(saferith.Int).SetUint64(1), -1)
	assert.False(t, bad.Verify(hash.New(), public))

	bad = *proof
	bad.Z2 = nil
	assert.False(t, bad.Verify(hash.New(), public))

	var empty Proof
	assert.False(t, empty.Verify(hash.New(), public))
}

func TestEnc_RejectsInvalidJSON(t *testing.T) {
	assert.Error(t, json.Unmarshal([]byte(`{"sHex":"01"}`), &Proof{}))
	assert.Error(t, json.Unmarshal([]byte(`{"sHex":"zz","a":"01","cHex":"01","z1Hex":"01","z2Hex":"01","z3Hex":"01"}`), &Proof{}))
}
