package mta

import (
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/zk"
)

func Test_newMtA(t *testing.T) {
	source := mrand.New(mrand.NewSource(1))
	paillierI := zk.ProverPaillierPublic
	paillierJ := zk.VerifierPaillierPublic
	// each party proves to the other with the other's auxiliary parameters
	pedersenI := zk.OtherPedersen
	pedersenJ := zk.Pedersen

	ski := zk.ProverPaillierSecret
	skj := zk.VerifierPaillierSecret
	aiScalar := sample.Scalar(source)
	ajScalar := sample.Scalar(source)
	ai := curve.MakeInt(aiScalar)
	aj := curve.MakeInt(ajScalar)

	bi := sample.Scalar(source)
	bj := sample.Scalar(source)

	Bi, _ := paillierI.Enc(curve.MakeInt(bi))
	Bj, _ := paillierJ.Enc(curve.MakeInt(bj))

	aibj := aiScalar.Clone().Mul(bj)
	ajbi := ajScalar.Clone().Mul(bi)
	c := aibj.Add(ajbi)

	verifyMtA := func(Di, Dj *paillier.Ciphertext, betaI, betaJ *saferith.Int) {
		alphaI, err := ski.Dec(Dj)
		require.NoError(t, err, "decryption should pass")
		alphaJ, err := skj.Dec(Di)
		require.NoError(t, err, "decryption should pass")

		gammaI := alphaI.Add(alphaI, betaI, -1)
		gammaJ := alphaJ.Add(alphaJ, betaJ, -1)
		gamma := gammaI.Add(gammaI, gammaJ, -1)
		gammaS := curve.ScalarFromInt(gamma)
		assert.True(t, c.Equal(gammaS), "a•b should be equal to α + β")
	}

	Ai, Aj := aiScalar.ActOnBase(), ajScalar.ActOnBase()
	betaI, Di, Fi, proofI := ProveAffG(hash.New(), ai, Ai, Bj, ski, paillierJ, pedersenJ)
	betaJ, Dj, Fj, proofJ := ProveAffG(hash.New(), aj, Aj, Bi, skj, paillierI, pedersenI)

	assert.True(t, VerifyAffG(hash.New(), proofI, Ai, Bj, Di, Fi, paillierI, paillierJ, pedersenJ))
	assert.True(t, VerifyAffG(hash.New(), proofJ, Aj, Bi, Dj, Fj, paillierJ, paillierI, pedersenI))
	assert.False(t, VerifyAffG(hash.New(), proofJ, Aj, Bi, Dj, Fj, paillierJ, paillierI, pedersenJ), "wrong auxiliary parameters")
	assert.False(t, VerifyAffG(hash.New(), nil, Aj, Bi, Dj, Fj, paillierJ, paillierI, pedersenI))
	verifyMtA(Di, Dj, betaI, betaJ)
}
