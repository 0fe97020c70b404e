package cmp

import (
	"context"
	"encoding/json"
	"errors"
	mrand "math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/internal/test"
	"github.com/taurusgroup/mpc-sign/pkg/ecdsa"
	"github.com/taurusgroup/mpc-sign/pkg/math/sample"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/sign"
)

func runSign(t *testing.T, configs map[party.ID]*Config, signers party.IDSlice, digest, sessionID []byte, pl *pool.Pool) map[party.ID]*ecdsa.Signature {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	network := test.NewNetwork(signers)
	managers := make(map[party.ID]*protocol.Manager, len(signers))
	for _, id := range signers {
		m, err := Sign(ctx, configs[id], signers, digest, sessionID, pl,
			protocol.WithTransport(network.Endpoint(id)),
			protocol.WithLogger(zerolog.Nop()),
		)
		require.NoError(t, err)
		managers[id] = m
		network.Register(id, m)
	}

	signatures := make(map[party.ID]*ecdsa.Signature, len(signers))
	for id, m := range managers {
		signature, err := SignatureFromResult(m.Wait(ctx))
		require.NoError(t, err, id)
		signatures[id] = signature
	}
	return signatures
}

func TestSign(t *testing.T) {
	pl := pool.NewPool(0)

	configs, partyIDs := test.GenerateConfig(3, 2, mrand.New(mrand.NewSource(1)), pl)
	digest := sign.DigestKeccak256([]byte("hello"))
	public := configs[partyIDs[0]].PublicPoint()

	signatures := runSign(t, configs, partyIDs, digest, []byte("cmp sign"), pl)
	require.Len(t, signatures, 3)
	for _, signature := range signatures {
		assert.True(t, signature.Verify(public, digest))
		eth, err := signature.SigEthereum()
		require.NoError(t, err)
		assert.Len(t, eth, 65)
	}
}

func TestSign_Threshold(t *testing.T) {
	configs, partyIDs := test.GenerateConfig(5, 2, mrand.New(mrand.NewSource(2)), nil)
	digest := sign.DigestKeccak256([]byte("threshold"))
	public := configs[partyIDs[0]].PublicPoint()

	signers := party.NewIDSlice([]party.ID{partyIDs[1], partyIDs[3], partyIDs[4]})
	signatures := runSign(t, configs, signers, digest, []byte("cmp threshold"), nil)
	require.Len(t, signatures, 3)
	for _, signature := range signatures {
		assert.True(t, signature.Verify(public, digest))
	}
}

func TestSign_InvalidConfig(t *testing.T) {
	configs, partyIDs := test.GenerateConfig(2, 1, mrand.New(mrand.NewSource(3)), nil)
	bad := *configs[partyIDs[0]]
	bad.ElGamal = sample.Scalar(mrand.New(mrand.NewSource(4)))

	network := test.NewNetwork(partyIDs)
	_, err := Sign(context.Background(), &bad, partyIDs, sign.DigestKeccak256([]byte("bad")), []byte("bad"), nil,
		protocol.WithTransport(network.Endpoint(partyIDs[0])),
		protocol.WithLogger(zerolog.Nop()),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, sign.ErrParameter)
	assert.Empty(t, network.Sent(partyIDs[0]))
}

func TestSign_CorruptedK(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	configs, partyIDs := test.GenerateConfig(3, 2, mrand.New(mrand.NewSource(5)), nil)
	cheater := partyIDs[0]
	digest := sign.DigestKeccak256([]byte("corrupted K"))

	network := test.NewNetwork(partyIDs)
	// the cheater broadcasts its G in place of K, so its enc proof no longer matches
	network.Intercept(func(msg *protocol.Message) *protocol.Message {
		if msg.From != cheater || !msg.Broadcast || msg.RoundNumber != 2 {
			return msg
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg.Data, &fields); err != nil {
			return msg
		}
		fields["K"] = fields["G"]
		if data, err := json.Marshal(fields); err == nil {
			msg.Data = data
		}
		return msg
	})

	managers := make(map[party.ID]*protocol.Manager, len(partyIDs))
	for _, id := range partyIDs {
		m, err := Sign(ctx, configs[id], partyIDs, digest, []byte("corrupted K"), nil,
			protocol.WithTransport(network.Endpoint(id)),
			protocol.WithLogger(zerolog.Nop()),
		)
		require.NoError(t, err)
		managers[id] = m
		network.Register(id, m)
	}

	for _, id := range partyIDs[1:] {
		_, err := SignatureFromResult(managers[id].Wait(ctx))
		require.Error(t, err, id)
		assert.ErrorIs(t, err, sign.ErrProofVerificationFailed, id)

		var protocolErr protocol.Error
		require.True(t, errors.As(err, &protocolErr), id)
		assert.Equal(t, round.Number(2), protocolErr.RoundNumber, id)
		assert.Equal(t, cheater, protocolErr.Culprit, id)
	}

	managers[cheater].Stop()
	_, err := managers[cheater].Wait(ctx)
	assert.ErrorIs(t, err, protocol.ErrStopped)
}

func TestSignatureFromResult(t *testing.T) {
	_, err := SignatureFromResult("not a signature", nil)
	assert.Error(t, err)
	_, err = SignatureFromResult(nil, protocol.ErrStopped)
	assert.ErrorIs(t, err, protocol.ErrStopped)
}
