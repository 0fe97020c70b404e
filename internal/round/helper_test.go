package round_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

func partyIDs(n int) party.IDSlice {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(fmt.Sprintf("party-%02d", i))
	}
	return party.NewIDSlice(ids)
}

func TestNewSession(t *testing.T) {
	RNumber := round.Number(5)
	T := 20
	N := 26
	ids := partyIDs(N)
	selfID := ids[0]
	tests := []struct {
		name      string
		selfID    party.ID
		partyIDs  []party.ID
		threshold int
		wantErr   bool
	}{
		{"-1 t", selfID, ids, -1, true},
		{"invalid selfID", "", ids, T, true},
		{"duplicate selfID", selfID, append(ids.Copy(), selfID), T, true},
		{"duplicate second ID", selfID, append(ids.Copy(), ids[1]), T, true},
		{"duplicate partyIDs", selfID, append(ids.Copy(), ids...), T, true},
		{"threshold N", selfID, ids, N, true},
		{"threshold T with T parties", selfID, ids[:T], T, true},
		{"valid", selfID, ids, T, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := round.Info{
				ProtocolID:       "TEST",
				FinalRoundNumber: RNumber,
				SelfID:           tt.selfID,
				PartyIDs:         tt.partyIDs,
				Threshold:        tt.threshold,
			}
			_, err := round.NewSession(info, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func newHelper(t *testing.T, self party.ID, ids party.IDSlice, sessionID []byte) *round.Helper {
	h, err := round.NewSession(round.Info{
		ProtocolID:       "TEST",
		FinalRoundNumber: 5,
		SelfID:           self,
		PartyIDs:         ids,
		Threshold:        len(ids) - 1,
	}, sessionID, nil)
	require.NoError(t, err)
	return h
}

func TestHelper_SSID(t *testing.T) {
	ids := partyIDs(3)
	a := newHelper(t, ids[0], ids, []byte("session"))
	b := newHelper(t, ids[1], ids, []byte("session"))
	c := newHelper(t, ids[0], ids, []byte("other session"))

	assert.Equal(t, a.SSID(), b.SSID(), "parties of one execution share the SSID")
	assert.NotEqual(t, a.SSID(), c.SSID())
	assert.Equal(t, ids.Remove(ids[0]), a.OtherPartyIDs())
	assert.Equal(t, 3, a.N())
}

func TestHelper_HashForID(t *testing.T) {
	ids := partyIDs(3)
	h := newHelper(t, ids[0], ids, nil)

	sum0 := h.HashForID(ids[0]).Sum()
	sum1 := h.HashForID(ids[1]).Sum()
	assert.NotEqual(t, sum0, sum1)
	assert.Equal(t, sum0, h.HashForID(ids[0]).Sum(), "forks must not change the session state")

	before := h.Hash().Sum()
	forked := h.HashForID(ids[2])
	require.NoError(t, forked.WriteAny(&hash.BytesWithDomain{TheDomain: "test", Bytes: []byte{1}}))
	assert.Equal(t, before, h.Hash().Sum(), "writing to a fork must not change the session state")
}

type content struct{}

func (content) RoundNumber() round.Number { return 2 }

func TestHelper_SendMessage(t *testing.T) {
	ids := partyIDs(2)
	h := newHelper(t, ids[0], ids, nil)

	out := make(chan *round.Message, 1)
	require.NoError(t, h.SendMessage(out, content{}, ids[1]))
	assert.ErrorIs(t, h.BroadcastMessage(out, content{}), round.ErrOutChanFull)

	msg := <-out
	assert.True(t, msg.IsFor(ids[1]))
	assert.False(t, msg.IsFor(ids[0]))
	assert.False(t, msg.Broadcast)
}

func TestHelper_AbortAndResult(t *testing.T) {
	ids := partyIDs(2)
	h := newHelper(t, ids[0], ids, nil)

	abort, ok := h.AbortRound(assert.AnError, ids[1]).(*round.Abort)
	require.True(t, ok)
	assert.Equal(t, []party.ID{ids[1]}, abort.Culprits)
	assert.ErrorIs(t, abort.Err, assert.AnError)

	result, ok := h.ResultRound(42).(*round.Output)
	require.True(t, ok)
	assert.Equal(t, 42, result.Result)
	assert.Equal(t, round.Number(0), result.Number())
}
