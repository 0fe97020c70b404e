package protocol_test

import (
	"context"
	"errors"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
)

// The sum protocol has every party broadcast a value in round 2, and repeat it in a direct message
// to every other party. The result is the sum of all values.

const sumProtocolID = "test/sum"

var errValueMismatch = errors.New("direct value differs from broadcast")

type sumBroadcast struct {
	Value uint32
}

func (sumBroadcast) RoundNumber() round.Number { return 2 }

type sumDirect struct {
	Value uint32
}

func (sumDirect) RoundNumber() round.Number { return 2 }

func startSum(selfID party.ID, partyIDs []party.ID, value uint32) protocol.StartFunc {
	return func(_ context.Context, sessionID []byte) (round.Session, error) {
		helper, err := round.NewSession(round.Info{
			ProtocolID:       sumProtocolID,
			FinalRoundNumber: 2,
			SelfID:           selfID,
			PartyIDs:         partyIDs,
			Threshold:        len(partyIDs) - 1,
		}, sessionID, nil)
		if err != nil {
			return nil, err
		}
		return &sumRound1{Helper: helper, value: value}, nil
	}
}

type sumRound1 struct {
	*round.Helper
	value uint32
}

func (sumRound1) VerifyMessage(round.Message) error { return nil }
func (sumRound1) StoreMessage(round.Message) error  { return nil }
func (sumRound1) MessageContent() round.Content     { return nil }
func (sumRound1) Number() round.Number              { return 1 }

func (r *sumRound1) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.BroadcastMessage(out, &sumBroadcast{Value: r.value}); err != nil {
		return r, err
	}
	for _, j := range r.OtherPartyIDs() {
		if err := r.SendMessage(out, &sumDirect{Value: r.value}, j); err != nil {
			return r, err
		}
	}
	return &sumRound2{
		sumRound1: r,
		values:    map[party.ID]uint32{r.SelfID(): r.value},
	}, nil
}

type sumRound2 struct {
	*sumRound1
	values map[party.ID]uint32
}

func (r *sumRound2) StoreBroadcastMessage(msg round.Message) error {
	body, ok := msg.Content.(*sumBroadcast)
	if !ok {
		return round.ErrInvalidContent
	}
	r.values[msg.From] = body.Value
	return nil
}

func (r *sumRound2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*sumDirect)
	if !ok {
		return round.ErrInvalidContent
	}
	if value, ok := r.values[msg.From]; !ok || value != body.Value {
		return errValueMismatch
	}
	return nil
}

func (sumRound2) StoreMessage(round.Message) error { return nil }

func (r *sumRound2) Finalize(chan<- *round.Message) (round.Session, error) {
	var sum uint32
	for _, j := range r.PartyIDs() {
		sum += r.values[j]
	}
	return r.ResultRound(sum), nil
}

func (sumRound2) MessageContent() round.Content            { return &sumDirect{} }
func (sumRound2) BroadcastContent() round.BroadcastContent { return &sumBroadcast{} }
func (sumRound2) Number() round.Number                     { return 2 }
