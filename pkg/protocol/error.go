package protocol

import (
	"fmt"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

// Error is a custom error for protocols which contains information about the responsible round in which it occurred,
// and the party responsible.
type Error struct {
	// RoundNumber where the error occurred
	RoundNumber round.Number
	// Culprit is empty if the identity of the misbehaving party cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

func (e Error) Error() string {
	if e.Culprit == "" {
		return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
	}
	return fmt.Sprintf("round %d: party: %s: %s", e.RoundNumber, e.Culprit, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

// MessageError indicates that an incoming message was rejected before reaching a round.
type MessageError string

const (
	ErrDuplicate          MessageError = "message was already handled"
	ErrEquivocation       MessageError = "sender delivered two different messages for the same slot"
	ErrUnknownSender      MessageError = "unknown sender"
	ErrNilContent         MessageError = "content is nil"
	ErrNilFields          MessageError = "message contained empty fields"
	ErrWrongSSID          MessageError = "SSID mismatch"
	ErrWrongProtocolID    MessageError = "wrong protocol ID"
	ErrWrongDestination   MessageError = "message is not intended for selfID"
	ErrInvalidRoundNumber MessageError = "round number is invalid for this protocol"
	ErrStaleRound         MessageError = "message is for a round that already finished"
	ErrInvalidTo          MessageError = "msg.To is not valid"
)

// Error implements error.
func (err MessageError) Error() string {
	return "message: " + string(err)
}
