package round

import "errors"

// ErrInvalidContent is returned when a message's content does not match the round it was delivered to.
var ErrInvalidContent = errors.New("round: content is not the expected type")

// ErrOutChanFull is returned when a message could not be written to the out channel of Finalize.
var ErrOutChanFull = errors.New("round: out channel is full")

type Round interface {
	// VerifyMessage handles an incoming Message from j and validates its content with regard to the protocol.
	// The content argument can be cast to the appropriate type for this round without error check.
	// In the first round, this function returns nil.
	// This function should not modify any saved state as it may be running concurrently.
	VerifyMessage(msg Message) error

	// StoreMessage should be called after VerifyMessage and should only store the appropriate fields from the
	// content.
	StoreMessage(msg Message) error

	// Finalize is called after all messages from the parties have been processed in the current round.
	// Messages for the next round are sent out through the out channel.
	// When the protocol is aborted, an Abort round is returned together with a nil error.
	//
	// In the last round, Finalize should return
	//   r.ResultRound(result), nil
	// where result is the output of the protocol.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized Content for the direct messages of this round.
	//
	// The first round of a protocol should return nil.
	MessageContent() Content

	// Number returns the current round number.
	Number() Number
}

// BroadcastRound extends Round in that it expects a broadcast message before the p2p message.
type BroadcastRound interface {
	Round

	// StoreBroadcastMessage must be run before Round.VerifyMessage and Round.StoreMessage,
	// since those may depend on the content from the broadcast.
	// It changes the round's state to store the message after performing basic validation.
	StoreBroadcastMessage(msg Message) error

	// BroadcastContent returns an uninitialized Content for the broadcast message of this round.
	BroadcastContent() BroadcastContent
}
