package round

import (
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

// Content represents the message, either broadcast or P2P returned by a round
// during finalization.
type Content interface {
	RoundNumber() Number
}

// BroadcastContent is the Content of a message sent to every other party.
type BroadcastContent interface {
	Content
}

// Message is the unit exchanged between rounds. To is empty for broadcasts.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}

// IsFor returns true if the message is intended for the designated party.
func (m *Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == "" || m.To == id
}
