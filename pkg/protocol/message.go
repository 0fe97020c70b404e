package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

// Message is the envelope exchanged between parties.
// The content of a round message is carried as JSON in Data.
type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte `json:"ssid" cbor:"1,keyasint"`
	// From is the party.ID of the sender
	From party.ID `json:"from" cbor:"2,keyasint"`
	// To is the intended recipient of a direct message, and empty for a broadcast.
	To party.ID `json:"to,omitempty" cbor:"3,keyasint,omitempty"`
	// Protocol identifies the protocol this message belongs to
	Protocol string `json:"protocol" cbor:"4,keyasint"`
	// RoundNumber is the index of the round consuming this message.
	RoundNumber round.Number `json:"roundNumber" cbor:"5,keyasint"`
	// Broadcast is true if the message must be reliably broadcast to all participants.
	Broadcast bool `json:"broadcast" cbor:"6,keyasint"`
	// Data is the actual content consumed by the round.
	Data []byte `json:"data" cbor:"7,keyasint"`
}

// messageCBOR has the same fields as Message, without its methods.
type messageCBOR Message

// String implements fmt.Stringer.
func (m Message) String() string {
	if m.Broadcast {
		return fmt.Sprintf("message: round %d, from: %s, broadcast, protocol: %s", m.RoundNumber, m.From, m.Protocol)
	}
	return fmt.Sprintf("message: round %d, from: %s, to: %s, protocol: %s", m.RoundNumber, m.From, m.To, m.Protocol)
}

// IsFor returns true if the message is intended for the designated party.
func (m Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.Broadcast || m.To == id
}

// Hash returns a digest of the message, headers included.
// Broadcasts have no recipient, so To is written with its own domain even when empty.
func (m Message) Hash() ([]byte, error) {
	h := hash.New()
	broadcast := []byte{0}
	if m.Broadcast {
		broadcast[0] = 1
	}
	if err := h.WriteAny(
		hash.BytesWithDomain{TheDomain: "SSID", Bytes: m.SSID},
		m.From,
		hash.BytesWithDomain{TheDomain: "To", Bytes: []byte(m.To)},
		hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.RoundNumber,
		hash.BytesWithDomain{TheDomain: "Broadcast", Bytes: broadcast},
		hash.BytesWithDomain{TheDomain: "Content", Bytes: m.Data},
	); err != nil {
		return nil, fmt.Errorf("message: hash: %w", err)
	}
	return h.Sum(), nil
}

// Validate checks that the header is well formed.
func (m *Message) Validate() error {
	switch {
	case m == nil || len(m.Data) == 0:
		return ErrNilContent
	case len(m.SSID) == 0 || m.Protocol == "":
		return ErrNilFields
	case m.From == "":
		return ErrUnknownSender
	case m.RoundNumber == 0:
		return ErrInvalidRoundNumber
	case m.Broadcast && m.To != "":
		return ErrInvalidTo
	case !m.Broadcast && (m.To == "" || m.To == m.From):
		return ErrInvalidTo
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler using CBOR.
func (m *Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*messageCBOR)(m))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using CBOR.
func (m *Message) UnmarshalBinary(data []byte) error {
	var decoded messageCBOR
	if err := cbor.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("protocol: failed to decode message: %w", err)
	}
	*m = Message(decoded)
	return m.Validate()
}

// UnmarshalJSON implements json.Unmarshaler and validates the header.
func (m *Message) UnmarshalJSON(data []byte) error {
	var decoded messageCBOR
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Message(decoded)
	return m.Validate()
}
