package round

import (
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/party"
)

// Info describes an execution before it starts.
// Every party of the execution must use the same values, except for SelfID.
type Info struct {
	ProtocolID       string
	FinalRoundNumber Number
	SelfID           party.ID
	// PartyIDs need not be sorted.
	PartyIDs []party.ID
	// Threshold is the largest number of corrupted parties tolerated, so at least Threshold+1 must take part.
	Threshold int
}

// Session is a Round together with the context of the execution it belongs to.
// Each call to Finalize returns the Session of the next round.
type Session interface {
	Round

	// Hash returns a copy of the transcript.
	Hash() *hash.Hash
	ProtocolID() string
	FinalRoundNumber() Number
	// SSID is the digest of the initial transcript, identical for all parties.
	SSID() []byte
	SelfID() party.ID
	// PartyIDs is sorted.
	PartyIDs() party.IDSlice
	// OtherPartyIDs is PartyIDs without SelfID.
	OtherPartyIDs() party.IDSlice
	Threshold() int
	N() int
}
