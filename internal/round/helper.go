package round

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
)

// Helper holds everything a Session needs except the Round itself.
// A protocol embeds it in its first round, and passes it along to the following ones.
type Helper struct {
	info Info

	// Pool runs the expensive verifications of a round in parallel. It may be nil.
	Pool *pool.Pool

	partyIDs      party.IDSlice
	otherPartyIDs party.IDSlice

	ssid []byte

	mtx  sync.Mutex
	hash *hash.Hash
}

func (info Info) validate() (party.IDSlice, error) {
	ids := party.NewIDSlice(info.PartyIDs)
	switch {
	case !ids.Valid():
		return nil, errors.New("session: partyIDs invalid")
	case !ids.Contains(info.SelfID):
		return nil, errors.New("session: selfID not included in partyIDs")
	case info.Threshold < 0 || info.Threshold > math.MaxUint32:
		return nil, fmt.Errorf("session: threshold %d is invalid", info.Threshold)
	case info.Threshold > len(ids)-1:
		return nil, fmt.Errorf("session: threshold %d is invalid for number of parties %d", info.Threshold, len(ids))
	}
	return ids, nil
}

// NewSession validates info and seeds the transcript with
// the optional sessionID, the protocol, the curve, the parties, the threshold and then auxInfo.
// The SSID is the digest of this initial transcript.
//
// Two executions with the same parties and aux data only differ through sessionID,
// so callers should pick a fresh one for each execution, a counter is enough.
func NewSession(info Info, sessionID []byte, pl *pool.Pool, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	partyIDs, err := info.validate()
	if err != nil {
		return nil, err
	}

	transcript := make([]interface{}, 0, 5+len(auxInfo))
	if sessionID != nil {
		transcript = append(transcript, &hash.BytesWithDomain{TheDomain: "Session ID", Bytes: sessionID})
	}
	transcript = append(transcript,
		&hash.BytesWithDomain{TheDomain: "Protocol ID", Bytes: []byte(info.ProtocolID)},
		&hash.BytesWithDomain{TheDomain: "Group Name", Bytes: []byte(curve.Name)},
		partyIDs,
		threshold(info.Threshold),
	)
	for _, a := range auxInfo {
		if a != nil {
			transcript = append(transcript, a)
		}
	}

	h := hash.New()
	if err = h.WriteAny(transcript...); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Helper{
		info:          info,
		Pool:          pl,
		partyIDs:      partyIDs,
		otherPartyIDs: partyIDs.Remove(info.SelfID),
		ssid:          h.Clone().Sum(),
		hash:          h,
	}, nil
}

// HashForID forks the transcript and binds the fork to id, unless id is empty.
// Proofs created by id are generated and verified on such a fork.
func (h *Helper) HashForID(id party.ID) *hash.Hash {
	forked := h.Hash()
	if id != "" {
		_ = forked.WriteAny(id)
	}
	return forked
}

// Hash returns a copy of the transcript.
func (h *Helper) Hash() *hash.Hash {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.hash.Clone()
}

// BroadcastMessage queues content for every other party.
// out must be buffered, ErrOutChanFull is returned instead of blocking.
func (h *Helper) BroadcastMessage(out chan<- *Message, content Content) error {
	return h.emit(out, &Message{From: h.info.SelfID, Broadcast: true, Content: content})
}

// SendMessage queues content for the party to.
// out must be buffered, ErrOutChanFull is returned instead of blocking.
func (h *Helper) SendMessage(out chan<- *Message, content Content, to party.ID) error {
	return h.emit(out, &Message{From: h.info.SelfID, To: to, Content: content})
}

func (*Helper) emit(out chan<- *Message, msg *Message) error {
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// ResultRound ends the execution with result.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{Helper: h, Result: result}
}

// AbortRound ends the execution with err, blaming culprits.
// Finalize should return it together with a nil error.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{Helper: h, Culprits: culprits, Err: err}
}

func (h *Helper) Info() Info                   { return h.info }
func (h *Helper) ProtocolID() string           { return h.info.ProtocolID }
func (h *Helper) FinalRoundNumber() Number     { return h.info.FinalRoundNumber }
func (h *Helper) SSID() []byte                 { return h.ssid }
func (h *Helper) SelfID() party.ID             { return h.info.SelfID }
func (h *Helper) PartyIDs() party.IDSlice      { return h.partyIDs }
func (h *Helper) OtherPartyIDs() party.IDSlice { return h.otherPartyIDs }
func (h *Helper) Threshold() int               { return h.info.Threshold }
func (h *Helper) N() int                       { return len(h.partyIDs) }

// threshold is written to the transcript as 4 big-endian bytes.
type threshold uint32

func (t threshold) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint32(t)); err != nil {
		return 0, err
	}
	return 4, nil
}

func (threshold) Domain() string { return "Threshold" }
