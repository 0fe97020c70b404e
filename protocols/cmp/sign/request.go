package sign

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"golang.org/x/crypto/sha3"
)

// Request is the immutable input of a signing session: the digest to sign and the set of signers.
type Request struct {
	message []byte
	signers party.IDSlice
}

// NewRequest returns a Request for the given digest, which is signed as is.
// signers does not need to be sorted, but may not contain duplicates.
func NewRequest(digest []byte, signers []party.ID) (*Request, error) {
	if len(digest) == 0 {
		return nil, fmt.Errorf("%w: sign: message is empty", ErrParameter)
	}
	ids := party.NewIDSlice(signers)
	if len(ids) == 0 || !ids.Valid() {
		return nil, fmt.Errorf("%w: sign: signers are invalid", ErrParameter)
	}
	return &Request{
		message: append([]byte(nil), digest...),
		signers: ids,
	}, nil
}

// DigestKeccak256 returns the Keccak-256 hash of message, as used for Ethereum transactions.
func DigestKeccak256(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(message)
	return h.Sum(nil)
}

// Message returns a copy of the digest to sign.
func (r *Request) Message() []byte {
	return append([]byte(nil), r.message...)
}

// Signers returns the sorted signer set.
func (r *Request) Signers() party.IDSlice {
	return r.signers.Copy()
}

// hashable returns the digest annotated for the session transcript.
func (r *Request) hashable() hash.WriterToWithDomain {
	return &hash.BytesWithDomain{
		TheDomain: "Signing Message",
		Bytes:     r.message,
	}
}

type requestJSON struct {
	Message string     `json:"messageHex"`
	Signers []party.ID `json:"signerIds"`
}

// MarshalJSON encodes the request as {messageHex, signerIds}.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{
		Message: hex.EncodeToString(r.message),
		Signers: r.signers,
	})
}

// UnmarshalJSON decodes {messageHex, signerIds} and applies the checks of NewRequest.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	message, err := hex.DecodeString(raw.Message)
	if err != nil {
		return fmt.Errorf("sign: messageHex: %w", err)
	}
	decoded, err := NewRequest(message, raw.Signers)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
