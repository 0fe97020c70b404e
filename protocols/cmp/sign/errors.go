package sign

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-sign/protocols/cmp/config"
)

var (
	// ErrParameter is returned when the configuration or the request fails a self-check.
	ErrParameter = config.ErrParameter
	// ErrProofVerificationFailed is returned when a zero-knowledge proof from another party does not verify.
	ErrProofVerificationFailed = errors.New("proof verification failed")
	// ErrConsistencyCheckFailed is returned when Δ ≠ δ⋅G after aggregating the nonce shares.
	ErrConsistencyCheckFailed = errors.New("consistency check failed")
	// ErrDegenerateShare is returned when a party sends a zero signature share.
	ErrDegenerateShare = errors.New("degenerate share")
	// ErrSignatureVerificationFailed is returned when the aggregated signature does not verify.
	ErrSignatureVerificationFailed = errors.New("signature verification failed")
	// ErrInvalidState is returned when a session is initialized twice or its rounds are finalized out of order.
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrRound2ZKEnc         = fmt.Errorf("%w: enc proof for K", ErrProofVerificationFailed)
	ErrRound3ZKAffGDelta   = fmt.Errorf("%w: affg proof for Delta MtA", ErrProofVerificationFailed)
	ErrRound3ZKAffGChi     = fmt.Errorf("%w: affg proof for Chi MtA", ErrProofVerificationFailed)
	ErrRound3ZKLog         = fmt.Errorf("%w: log* proof for G", ErrProofVerificationFailed)
	ErrRound4ZKLog         = fmt.Errorf("%w: log* proof for Δ", ErrProofVerificationFailed)
	ErrRound4BigDelta      = fmt.Errorf("%w: computed Δ is inconsistent with [δ]G", ErrConsistencyCheckFailed)
	ErrRound5SigmaZero     = fmt.Errorf("%w: σ is 0", ErrDegenerateShare)
	ErrRound5SignatureFail = fmt.Errorf("%w: failed to validate signature", ErrSignatureVerificationFailed)
)
