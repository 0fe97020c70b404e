package sign

import (
	"context"
	"fmt"
	"sync"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/hash"
	"github.com/taurusgroup/mpc-sign/pkg/math/curve"
	"github.com/taurusgroup/mpc-sign/pkg/math/polynomial"
	"github.com/taurusgroup/mpc-sign/pkg/paillier"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pedersen"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
	"github.com/taurusgroup/mpc-sign/protocols/cmp/config"
)

const (
	protocolSignID                  = "cmp/sign"
	protocolSignRounds round.Number = 5

	// roundDone is the state of a session after the signature was produced or the protocol aborted.
	roundDone = protocolSignRounds + 1
)

// Session holds the state of one signing execution for the local party.
//
// A Session is initialized once, and its rounds can each be finalized exactly once, in order.
type Session struct {
	sessionID []byte
	pool      *pool.Pool
	// ctx stops the proofs of a round when the execution is abandoned
	ctx context.Context

	mtx    sync.Mutex
	state  round.Number
	helper *round.Helper
}

// NewSession returns an uninitialized Session.
// sessionID should be unique for each execution and agreed upon by all signers.
func NewSession(sessionID []byte, pl *pool.Pool) *Session {
	return &Session{
		sessionID: sessionID,
		pool:      pl,
		ctx:       context.Background(),
	}
}

// StartSign returns a protocol.StartFunc which runs the signing protocol for message with the given signers.
func StartSign(config *config.Config, signers []party.ID, message []byte, pl *pool.Pool) protocol.StartFunc {
	return func(ctx context.Context, sessionID []byte) (round.Session, error) {
		request, err := NewRequest(message, signers)
		if err != nil {
			return nil, err
		}
		s := NewSession(sessionID, pl)
		s.ctx = ctx
		return s.Init(request, config)
	}
}

// Init checks the configuration, seeds the transcript and returns the first round.
//
// The ECDSA share of this party and the public shares of the signers are scaled by their
// Lagrange coefficients, so that the shares of the signers sum up to the group's secret.
func (s *Session) Init(request *Request, config *config.Config) (round.Session, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.state != 0 {
		return nil, fmt.Errorf("%w: sign: session already initialized", ErrInvalidState)
	}
	if request == nil || config == nil {
		return nil, fmt.Errorf("%w: sign: missing request or config", ErrParameter)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	info := round.Info{
		ProtocolID:       protocolSignID,
		FinalRoundNumber: protocolSignRounds,
		SelfID:           config.ID,
		PartyIDs:         request.signers,
		Threshold:        config.Threshold,
	}

	helper, err := round.NewSession(info, s.sessionID, s.pool, config, request.hashable())
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %w", ErrParameter, err)
	}

	if !config.CanSign(helper.PartyIDs()) {
		return nil, fmt.Errorf("%w: sign: signers is not a valid signing subset", ErrParameter)
	}

	lagrange := polynomial.Lagrange(helper.PartyIDs())
	r, err := scalePublic(config, helper.PartyIDs(), lagrange)
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %w", ErrParameter, err)
	}
	// Scale own secret
	r.SecretECDSA = curve.NewScalar().Set(lagrange[config.ID]).Mul(config.ECDSA)
	r.SecretPaillier = config.Paillier
	r.Helper = helper
	r.session = s
	r.Message = request.Message()

	s.helper = helper
	s.state = 1
	return r, nil
}

// scalePublic collects the public data of the signers, with their ECDSA shares scaled by lagrange.
func scalePublic(provider config.PublicProvider, signers party.IDSlice, lagrange map[party.ID]*curve.Scalar) (*round1, error) {
	T := len(signers)
	r := &round1{
		PublicKey: curve.NewPoint(),
		Paillier:  make(map[party.ID]*paillier.PublicKey, T),
		Pedersen:  make(map[party.ID]*pedersen.Parameters, T),
		ECDSA:     make(map[party.ID]*curve.Point, T),
	}
	for _, j := range signers {
		public, err := provider.PublicFor(j)
		if err != nil {
			return nil, err
		}
		// scale public key share
		r.ECDSA[j] = lagrange[j].Act(public.ECDSA)
		r.Paillier[j] = public.Paillier
		r.Pedersen[j] = public.Pedersen
		r.PublicKey = r.PublicKey.Add(r.ECDSA[j])
	}
	return r, nil
}

// CloneHashForID returns a fork of the session's transcript with id written into it.
func (s *Session) CloneHashForID(id party.ID) *hash.Hash {
	s.mtx.Lock()
	helper := s.helper
	s.mtx.Unlock()
	if helper == nil {
		return nil
	}
	return helper.HashForID(id)
}

// Current returns the number of the round that is expected to be finalized next.
// It returns 0 before Init, and FinalRoundNumber + 1 once the session concluded.
func (s *Session) Current() round.Number {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.state
}

// advance moves the session from round `from` to the next one.
func (s *Session) advance(from round.Number) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: sign: cannot finalize round %d, session is at round %d", ErrInvalidState, from, s.state)
	}
	s.state = from + 1
	return nil
}

// conclude marks the session as done after an abort.
func (s *Session) conclude() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.state = roundDone
}
