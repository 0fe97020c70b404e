package protocol

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
)

// StartFunc creates the first round of a protocol for the given session ID.
// If the creation fails (likely due to misconfiguration), an error is returned.
//
// ctx is cancelled as soon as the execution ends, rounds should give up on pending work once it is done.
type StartFunc func(ctx context.Context, sessionID []byte) (round.Session, error)

// Transport delivers outgoing messages to the other parties.
//
// Broadcast messages must be reliably broadcast: every honest party receives the same message.
type Transport interface {
	Broadcast(ctx context.Context, msg *Message) error
	SendDirect(ctx context.Context, to party.ID, msg *Message) error
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	log       *zerolog.Logger
	transport Transport
	metrics   *Metrics
	pool      *pool.Pool
}

// WithLogger sets the base logger. The Manager adds protocol, party and round fields to it.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = &log
	}
}

// WithTransport sets the transport used to emit round messages.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithMetrics reports round durations and aborts to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithPool verifies incoming messages in parallel on pl.
func WithPool(pl *pool.Pool) Option {
	return func(o *options) {
		o.pool = pl
	}
}
