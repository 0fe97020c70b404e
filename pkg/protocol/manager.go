package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
)

var (
	// ErrStopped is the failure of an execution interrupted by Stop.
	ErrStopped = errors.New("protocol: stopped")
	// ErrFinished is returned by Accept once the execution has ended.
	ErrFinished = errors.New("protocol: execution already finished")
	// ErrNotFinished is returned by Result while the execution is still running.
	ErrNotFinished = errors.New("protocol: not finished")
	// ErrNoTransport is returned by NewManager when no Transport was given.
	ErrNoTransport = errors.New("protocol: no transport")
)

// Manager runs one party's execution of a protocol.
//
// Incoming messages are handed to Accept, which files them into per-round slots.
// A single goroutine waits until the current round has a message from every expected sender,
// processes them, finalizes the round and hands the produced messages to the Transport.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc

	base      zerolog.Logger
	log       zerolog.Logger
	transport Transport
	metrics   *Metrics
	pool      *pool.Pool

	protocolID string
	selfID     party.ID
	selfIndex  int
	partyIDs   party.IDSlice
	ssid       []byte
	final      round.Number

	mtx        sync.Mutex
	cond       *sync.Cond
	current    round.Session
	roundStart time.Time
	// broadcasts and directs are indexed by [round number][sender position in partyIDs].
	broadcasts [][]*Message
	directs    [][]*Message

	finished bool
	result   interface{}
	err      error
	done     chan struct{}

	halted atomic.Bool
	sends  sync.WaitGroup
}

// NewManager creates the first round with start and begins the execution in the background.
//
// Cancelling ctx has the same effect as Stop.
func NewManager(ctx context.Context, start StartFunc, sessionID []byte, opts ...Option) (*Manager, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		return nil, ErrNoTransport
	}

	ctx, cancel := context.WithCancel(ctx)
	r, err := start(ctx, sessionID)
	if err != nil {
		cancel()
		return nil, Error{Err: fmt.Errorf("protocol: failed to create round: %w", err)}
	}

	base := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	if o.log != nil {
		base = *o.log
	}
	base = base.With().
		Str("protocol", r.ProtocolID()).
		Str("party", string(r.SelfID())).
		Logger()

	partyIDs := r.PartyIDs()
	m := &Manager{
		ctx:        ctx,
		cancel:     cancel,
		base:       base,
		transport:  o.transport,
		metrics:    o.metrics,
		pool:       o.pool,
		protocolID: r.ProtocolID(),
		selfID:     r.SelfID(),
		selfIndex:  partyIDs.GetIndex(r.SelfID()),
		partyIDs:   partyIDs,
		ssid:       r.SSID(),
		final:      r.FinalRoundNumber(),
		broadcasts: newSlots(r.FinalRoundNumber(), len(partyIDs)),
		directs:    newSlots(r.FinalRoundNumber(), len(partyIDs)),
		done:       make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mtx)
	m.enter(r)
	m.log.Info().Int("parties", len(partyIDs)).Msg("start")

	go m.run()
	go func() {
		select {
		case <-ctx.Done():
			m.fail(ctx.Err())
		case <-m.done:
		}
	}()
	return m, nil
}

func newSlots(final round.Number, n int) [][]*Message {
	slots := make([][]*Message, int(final)+1)
	for i := range slots {
		slots[i] = make([]*Message, n)
	}
	return slots
}

// Accept files an incoming message for the round it is addressed to.
// Messages for later rounds are kept until that round starts.
//
// Accept may be called concurrently.
func (m *Manager) Accept(msg *Message) error {
	if msg == nil {
		return ErrNilContent
	}
	if err := m.check(msg); err != nil {
		m.base.Warn().Err(err).Stringer("msg", msg).Msg("rejected message")
		return err
	}
	index := m.partyIDs.GetIndex(msg.From)

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.finished {
		return ErrFinished
	}
	if msg.RoundNumber < m.current.Number() {
		m.log.Warn().Stringer("msg", msg).Msg("stale message")
		return ErrStaleRound
	}

	table := m.directs
	if msg.Broadcast {
		table = m.broadcasts
	}
	if previous := table[msg.RoundNumber][index]; previous != nil {
		same, err := sameMessage(previous, msg)
		if err != nil {
			return err
		}
		if same {
			return ErrDuplicate
		}
		m.log.Warn().Stringer("msg", msg).Msg("conflicting message")
		return ErrEquivocation
	}

	stored := *msg
	table[msg.RoundNumber][index] = &stored
	m.log.Debug().Stringer("msg", msg).Msg("got new message")
	m.cond.Broadcast()
	return nil
}

func sameMessage(a, b *Message) (bool, error) {
	hashA, err := a.Hash()
	if err != nil {
		return false, err
	}
	hashB, err := b.Hash()
	if err != nil {
		return false, err
	}
	return bytes.Equal(hashA, hashB), nil
}

func (m *Manager) check(msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if !bytes.Equal(msg.SSID, m.ssid) {
		return ErrWrongSSID
	}
	if msg.Protocol != m.protocolID {
		return ErrWrongProtocolID
	}
	if !m.partyIDs.Contains(msg.From) || msg.From == m.selfID {
		return ErrUnknownSender
	}
	if !msg.IsFor(m.selfID) {
		return ErrWrongDestination
	}
	if msg.RoundNumber > m.final {
		return ErrInvalidRoundNumber
	}
	return nil
}

// Stop aborts the execution. The current round and every buffered message are dropped,
// and no further message is emitted.
func (m *Manager) Stop() {
	m.fail(ErrStopped)
}

// Done is closed once the execution has ended, successfully or not.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (m *Manager) Result() (interface{}, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if !m.finished {
		return nil, ErrNotFinished
	}
	return m.result, m.err
}

// Wait blocks until the execution has ended or ctx is done.
func (m *Manager) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-m.done:
		return m.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ready reports whether every message the current round expects has arrived.
// The local broadcast is filed when it is emitted, so broadcast rounds wait for all parties.
func (m *Manager) ready() bool {
	number := m.current.Number()
	if _, ok := m.current.(round.BroadcastRound); ok {
		if count(m.broadcasts[number]) < len(m.partyIDs) {
			return false
		}
	}
	if m.current.MessageContent() != nil {
		if count(m.directs[number]) < len(m.partyIDs)-1 {
			return false
		}
	}
	return true
}

func count(slots []*Message) int {
	n := 0
	for _, msg := range slots {
		if msg != nil {
			n++
		}
	}
	return n
}

func (m *Manager) run() {
	for {
		m.mtx.Lock()
		for !m.finished && !m.ready() {
			m.cond.Wait()
		}
		if m.finished {
			m.mtx.Unlock()
			return
		}
		r := m.current
		broadcasts := append([]*Message(nil), m.broadcasts[r.Number()]...)
		directs := append([]*Message(nil), m.directs[r.Number()]...)
		m.mtx.Unlock()

		next, out, err := m.process(r, broadcasts, directs)
		if err != nil {
			m.fail(err)
			return
		}
		if !m.advance(r, next, out) {
			return
		}
	}
}

// process stores the broadcasts, verifies the direct messages in parallel, stores them and finalizes r.
func (m *Manager) process(r round.Session, broadcasts, directs []*Message) (round.Session, []*round.Message, error) {
	number := r.Number()

	if b, ok := r.(round.BroadcastRound); ok {
		for _, msg := range broadcasts {
			if msg == nil || msg.From == m.selfID {
				continue
			}
			content := b.BroadcastContent()
			if err := json.Unmarshal(msg.Data, content); err != nil {
				return nil, nil, Error{RoundNumber: number, Culprit: msg.From, Err: err}
			}
			if err := b.StoreBroadcastMessage(round.Message{From: msg.From, Broadcast: true, Content: content}); err != nil {
				return nil, nil, Error{RoundNumber: number, Culprit: msg.From, Err: err}
			}
		}
	}

	if r.MessageContent() != nil {
		decoded := make([]round.Message, len(directs))
		err := m.pool.Parallelize(m.ctx, len(directs), func(_ context.Context, i int) error {
			msg := directs[i]
			if msg == nil {
				return nil
			}
			content := r.MessageContent()
			if err := json.Unmarshal(msg.Data, content); err != nil {
				return Error{RoundNumber: number, Culprit: msg.From, Err: err}
			}
			decoded[i] = round.Message{From: msg.From, To: msg.To, Content: content}
			if err := r.VerifyMessage(decoded[i]); err != nil {
				return Error{RoundNumber: number, Culprit: msg.From, Err: err}
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		for i, msg := range directs {
			if msg == nil {
				continue
			}
			if err = r.StoreMessage(decoded[i]); err != nil {
				return nil, nil, Error{RoundNumber: number, Culprit: msg.From, Err: err}
			}
		}
	}

	out := make(chan *round.Message, 2*len(m.partyIDs)+2)
	next, err := r.Finalize(out)
	close(out)
	if err != nil {
		return nil, nil, Error{RoundNumber: number, Err: err}
	}
	if abort, ok := next.(*round.Abort); ok {
		culprit := party.ID("")
		if len(abort.Culprits) > 0 {
			culprit = abort.Culprits[0]
		}
		return nil, nil, Error{RoundNumber: number, Culprit: culprit, Err: abort.Err}
	}

	var messages []*round.Message
	for msg := range out {
		messages = append(messages, msg)
	}
	return next, messages, nil
}

// advance moves to next and dispatches out. It returns false once the execution has ended.
func (m *Manager) advance(r, next round.Session, out []*round.Message) bool {
	wires := make([]*Message, 0, len(out))
	for _, msg := range out {
		wire, err := m.wrap(msg)
		if err != nil {
			m.fail(Error{RoundNumber: r.Number(), Err: err})
			return false
		}
		wires = append(wires, wire)
	}

	m.mtx.Lock()
	if m.finished {
		m.mtx.Unlock()
		return false
	}
	m.metrics.observeRound(m.protocolID, r.Number(), time.Since(m.roundStart))
	m.log.Info().Int("messages", len(wires)).Msg("round finalized")

	output, isOutput := next.(*round.Output)
	if isOutput {
		m.result = output.Result
		m.log.Info().Msg("done")
		m.teardown()
	} else {
		m.enter(next)
		for _, wire := range wires {
			if wire.Broadcast && wire.RoundNumber <= m.final {
				m.broadcasts[wire.RoundNumber][m.selfIndex] = wire
			}
		}
	}
	log := m.log
	m.mtx.Unlock()

	for _, wire := range wires {
		m.send(log, wire)
	}
	if isOutput {
		go func() {
			m.sends.Wait()
			m.cancel()
		}()
	}
	return !isOutput
}

// enter makes r the current round. The caller holds mtx, or is the constructor.
func (m *Manager) enter(r round.Session) {
	m.current = r
	m.roundStart = time.Now()
	m.log = m.base.With().Int("round", int(r.Number())).Logger()
}

func (m *Manager) wrap(msg *round.Message) (*Message, error) {
	data, err := json.Marshal(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to encode content: %w", err)
	}
	wire := &Message{
		SSID:        m.ssid,
		From:        m.selfID,
		Protocol:    m.protocolID,
		RoundNumber: msg.Content.RoundNumber(),
		Broadcast:   msg.Broadcast,
		Data:        data,
	}
	if !msg.Broadcast {
		wire.To = msg.To
	}
	return wire, nil
}

// send hands msg to the transport without waiting for it.
func (m *Manager) send(log zerolog.Logger, msg *Message) {
	m.sends.Add(1)
	go func() {
		defer m.sends.Done()
		if m.halted.Load() {
			return
		}
		var err error
		if msg.Broadcast {
			err = m.transport.Broadcast(m.ctx, msg)
		} else {
			err = m.transport.SendDirect(m.ctx, msg.To, msg)
		}
		if err != nil {
			log.Error().Err(err).Stringer("msg", msg).Msg("failed to send")
		}
	}()
}

// fail ends the execution with err, unless it already ended.
func (m *Manager) fail(err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.finished {
		return
	}
	m.halted.Store(true)

	var protocolErr Error
	if !errors.As(err, &protocolErr) {
		protocolErr = Error{RoundNumber: m.current.Number(), Err: err}
	}
	m.err = protocolErr
	m.metrics.observeAbort(m.protocolID, protocolErr.RoundNumber)
	m.log.Error().Err(protocolErr).Str("culprit", string(protocolErr.Culprit)).Msg("abort")
	m.teardown()
	m.cancel()
}

// teardown drops the round state and buffered messages. The caller holds mtx.
func (m *Manager) teardown() {
	m.finished = true
	m.current = nil
	for i := range m.broadcasts {
		m.broadcasts[i] = nil
		m.directs[i] = nil
	}
	close(m.done)
	m.cond.Broadcast()
}
