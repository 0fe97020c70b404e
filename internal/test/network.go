package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
)

// Acceptor receives messages delivered by a Network, typically a *protocol.Manager.
type Acceptor interface {
	Accept(msg *protocol.Message) error
}

// Network is an in-memory transport between parties.
// Every message is encoded and decoded as it would be on the wire.
type Network struct {
	parties party.IDSlice

	mtx       sync.Mutex
	acceptors map[party.ID]Acceptor
	pending   map[party.ID][]*protocol.Message
	sent      map[party.ID][]*protocol.Message
	intercept func(msg *protocol.Message) *protocol.Message
}

func NewNetwork(parties party.IDSlice) *Network {
	return &Network{
		parties:   parties,
		acceptors: make(map[party.ID]Acceptor, len(parties)),
		pending:   make(map[party.ID][]*protocol.Message, len(parties)),
		sent:      make(map[party.ID][]*protocol.Message, len(parties)),
	}
}

// Intercept sets f to be applied to every message before delivery.
// Returning nil drops the message.
func (n *Network) Intercept(f func(msg *protocol.Message) *protocol.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	n.intercept = f
}

// Register delivers the messages for id to a, including those sent before a was registered.
func (n *Network) Register(id party.ID, a Acceptor) {
	n.mtx.Lock()
	n.acceptors[id] = a
	pending := n.pending[id]
	delete(n.pending, id)
	n.mtx.Unlock()

	for _, msg := range pending {
		_ = a.Accept(msg)
	}
}

// Endpoint returns the Transport used by party id.
func (n *Network) Endpoint(id party.ID) protocol.Transport {
	return &endpoint{id: id, network: n}
}

// Sent returns a copy of the messages sent by id.
func (n *Network) Sent(id party.ID) []*protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return append([]*protocol.Message(nil), n.sent[id]...)
}

func (n *Network) deliver(from party.ID, msg *protocol.Message) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	n.mtx.Lock()
	n.sent[from] = append(n.sent[from], msg)
	intercept := n.intercept
	n.mtx.Unlock()

	for _, id := range n.parties {
		if !msg.IsFor(id) {
			continue
		}
		received := new(protocol.Message)
		if err = received.UnmarshalBinary(data); err != nil {
			return err
		}
		if intercept != nil {
			if received = intercept(received); received == nil {
				continue
			}
		}

		n.mtx.Lock()
		a, ok := n.acceptors[id]
		if !ok {
			n.pending[id] = append(n.pending[id], received)
		}
		n.mtx.Unlock()
		if ok {
			_ = a.Accept(received)
		}
	}
	return nil
}

type endpoint struct {
	id      party.ID
	network *Network
}

func (e *endpoint) Broadcast(_ context.Context, msg *protocol.Message) error {
	if !msg.Broadcast {
		return fmt.Errorf("test: %s is not a broadcast", msg)
	}
	return e.network.deliver(e.id, msg)
}

func (e *endpoint) SendDirect(_ context.Context, to party.ID, msg *protocol.Message) error {
	if msg.Broadcast || msg.To != to {
		return fmt.Errorf("test: %s is not a direct message to %s", msg, to)
	}
	return e.network.deliver(e.id, msg)
}
