package protocol_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/internal/test"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/pool"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
)

// recorder is a Transport which keeps every message it is given.
type recorder struct {
	mtx  sync.Mutex
	sent []*protocol.Message
}

func (r *recorder) Broadcast(_ context.Context, msg *protocol.Message) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorder) SendDirect(_ context.Context, _ party.ID, msg *protocol.Message) error {
	return r.Broadcast(context.Background(), msg)
}

func (r *recorder) messages() []*protocol.Message {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]*protocol.Message(nil), r.sent...)
}

func (r *recorder) find(f func(msg *protocol.Message) bool) *protocol.Message {
	for _, msg := range r.messages() {
		if f(msg) {
			return msg
		}
	}
	return nil
}

func broadcastFrom(msg *protocol.Message) bool { return msg.Broadcast }

func directTo(id party.ID) func(msg *protocol.Message) bool {
	return func(msg *protocol.Message) bool { return !msg.Broadcast && msg.To == id }
}

var _ = Describe("Manager", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		partyIDs  party.IDSlice
		sessionID []byte
		logger    zerolog.Logger
	)

	values := map[party.ID]uint32{"a": 1, "b": 2, "c": 3}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		partyIDs = test.PartyIDs(3)
		sessionID = []byte("manager test")
		logger = zerolog.New(GinkgoWriter).Level(zerolog.DebugLevel)
	})

	AfterEach(func() {
		cancel()
	})

	start := func(id party.ID, opts ...protocol.Option) *protocol.Manager {
		opts = append([]protocol.Option{protocol.WithLogger(logger)}, opts...)
		m, err := protocol.NewManager(ctx, startSum(id, partyIDs, values[id]), sessionID, opts...)
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	// startRecorded starts every party with its own recorder, and waits for their first round.
	startRecorded := func() (map[party.ID]*protocol.Manager, map[party.ID]*recorder) {
		managers := map[party.ID]*protocol.Manager{}
		recorders := map[party.ID]*recorder{}
		for _, id := range partyIDs {
			recorders[id] = &recorder{}
			managers[id] = start(id, protocol.WithTransport(recorders[id]))
		}
		for _, id := range partyIDs {
			rec := recorders[id]
			Eventually(func() int { return len(rec.messages()) }).Should(Equal(len(partyIDs)))
		}
		return managers, recorders
	}

	Describe("over an in-memory network", func() {
		It("gives every party the same result", func() {
			network := test.NewNetwork(partyIDs)
			managers := map[party.ID]*protocol.Manager{}
			for _, id := range partyIDs {
				managers[id] = start(id, protocol.WithTransport(network.Endpoint(id)), protocol.WithPool(pool.NewPool(2)))
				network.Register(id, managers[id])
			}
			for id, m := range managers {
				result, err := m.Wait(ctx)
				Expect(err).NotTo(HaveOccurred(), string(id))
				Expect(result).To(Equal(uint32(6)))
			}
			for _, id := range partyIDs {
				sent := network.Sent(id)
				Expect(sent).To(HaveLen(len(partyIDs)))
				for _, msg := range sent {
					Expect(msg.To).NotTo(Equal(id))
				}
			}
		})

		It("names the culprit of an inconsistent direct message", func() {
			network := test.NewNetwork(partyIDs)
			network.Intercept(func(msg *protocol.Message) *protocol.Message {
				if msg.From == "b" && msg.To == "a" {
					msg.Data = []byte(`{"Value":42}`)
				}
				return msg
			})
			managers := map[party.ID]*protocol.Manager{}
			for _, id := range partyIDs {
				managers[id] = start(id, protocol.WithTransport(network.Endpoint(id)))
				network.Register(id, managers[id])
			}

			_, err := managers["a"].Wait(ctx)
			Expect(err).To(HaveOccurred())
			var protocolErr protocol.Error
			Expect(errors.As(err, &protocolErr)).To(BeTrue())
			Expect(protocolErr.Culprit).To(Equal(party.ID("b")))
			Expect(protocolErr.RoundNumber).To(Equal(round.Number(2)))
			Expect(err).To(MatchError(errValueMismatch))

			for _, id := range []party.ID{"b", "c"} {
				result, err := managers[id].Wait(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal(uint32(6)))
			}
		})
	})

	Describe("quorum", func() {
		It("waits for the broadcast of every party", func() {
			managers, recorders := startRecorded()
			a := managers["a"]

			for _, from := range []party.ID{"b", "c"} {
				Expect(a.Accept(recorders[from].find(directTo("a")))).To(Succeed())
			}
			Expect(a.Accept(recorders["b"].find(broadcastFrom))).To(Succeed())
			Consistently(a.Done(), 200*time.Millisecond).ShouldNot(BeClosed())

			_, err := a.Result()
			Expect(err).To(MatchError(protocol.ErrNotFinished))

			Expect(a.Accept(recorders["c"].find(broadcastFrom))).To(Succeed())
			Eventually(a.Done()).Should(BeClosed())
			Expect(a.Result()).To(Equal(uint32(6)))
		})
	})

	Describe("Accept", func() {
		var (
			a         *protocol.Manager
			recorders map[party.ID]*recorder
			broadcast *protocol.Message
		)

		BeforeEach(func() {
			var managers map[party.ID]*protocol.Manager
			managers, recorders = startRecorded()
			a = managers["a"]
			broadcast = recorders["b"].find(broadcastFrom)
		})

		It("rejects duplicates and conflicting messages", func() {
			Expect(a.Accept(broadcast)).To(Succeed())
			Expect(a.Accept(broadcast)).To(MatchError(protocol.ErrDuplicate))

			conflicting := *broadcast
			conflicting.Data = []byte(`{"Value":7}`)
			Expect(a.Accept(&conflicting)).To(MatchError(protocol.ErrEquivocation))
		})

		It("rejects messages of another execution", func() {
			wrongSSID := *broadcast
			wrongSSID.SSID = []byte("other")
			Expect(a.Accept(&wrongSSID)).To(MatchError(protocol.ErrWrongSSID))

			wrongProtocol := *broadcast
			wrongProtocol.Protocol = "test/other"
			Expect(a.Accept(&wrongProtocol)).To(MatchError(protocol.ErrWrongProtocolID))

			unknown := *broadcast
			unknown.From = "z"
			Expect(a.Accept(&unknown)).To(MatchError(protocol.ErrUnknownSender))

			tooLate := *broadcast
			tooLate.RoundNumber = 3
			Expect(a.Accept(&tooLate)).To(MatchError(protocol.ErrInvalidRoundNumber))
		})

		It("rejects direct messages for another party", func() {
			Expect(a.Accept(recorders["b"].find(directTo("c")))).To(MatchError(protocol.ErrWrongDestination))
		})

		It("rejects malformed headers", func() {
			Expect(a.Accept(&protocol.Message{})).To(MatchError(protocol.ErrNilContent))

			noRecipient := *recorders["b"].find(directTo("a"))
			noRecipient.To = ""
			Expect(a.Accept(&noRecipient)).To(MatchError(protocol.ErrInvalidTo))
		})
	})

	Describe("stopping", func() {
		It("discards its state and emits nothing further", func() {
			managers, recorders := startRecorded()
			a := managers["a"]
			a.Stop()
			Eventually(a.Done()).Should(BeClosed())

			for _, from := range []party.ID{"b", "c"} {
				Expect(a.Accept(recorders[from].find(broadcastFrom))).To(MatchError(protocol.ErrFinished))
			}
			_, err := a.Result()
			Expect(err).To(MatchError(protocol.ErrStopped))
			Consistently(func() int { return len(recorders["a"].messages()) }, 200*time.Millisecond).Should(Equal(len(partyIDs)))
		})

		It("cancels the context handed to the rounds", func() {
			var roundCtx context.Context
			capture := func(c context.Context, id []byte) (round.Session, error) {
				roundCtx = c
				return startSum("a", partyIDs, 1)(c, id)
			}
			m, err := protocol.NewManager(ctx, capture, sessionID, protocol.WithTransport(&recorder{}), protocol.WithLogger(logger))
			Expect(err).NotTo(HaveOccurred())
			Expect(roundCtx.Err()).NotTo(HaveOccurred())

			m.Stop()
			Eventually(roundCtx.Done()).Should(BeClosed())
		})

		It("stops when its context is cancelled", func() {
			managers, _ := startRecorded()
			cancel()
			for _, m := range managers {
				Eventually(m.Done()).Should(BeClosed())
				_, err := m.Result()
				Expect(err).To(MatchError(context.Canceled))
			}
		})
	})

	Describe("NewManager", func() {
		It("requires a transport", func() {
			_, err := protocol.NewManager(ctx, startSum("a", partyIDs, 1), sessionID)
			Expect(err).To(MatchError(protocol.ErrNoTransport))
		})

		It("reports a failing start before any round", func() {
			rec := &recorder{}
			_, err := protocol.NewManager(ctx, startSum("z", partyIDs, 1), sessionID, protocol.WithTransport(rec))
			Expect(err).To(HaveOccurred())
			var protocolErr protocol.Error
			Expect(errors.As(err, &protocolErr)).To(BeTrue())
			Expect(protocolErr.RoundNumber).To(BeZero())
			Expect(rec.messages()).To(BeEmpty())
		})
	})

	Describe("metrics", func() {
		It("observes the duration of every round", func() {
			registry := prometheus.NewRegistry()
			metrics := protocol.NewMetrics(registry)
			network := test.NewNetwork(partyIDs)
			managers := map[party.ID]*protocol.Manager{}
			for _, id := range partyIDs {
				managers[id] = start(id, protocol.WithTransport(network.Endpoint(id)), protocol.WithMetrics(metrics))
				network.Register(id, managers[id])
			}
			for _, m := range managers {
				_, err := m.Wait(ctx)
				Expect(err).NotTo(HaveOccurred())
			}

			families, err := registry.Gather()
			Expect(err).NotTo(HaveOccurred())
			var observed uint64
			for _, family := range families {
				if family.GetName() != "mpc_protocol_round_duration_seconds" {
					continue
				}
				for _, metric := range family.GetMetric() {
					observed += metric.GetHistogram().GetSampleCount()
				}
			}
			Expect(observed).To(Equal(uint64(2 * len(partyIDs))))
		})
	})
})
