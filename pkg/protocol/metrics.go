package protocol

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/taurusgroup/mpc-sign/internal/round"
)

// Metrics collects round latencies and aborts of the Managers sharing it.
type Metrics struct {
	roundDuration *prometheus.HistogramVec
	aborts        *prometheus.CounterVec
}

// NewMetrics registers the protocol collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		roundDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mpc",
			Subsystem: "protocol",
			Name:      "round_duration_seconds",
			Help:      "Time between entering a round and finalizing it",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"protocol", "round"}),
		aborts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpc",
			Subsystem: "protocol",
			Name:      "aborts_total",
			Help:      "Protocol executions that ended with an error",
		}, []string{"protocol", "round"}),
	}
}

func (m *Metrics) observeRound(protocol string, number round.Number, duration time.Duration) {
	if m == nil {
		return
	}
	m.roundDuration.WithLabelValues(protocol, strconv.Itoa(int(number))).Observe(duration.Seconds())
}

func (m *Metrics) observeAbort(protocol string, number round.Number) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(protocol, strconv.Itoa(int(number))).Inc()
}
