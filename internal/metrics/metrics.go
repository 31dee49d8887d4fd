// Package metrics exposes Prometheus counters for the mesh processes.
// A nil *Metrics records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeConfident = "confident"
	OutcomeMiss      = "miss"
	OutcomeError     = "error"
)

// Metrics holds the counters of one process.
type Metrics struct {
	registry     *prometheus.Registry
	peerCalls    *prometheus.CounterVec
	localAnswers *prometheus.CounterVec
	heartbeats   *prometheus.CounterVec
	resolves     *prometheus.CounterVec
}

// New creates the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		peerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mesh",
			Name:      "peer_calls_total",
			Help:      "Calls to other mesh processes by layer and outcome.",
		}, []string{"layer", "outcome"}),
		localAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mesh",
			Name:      "local_answers_total",
			Help:      "Local answer engine results.",
		}, []string{"outcome"}),
		heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mesh",
			Name:      "heartbeats_total",
			Help:      "Registry heartbeats by outcome.",
		}, []string{"outcome"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mesh",
			Name:      "coordinator_resolves_total",
			Help:      "Coordinator resolves by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.peerCalls, m.localAnswers, m.heartbeats, m.resolves)
	return m
}

// PeerCall counts one call to a peer; err decides the outcome label.
func (m *Metrics) PeerCall(layer string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = string(domain.PeerErrorKindOf(err))
		if outcome == "" {
			outcome = OutcomeError
		}
	}
	m.peerCalls.WithLabelValues(layer, outcome).Inc()
}

// LocalAnswer counts one local engine result.
func (m *Metrics) LocalAnswer(outcome string) {
	if m == nil {
		return
	}
	m.localAnswers.WithLabelValues(outcome).Inc()
}

// Heartbeat counts one registration attempt.
func (m *Metrics) Heartbeat(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.heartbeats.WithLabelValues(outcome).Inc()
}

// Resolve counts one coordinator resolve.
func (m *Metrics) Resolve(outcome string) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
