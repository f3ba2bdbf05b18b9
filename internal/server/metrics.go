package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultOK      = "ok"
	resultAbsent  = "absent"
	resultInvalid = "invalid"
	resultError   = "error"
)

// Metrics holds the server's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	keyOps   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		keyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyhost",
			Name:      "key_operations_total",
			Help:      "Key resource operations by operation and result.",
		}, []string{"op", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keyhost",
			Name:      "http_requests_total",
			Help:      "HTTP requests by status code and method.",
		}, []string{"code", "method"}),
	}
	m.Registry.MustRegister(m.keyOps, m.requests)
	return m
}

func (m *Metrics) keyOp(op, result string) {
	if m == nil {
		return
	}
	m.keyOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(m.requests, next)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
