package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutations, checkouts and failed blob writes.
type CartMetrics struct {
	mutations     *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	writeFailures prometheus.Counter
}

// NewCartMetrics registers the cart metrics on reg. A nil registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart commands dispatched, by command kind and outcome.",
	}, []string{"kind", "outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Completed checkouts, by shipping method.",
	}, []string{"shipping"})
	writeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_blob_write_failures_total",
		Help: "Cart blob writes that failed.",
	})
	reg.MustRegister(mutations, checkouts, writeFailures)
	return &CartMetrics{mutations: mutations, checkouts: checkouts, writeFailures: writeFailures}
}

func (m *CartMetrics) IncMutation(kind, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func (m *CartMetrics) IncCheckout(shipping string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(shipping)).Inc()
}

func (m *CartMetrics) IncWriteFailure() {
	if m == nil || m.writeFailures == nil {
		return
	}
	m.writeFailures.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
