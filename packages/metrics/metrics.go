// Package metrics exposes prometheus collectors for built and submitted transactions and for provider requests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors of a pipeline. All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry              *prometheus.Registry
	transactionsBuilt     *prometheus.CounterVec
	transactionsSubmitted *prometheus.CounterVec
	providerRequests      *prometheus.HistogramVec
	providerFallbacks     *prometheus.CounterVec
}

// New creates the collectors and registers them in a fresh registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactionsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_built_total",
			Help:      "Number of transactions built by type.",
		}, []string{"type"}),
		transactionsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_submitted_total",
			Help:      "Number of transactions submitted to a node by type and acceptance.",
		}, []string{"type", "accepted"}),
		providerRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider requests by provider, operation and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation", "success"}),
		providerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fallbacks_total",
			Help:      "Number of times the secondary provider was asked because the primary failed.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.transactionsBuilt, m.transactionsSubmitted, m.providerRequests, m.providerFallbacks)

	return m
}

// Registry returns the registry that holds the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// TransactionBuilt counts a built transaction.
func (m *Metrics) TransactionBuilt(transactionType string) {
	if m == nil {
		return
	}

	m.transactionsBuilt.WithLabelValues(transactionType).Inc()
}

// TransactionSubmitted counts a submission and whether the node accepted it.
func (m *Metrics) TransactionSubmitted(transactionType string, accepted bool) {
	if m == nil {
		return
	}

	m.transactionsSubmitted.WithLabelValues(transactionType, strconv.FormatBool(accepted)).Inc()
}

// ProviderRequest records the duration of a provider request.
func (m *Metrics) ProviderRequest(provider, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	m.providerRequests.WithLabelValues(provider, operation, strconv.FormatBool(err == nil)).Observe(duration.Seconds())
}

// ProviderFallback counts a fallback to the secondary provider.
func (m *Metrics) ProviderFallback(operation string) {
	if m == nil {
		return
	}

	m.providerFallbacks.WithLabelValues(operation).Inc()
}
