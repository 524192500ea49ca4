// Package metrics exposes Prometheus collectors for the relay service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	relayMessagesTotal         *prometheus.CounterVec
	relayEnrichmentsTotal      *prometheus.CounterVec
	relayEnrichmentDurationSec prometheus.Histogram
	relayDeliveriesTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times;
// the recording helpers call it themselves so test binaries need no setup.
func Init() {
	once.Do(func() {
		relayMessagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_messages_total",
				Help: "Inbound messages handled, labeled by producer format and outcome.",
			},
			[]string{"format", "outcome"},
		)

		relayEnrichmentsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_enrichments_total",
				Help: "Enrichment attempts, labeled by outcome (ok, failed, skipped).",
			},
			[]string{"outcome"},
		)

		relayEnrichmentDurationSec = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relay_enrichment_duration_seconds",
				Help:    "Histogram of product page fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
		)

		relayDeliveriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_deliveries_total",
				Help: "Outbound webhook deliveries, labeled by destination and status.",
			},
			[]string{"destination", "status"},
		)
	})
}

// MessagesTotal counts one handled inbound message.
func MessagesTotal(format, outcome string) {
	Init()
	relayMessagesTotal.WithLabelValues(format, outcome).Inc()
}

// EnrichmentsTotal counts one enrichment attempt.
func EnrichmentsTotal(outcome string) {
	Init()
	relayEnrichmentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveEnrichmentDuration records one product page fetch latency.
func ObserveEnrichmentDuration(d time.Duration) {
	Init()
	relayEnrichmentDurationSec.Observe(d.Seconds())
}

// DeliveriesTotal counts one outbound delivery attempt.
func DeliveriesTotal(destination, status string) {
	Init()
	relayDeliveriesTotal.WithLabelValues(destination, status).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
