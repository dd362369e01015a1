// Package metrics exposes Prometheus counters for upstream fetches and the
// live reading relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeStatus       = "status_error"
	OutcomeParse        = "parse_error"
	OutcomeTransport    = "transport_error"

	ReadingApplied = "applied"
	ReadingIgnored = "ignored"
	ReadingInvalid = "invalid"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motordash_upstream_requests_total",
		Help: "Requests made to the motor-monitoring API, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	liveReadings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "motordash_live_readings_total",
		Help: "Push-channel readings received by detail pages, by result.",
	}, []string{"result"})

	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "motordash_live_sessions",
		Help: "Open detail-page live sessions.",
	})
)

// ObserveUpstream counts one upstream request.
func ObserveUpstream(endpoint, outcome string) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveReading counts one push-channel reading.
func ObserveReading(result string) {
	liveReadings.WithLabelValues(result).Inc()
}

// SessionOpened and SessionClosed track live detail sessions.
func SessionOpened() { liveSessions.Inc() }
func SessionClosed() { liveSessions.Dec() }

// Handler serves the default registry in the exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
