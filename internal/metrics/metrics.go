package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketplace"

var (
	once sync.Once

	clientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Backend API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "Backend API latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_operations_total",
			Help:      "Booking create/confirm/cancel attempts by result.",
		},
		[]string{"operation", "result"},
	)

	balanceChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_checks_total",
			Help:      "Wallet balance gate outcomes.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(clientRequests, clientDuration, bookingOperations, balanceChecks)
	})
}

// ObserveRequest records one backend call.
func ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	clientRequests.WithLabelValues(endpoint, outcome).Inc()
	clientDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// IncBookingOperation counts a lifecycle operation result ("ok", "rejected",
// "invalid", "blocked").
func IncBookingOperation(operation, result string) {
	bookingOperations.WithLabelValues(operation, result).Inc()
}

// IncBalanceCheck counts a gate result ("sufficient", "insufficient",
// "unavailable").
func IncBalanceCheck(result string) {
	balanceChecks.WithLabelValues(result).Inc()
}
