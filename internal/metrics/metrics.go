// Package metrics exposes Prometheus collectors for the stock monitor.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal          *prometheus.CounterVec
	checkDurationSeconds *prometheus.HistogramVec
	notificationsTotal   *prometheus.CounterVec
	modalOutcomesTotal   *prometheus.CounterVec
	cyclesTotal          prometheus.Counter
	browserSetupFailures prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		checksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_checks_total",
				Help: "Total stock checks performed, labeled by product and verdict.",
			},
			[]string{"product", "verdict"},
		)

		checkDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_check_duration_seconds",
				Help:    "Histogram of per-product check latencies, labeled by strategy.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
			},
			[]string{"strategy"},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_notifications_total",
				Help: "Total notification attempts, labeled by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		)

		modalOutcomesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_pincode_modal_total",
				Help: "Pincode overlay resolutions, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		cyclesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stock_monitor_cycles_total",
				Help: "Completed monitoring passes over the product list.",
			},
		)

		browserSetupFailures = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stock_browser_setup_failures_total",
				Help: "Headless browser sessions that failed to start.",
			},
		)
	})
}

// RecordCheck counts one finished check and its latency.
func RecordCheck(product, verdict, strategy string, elapsed time.Duration) {
	if checksTotal == nil {
		return
	}
	checksTotal.WithLabelValues(product, verdict).Inc()
	checkDurationSeconds.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// RecordNotification counts a channel send attempt.
func RecordNotification(channel string, ok bool) {
	if notificationsTotal == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	notificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordModal counts a pincode overlay resolution outcome.
func RecordModal(outcome string) {
	if modalOutcomesTotal == nil {
		return
	}
	modalOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordCycle counts a completed monitoring pass.
func RecordCycle() {
	if cyclesTotal == nil {
		return
	}
	cyclesTotal.Inc()
}

// RecordBrowserSetupFailure counts a failed browser session start.
func RecordBrowserSetupFailure() {
	if browserSetupFailures == nil {
		return
	}
	browserSetupFailures.Inc()
}
