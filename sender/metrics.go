// sender/metrics.go
package sender

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successCounter    prometheus.Counter
	failureCounter    prometheus.Counter
	durationHistogram prometheus.Histogram
}

// NewMetrics создает счетчики движка. reg == nil оставляет их
// незарегистрированными (удобно в тестах и при нескольких Sender).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	successCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solanatracker_tx_success_total",
		Help: "Total number of confirmed transactions",
	})
	failureCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solanatracker_tx_failure_total",
		Help: "Total number of failed, expired or timed out transactions",
	})
	durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solanatracker_tx_duration_seconds",
		Help:    "Submission attempt duration in seconds",
		Buckets: prometheus.LinearBuckets(0, 0.5, 20),
	})

	if reg != nil {
		reg.MustRegister(successCounter, failureCounter, durationHistogram)
	}

	return &Metrics{
		successCounter:    successCounter,
		failureCounter:    failureCounter,
		durationHistogram: durationHistogram,
	}
}

func (m *Metrics) TrackSubmission(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}
