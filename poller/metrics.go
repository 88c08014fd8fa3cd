package poller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "filepoll"

// Metrics holds the poller's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	received       prometheus.Counter
	delivered      prometheus.Counter
	failed         prometheus.Counter
	scanErrors     prometheus.Counter
	handleDuration prometheus.Histogram
}

// NewMetrics creates the poller collectors and registers them with reg.
// It panics if the collectors are already registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "received_total",
			Help:      "Messages received from the source.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "delivered_total",
			Help:      "Messages the handler accepted.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failed_total",
			Help:      "Messages returned to the source after the handler failed every attempt.",
		}),
		scanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scan_errors_total",
			Help:      "Receive calls that failed, usually because the directory could not be listed.",
		}),
		handleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one message, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.received, m.delivered, m.failed, m.scanErrors, m.handleDuration)
	return m
}

func (m *Metrics) observeReceived() {
	if m != nil {
		m.received.Inc()
	}
}

func (m *Metrics) observeScanError() {
	if m != nil {
		m.scanErrors.Inc()
	}
}

func (m *Metrics) observeHandled(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.handleDuration.Observe(elapsed.Seconds())
	if ok {
		m.delivered.Inc()
	} else {
		m.failed.Inc()
	}
}
