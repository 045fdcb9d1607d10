// Package metrics records per-run transfer metrics. Each run owns its registry,
// which is written to a node-exporter textfile when configured.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "side"
	subsystem = "transfer"

	BroadcastAccepted = "accepted"
	BroadcastRejected = "rejected"
	BroadcastFailed   = "failed"
	BroadcastSkipped  = "dry_run"
)

// Transfer holds the collectors for one transfer run
type Transfer struct {
	registry *prometheus.Registry

	phaseDuration  *prometheus.HistogramVec
	phaseFailures  *prometheus.CounterVec
	broadcasts     *prometheus.CounterVec
	lookupAttempts prometheus.Counter
	lastSuccess    prometheus.Gauge
}

// NewTransfer creates the collectors and registers them on a fresh registry
func NewTransfer() *Transfer {
	m := &Transfer{
		registry: prometheus.NewRegistry(),

		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phase_duration_seconds",
				Help:      "Time spent in each transfer phase",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"phase"}, // derivation, account_lookup, assembly, signing, broadcast
		),

		phaseFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phase_failures_total",
				Help:      "Number of transfers that failed in each phase",
			},
			[]string{"phase"},
		),

		broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "broadcasts_total",
				Help:      "Broadcast outcomes",
			},
			[]string{"result"}, // accepted, rejected, failed, dry_run
		),

		lookupAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "account_lookup_attempts_total",
				Help:      "Account lookup requests including retries",
			},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last accepted broadcast",
			},
		),
	}

	m.registry.MustRegister(m.phaseDuration, m.phaseFailures, m.broadcasts, m.lookupAttempts, m.lastSuccess)

	return m
}

// Registry exposes the run's registry
func (m *Transfer) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePhase records how long phase took and whether it failed
func (m *Transfer) ObservePhase(phase string, duration time.Duration, err error) {
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
	if err != nil {
		m.phaseFailures.WithLabelValues(phase).Inc()
	}
}

func (m *Transfer) RecordLookupAttempt() {
	m.lookupAttempts.Inc()
}

// RecordBroadcast counts a broadcast outcome
func (m *Transfer) RecordBroadcast(result string) {
	m.broadcasts.WithLabelValues(result).Inc()
	if result == BroadcastAccepted {
		m.lastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in text exposition format. An empty path is a no-op.
func (m *Transfer) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}

	return nil
}
