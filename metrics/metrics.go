// Package metrics collects per-run counters of the sync job and exports them
// in the Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flyer_deals"

// SyncMetrics holds the collectors of one run. All methods are safe on a nil
// receiver so callers can leave metrics out.
type SyncMetrics struct {
	registry *prometheus.Registry

	flyers        *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	dealsByStore  *prometheus.GaugeVec
	dealsUpserted prometheus.Counter
	batches       prometheus.Counter
	expired       prometheus.Counter
	duration      prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// New creates a SyncMetrics with its own registry.
func New() *SyncMetrics {
	m := &SyncMetrics{
		registry: prometheus.NewRegistry(),
		flyers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flyers_total",
				Help:      "Flyers seen, by outcome (matched, unmatched, unknown_store).",
			},
			[]string{"outcome"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Failed flyer API calls, by endpoint.",
			},
			[]string{"endpoint"},
		),
		dealsByStore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "deals_normalized",
				Help:      "Deals produced by the last fetch, by store slug.",
			},
			[]string{"store"},
		),
		dealsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_upserted_total",
			Help:      "Deals sent to the store in upsert batches.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upsert_batches_total",
			Help:      "Upsert batches written.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_deleted_total",
			Help:      "Expired deals deleted.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of the last sync.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last sync that finished without error.",
		}),
	}

	m.registry.MustRegister(
		m.flyers, m.fetchErrors, m.dealsByStore, m.dealsUpserted,
		m.batches, m.expired, m.duration, m.lastSuccess,
	)
	return m
}

func (m *SyncMetrics) FlyerSeen(outcome string) {
	if m == nil {
		return
	}
	m.flyers.WithLabelValues(outcome).Inc()
}

func (m *SyncMetrics) FetchError(endpoint string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(endpoint).Inc()
}

func (m *SyncMetrics) DealsNormalized(store string, n int) {
	if m == nil {
		return
	}
	m.dealsByStore.WithLabelValues(store).Add(float64(n))
}

func (m *SyncMetrics) BatchUpserted(n int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.dealsUpserted.Add(float64(n))
}

func (m *SyncMetrics) ExpiredDeleted(n int64) {
	if m == nil {
		return
	}
	m.expired.Add(float64(n))
}

// Finished records the run duration, and the success time when err is nil.
func (m *SyncMetrics) Finished(started, now time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Set(now.Sub(started).Seconds())
	if err == nil {
		m.lastSuccess.Set(float64(now.Unix()))
	}
}

// WriteTextfile atomically writes all metrics to path.
func (m *SyncMetrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
