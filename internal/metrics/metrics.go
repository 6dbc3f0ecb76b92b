// Package metrics records what a catalog build did and pushes it to a
// Prometheus Pushgateway at the end of the run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// BuildMetrics holds one run's collectors on a private registry, so repeated
// builds in one process never collide on registration.
type BuildMetrics struct {
	registry *prometheus.Registry

	PartsAdded         *prometheus.CounterVec
	SubcategoriesAdded prometheus.Counter
	CatalogParts       prometheus.Gauge
	BatchDuration      *prometheus.HistogramVec
	PublishFailures    *prometheus.CounterVec
	LastSuccess        prometheus.Gauge
}

func New() *BuildMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &BuildMetrics{
		registry: reg,
		PartsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_parts_added_total",
				Help: "Parts appended to the catalog by this build",
			},
			[]string{"category", "subcategory"},
		),
		SubcategoriesAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_subcategories_added_total",
				Help: "Subcategory nodes appended by this build",
			},
		),
		CatalogParts: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_parts",
				Help: "totalParts of the saved catalog",
			},
		),
		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_batch_duration_seconds",
				Help:    "Time spent assembling one batch",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"batch"},
		),
		PublishFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_publish_failures_total",
				Help: "Publish steps that failed after the catalog was saved",
			},
			[]string{"sink"},
		),
		LastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_last_success_timestamp_seconds",
				Help: "Unix time of the last successful save",
			},
		),
	}
}

func (m *BuildMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBatch records how long the batch took since start.
func (m *BuildMetrics) ObserveBatch(batch string, start time.Time) {
	m.BatchDuration.WithLabelValues(batch).Observe(time.Since(start).Seconds())
}

// Push replaces the job's metric group on the gateway.
func (m *BuildMetrics) Push(ctx context.Context, gatewayURL, job string) error {
	err := push.New(gatewayURL, job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
