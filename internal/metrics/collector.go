package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector handles metrics collection and reporting for the order pipeline.
// A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	ordersProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_processed_total",
			Help: "Orders processed by final status and fulfillment type",
		},
		[]string{"status", "order_type"},
	)

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	interpretationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interpretation_failures_total",
			Help: "Model replies that fell back to the default structured order",
		},
		[]string{"reason"},
	)

	inventoryLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_lookups_total",
			Help: "Ingredient lookups by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	metrics := map[string]prometheus.Collector{
		"orders":         ordersProcessed,
		"stage_duration": stageDuration,
		"interpretation": interpretationFailures,
		"inventory":      inventoryLookups,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &Collector{
		registry: registry,
		metrics:  metrics,
	}
}

// Registry exposes the registry for the /metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordOrder counts a processed order
func (c *Collector) RecordOrder(status, orderType string) {
	if c == nil {
		return
	}
	if counter, ok := c.metrics["orders"].(*prometheus.CounterVec); ok {
		if orderType == "" {
			orderType = "none"
		}
		counter.WithLabelValues(status, orderType).Inc()
	}
}

// ObserveStage records how long a pipeline stage took
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	if histogram, ok := c.metrics["stage_duration"].(*prometheus.HistogramVec); ok {
		histogram.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// RecordInterpretationFailure counts a fallback interpretation
func (c *Collector) RecordInterpretationFailure(reason string) {
	if c == nil {
		return
	}
	if counter, ok := c.metrics["interpretation"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordInventoryLookup counts one ingredient lookup outcome
// ("available", "unavailable", "not_found").
func (c *Collector) RecordInventoryLookup(source, outcome string) {
	if c == nil {
		return
	}
	if counter, ok := c.metrics["inventory"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(source, outcome).Inc()
	}
}
