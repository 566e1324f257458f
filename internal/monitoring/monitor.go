package monitoring

import (
	"sync"
	"time"

	"orderintake/internal/models"
)

// Monitor keeps an in-process snapshot of order activity for the stats endpoint
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordOrder updates the order counters from a processed order. It is safe
// to call on a nil Monitor.
func (m *Monitor) RecordOrder(order *models.Order) {
	if m == nil || order == nil {
		return
	}
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	m.increment("orders_total")
	m.increment("orders_" + string(order.Status))
	if order.Type != models.FulfillmentUnset {
		m.increment("orders_" + string(order.Type))
	}
	if !order.IngredientsAvailable {
		m.increment("orders_unfulfillable")
	}
	if order.Intent == "unknown" {
		m.increment("orders_uninterpreted")
	}
	if order.TotalPrice != nil {
		revenue, _ := m.metrics["revenue_total"].(float64)
		m.metrics["revenue_total"] = revenue + *order.TotalPrice
	}

	m.metrics["last_order_id"] = order.ID
	m.metrics["last_order_at"] = time.Now().Format(time.RFC3339)
}

// increment must be called with the mutex held
func (m *Monitor) increment(name string) {
	n, _ := m.metrics[name].(int)
	m.metrics[name] = n + 1
}
