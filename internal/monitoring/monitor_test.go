package monitoring

import (
	"testing"
	"time"

	"orderintake/internal/models"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordOrder(t *testing.T) {
	m := NewMonitor()

	price := 10.6
	completed := models.NewOrder("a pizza please", time.Now())
	completed.ID = "order-1"
	completed.Status = models.StatusCompleted
	completed.Type = models.FulfillmentPickup
	completed.IngredientsAvailable = true
	completed.TotalPrice = &price

	rejected := models.NewOrder("a pepperoni pizza", time.Now())
	rejected.ID = "order-2"
	rejected.Status = models.StatusIngredientsChecked

	m.RecordOrder(completed)
	m.RecordOrder(rejected)

	metrics := m.GetMetrics()

	if metrics["orders_total"] != 2 {
		t.Errorf("Expected 'orders_total' to be 2, but got %v", metrics["orders_total"])
	}
	if metrics["orders_completed"] != 1 {
		t.Errorf("Expected 'orders_completed' to be 1, but got %v", metrics["orders_completed"])
	}
	if metrics["orders_pickup"] != 1 {
		t.Errorf("Expected 'orders_pickup' to be 1, but got %v", metrics["orders_pickup"])
	}
	if metrics["orders_unfulfillable"] != 1 {
		t.Errorf("Expected 'orders_unfulfillable' to be 1, but got %v", metrics["orders_unfulfillable"])
	}
	if metrics["revenue_total"] != 10.6 {
		t.Errorf("Expected 'revenue_total' to be 10.6, but got %v", metrics["revenue_total"])
	}
	if metrics["last_order_id"] != "order-2" {
		t.Errorf("Expected 'last_order_id' to be order-2, but got %v", metrics["last_order_id"])
	}
}

func TestMonitor_RecordOrderNil(t *testing.T) {
	var m *Monitor
	m.RecordOrder(models.NewOrder("hi", time.Now()))

	NewMonitor().RecordOrder(nil)
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	// Our test metric should be gone, but uptime should still be there
	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on GetMetrics call)
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
