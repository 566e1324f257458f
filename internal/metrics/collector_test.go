package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()

	c.RecordOrder("completed", "pickup")
	c.RecordOrder("completed", "pickup")
	c.RecordOrder("ingredients_checked", "")
	c.RecordInterpretationFailure("parse")
	c.RecordInventoryLookup("store", "not_found")
	c.ObserveStage("check_ingredients", 15*time.Millisecond)

	orders := c.metrics["orders"].(*prometheus.CounterVec)
	assert.Equal(t, 2.0, testutil.ToFloat64(orders.WithLabelValues("completed", "pickup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(orders.WithLabelValues("ingredients_checked", "none")))

	failures := c.metrics["interpretation"].(*prometheus.CounterVec)
	assert.Equal(t, 1.0, testutil.ToFloat64(failures.WithLabelValues("parse")))

	count, err := testutil.GatherAndCount(c.Registry(), "order_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordOrder("completed", "pickup")
		c.ObserveStage("submit_order", time.Second)
		c.RecordInterpretationFailure("model")
		c.RecordInventoryLookup("sister", "available")
	})
}
