package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, metric := range family.GetMetric() {
			for key, want := range labels {
				found := false
				for _, label := range metric.GetLabel() {
					if label.GetName() == key && label.GetValue() == want {
						found = true
						break
					}
				}
				if !found {
					continue metric
				}
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func histogramCount(t *testing.T, registry *prometheus.Registry, name string) uint64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name && family.GetType() == dto.MetricType_HISTOGRAM {
			return family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func TestPlacementMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newPlacementMetricsWithRegisterer(registry)

	m.RecordOrderPlaced()
	m.RecordOrderPlaced()
	m.RecordPlacementFailed("insufficient_stock")
	m.RecordNumberRetry()
	m.RecordNotificationFailure("email")
	m.RecordEventPublished()
	m.RecordEventPublishFailure()

	if got := counterValue(t, registry, "fogandleaf_orders_placed_total", nil); got != 2 {
		t.Fatalf("orders placed: expected 2, got %v", got)
	}
	if got := counterValue(t, registry, "fogandleaf_order_placement_failed_total", map[string]string{"reason": "insufficient_stock"}); got != 1 {
		t.Fatalf("placement failed: expected 1, got %v", got)
	}
	if got := counterValue(t, registry, "fogandleaf_order_number_retries_total", nil); got != 1 {
		t.Fatalf("number retries: expected 1, got %v", got)
	}
	if got := counterValue(t, registry, "fogandleaf_notification_failures_total", map[string]string{"channel": "email"}); got != 1 {
		t.Fatalf("notification failures: expected 1, got %v", got)
	}
}

func TestPlacementMetrics_DurationAndGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newPlacementMetricsWithRegisterer(registry)

	m.PlacementStarted()
	m.PlacementStarted()
	m.PlacementFinished()
	m.RecordPlacementDuration(120 * time.Millisecond)

	if got := counterValue(t, registry, "fogandleaf_active_placements", nil); got != 1 {
		t.Fatalf("active placements: expected 1, got %v", got)
	}
	if got := histogramCount(t, registry, "fogandleaf_order_placement_duration_seconds"); got != 1 {
		t.Fatalf("duration samples: expected 1, got %d", got)
	}
}

func TestStockMetrics_MovementsByType(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newStockMetricsWithRegisterer(registry)

	m.RecordMovement("sale")
	m.RecordMovement("sale")
	m.RecordMovement("restock")

	if got := counterValue(t, registry, "fogandleaf_stock_movements_total", map[string]string{"type": "sale"}); got != 2 {
		t.Fatalf("sale movements: expected 2, got %v", got)
	}
	if got := counterValue(t, registry, "fogandleaf_stock_movements_total", map[string]string{"type": "restock"}); got != 1 {
		t.Fatalf("restock movements: expected 1, got %v", got)
	}
}

func TestDoubleRegistrationReturnsExisting(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newPlacementMetricsWithRegisterer(registry)
	second := newPlacementMetricsWithRegisterer(registry)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	if got := counterValue(t, registry, "fogandleaf_orders_placed_total", nil); got != 2 {
		t.Fatalf("both instances must share the collector, got %v", got)
	}
}
