package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики пути размещения заказов.
type PlacementMetrics struct {
	// Счётчики исходов
	ordersPlaced     prometheus.Counter
	placementFailed  *prometheus.CounterVec
	numberRetries    prometheus.Counter
	notifyFailures   *prometheus.CounterVec
	eventsPublished  prometheus.Counter
	eventPublishFail prometheus.Counter

	// Гистограмма времени размещения
	placementDuration prometheus.Histogram

	// Gauge активных размещений
	activePlacements prometheus.Gauge
}

// NewPlacementMetrics создаёт метрики размещения в default registry.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		placementFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_order_placement_failed_total",
			Help: "Total number of failed order placements grouped by reason",
		}, []string{"reason"}),
		numberRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_order_number_retries_total",
			Help: "Total number of order number collision retries",
		}),
		notifyFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_notification_failures_total",
			Help: "Total number of post-commit notification failures grouped by channel",
		}, []string{"channel"}),
		eventsPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_order_events_published_total",
			Help: "Total number of order events published to the broker",
		}),
		eventPublishFail: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_order_events_publish_failed_total",
			Help: "Total number of order event publish failures",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fogandleaf_order_placement_duration_seconds",
			Help:    "Duration of order placement transactions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fogandleaf_active_placements",
			Help: "Number of order placements currently in flight",
		}),
	}
}

// RecordOrderPlaced увеличивает счётчик успешно размещённых заказов.
func (m *PlacementMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordPlacementFailed увеличивает счётчик отказов размещения по причине.
func (m *PlacementMetrics) RecordPlacementFailed(reason string) {
	m.placementFailed.WithLabelValues(reason).Inc()
}

// RecordNumberRetry увеличивает счётчик ретраев нумерации.
func (m *PlacementMetrics) RecordNumberRetry() {
	m.numberRetries.Inc()
}

// RecordNotificationFailure увеличивает счётчик отказов уведомлений по каналу.
func (m *PlacementMetrics) RecordNotificationFailure(channel string) {
	m.notifyFailures.WithLabelValues(channel).Inc()
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *PlacementMetrics) RecordEventPublished() {
	m.eventsPublished.Inc()
}

// RecordEventPublishFailure увеличивает счётчик отказов публикации.
func (m *PlacementMetrics) RecordEventPublishFailure() {
	m.eventPublishFail.Inc()
}

// RecordPlacementDuration фиксирует длительность размещения.
func (m *PlacementMetrics) RecordPlacementDuration(d time.Duration) {
	m.placementDuration.Observe(d.Seconds())
}

// PlacementStarted отмечает начало размещения.
func (m *PlacementMetrics) PlacementStarted() {
	m.activePlacements.Inc()
}

// PlacementFinished отмечает завершение размещения.
func (m *PlacementMetrics) PlacementFinished() {
	m.activePlacements.Dec()
}

// StockMetrics содержит метрики леджера стока.
type StockMetrics struct {
	movements *prometheus.CounterVec
}

// NewStockMetrics создаёт метрики стока в default registry.
func NewStockMetrics() *StockMetrics {
	return newStockMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStockMetricsWithRegisterer(registerer prometheus.Registerer) *StockMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StockMetrics{
		movements: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fogandleaf_stock_movements_total",
			Help: "Total number of stock movements recorded grouped by movement type",
		}, []string{"type"}),
	}
}

// RecordMovement увеличивает счётчик движений стока по типу.
func (m *StockMetrics) RecordMovement(movementType string) {
	m.movements.WithLabelValues(movementType).Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
