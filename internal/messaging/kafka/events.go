package kafka

import "time"

// EventType определяет тип публикуемого события.
type EventType string

const (
	// Order события
	EventTypeOrderPlaced EventType = "order.placed"

	// Stock события
	EventTypeStockMovement EventType = "stock.movement"
)

// Topics для Kafka
const (
	TopicOrderEvents = "fogandleaf.order.events"
	TopicStockEvents = "fogandleaf.stock.events"
)

// OrderPlacedEvent публикуется после коммита транзакции размещения.
type OrderPlacedEvent struct {
	EventType   EventType `json:"event_type"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id"`
	TotalMinor  int64     `json:"total_minor"`
	LineCount   int       `json:"line_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// StockMovementEvent описывает одно движение стока.
type StockMovementEvent struct {
	EventType     EventType `json:"event_type"`
	ProductID     string    `json:"product_id"`
	MovementType  string    `json:"movement_type"`
	QtyDelta      int32     `json:"qty_delta"`
	PreviousStock int32     `json:"previous_stock"`
	NewStock      int32     `json:"new_stock"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewOrderPlacedEvent создаёт событие размещённого заказа.
func NewOrderPlacedEvent(orderID, orderNumber, customerID string, totalMinor int64, lineCount int) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		EventType:   EventTypeOrderPlaced,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		TotalMinor:  totalMinor,
		LineCount:   lineCount,
		Timestamp:   time.Now(),
	}
}

// NewStockMovementEvent создаёт событие движения стока.
func NewStockMovementEvent(productID, movementType string, delta, previous, next int32, referenceID string) *StockMovementEvent {
	return &StockMovementEvent{
		EventType:     EventTypeStockMovement,
		ProductID:     productID,
		MovementType:  movementType,
		QtyDelta:      delta,
		PreviousStock: previous,
		NewStock:      next,
		ReferenceID:   referenceID,
		Timestamp:     time.Now(),
	}
}
