package kafka

import (
	"encoding/json"
	"testing"
)

func TestNewOrderPlacedEvent(t *testing.T) {
	event := NewOrderPlacedEvent("order-1", "FOG2025010007", "customer-1", 174800, 2)

	if event.EventType != EventTypeOrderPlaced {
		t.Fatalf("expected %s, got %s", EventTypeOrderPlaced, event.EventType)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["event_type"] != "order.placed" || decoded["order_number"] != "FOG2025010007" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}

func TestNewStockMovementEvent(t *testing.T) {
	event := NewStockMovementEvent("darjeeling", "sale", -2, 10, 8, "order-1")

	if event.EventType != EventTypeStockMovement {
		t.Fatalf("expected %s, got %s", EventTypeStockMovement, event.EventType)
	}
	if event.NewStock != event.PreviousStock+event.QtyDelta {
		t.Fatalf("event must carry consistent levels: %+v", event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["reference_id"] != "order-1" {
		t.Fatalf("reference must survive serialization: %v", decoded)
	}
}
