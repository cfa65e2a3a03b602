package stock

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/memory"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.ErrorLevel)
	return logger.WithField("test", "stock")
}

func seedProduct(t *testing.T, store *memory.Store, id string, qty int32) {
	t.Helper()
	store.PutProduct(domain.Product{
		ID:            id,
		Name:          "Darjeeling First Flush",
		Category:      "black",
		PriceMinor:    84900,
		StockQuantity: qty,
	})
}

func applyMovement(t *testing.T, store *memory.Store, ledger *Ledger, req MovementRequest) (domain.StockLevel, error) {
	t.Helper()
	var level domain.StockLevel
	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		var applyErr error
		level, applyErr = ledger.ApplyMovement(tx, req)
		return applyErr
	})
	return level, err
}

func TestLedger_SaleDecrementsAndAudits(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 10)
	ledger := NewLedgerWithoutMetrics(testLogger())

	level, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID:   "darjeeling",
		Type:        domain.MovementTypeSale,
		QtyDelta:    -3,
		Reason:      "order FOG2025010001",
		ReferenceID: "order-1",
		Automated:   true,
	})
	if err != nil {
		t.Fatalf("apply movement: %v", err)
	}
	if level.Previous != 10 || level.New != 7 {
		t.Fatalf("expected 10 -> 7, got %d -> %d", level.Previous, level.New)
	}

	product, err := store.GetProduct("darjeeling")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.StockQuantity != 7 {
		t.Fatalf("expected stock 7, got %d", product.StockQuantity)
	}

	movements := store.Movements()
	if len(movements) != 1 {
		t.Fatalf("expected one movement, got %d", len(movements))
	}
	m := movements[0]
	if m.Type != domain.MovementTypeSale || m.QtyDelta != -3 {
		t.Fatalf("unexpected movement: type=%s delta=%d", m.Type, m.QtyDelta)
	}
	if m.PreviousStock != 10 || m.NewStock != 7 {
		t.Fatalf("unexpected movement levels: %d -> %d", m.PreviousStock, m.NewStock)
	}
	if m.ReferenceID != "order-1" || !m.Automated {
		t.Fatalf("movement must reference the order and be automated")
	}
}

func TestLedger_InsufficientStockRejects(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 2)
	ledger := NewLedgerWithoutMetrics(testLogger())

	_, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID: "darjeeling",
		Type:      domain.MovementTypeSale,
		QtyDelta:  -5,
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Requested != 5 || insufficient.Available != 2 {
		t.Fatalf("unexpected detail: requested=%d available=%d", insufficient.Requested, insufficient.Available)
	}

	// Отказ не должен менять ни остаток, ни журнал.
	product, _ := store.GetProduct("darjeeling")
	if product.StockQuantity != 2 {
		t.Fatalf("stock must stay 2, got %d", product.StockQuantity)
	}
	if len(store.Movements()) != 0 {
		t.Fatal("no movement must be recorded on failure")
	}
}

func TestLedger_ClampedRemoveStopsAtZero(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 3)
	ledger := NewLedgerWithoutMetrics(testLogger())

	level, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID:   "darjeeling",
		Type:        domain.MovementTypeAdjustment,
		QtyDelta:    -10,
		ClampAtZero: true,
		Reason:      "damaged batch",
	})
	if err != nil {
		t.Fatalf("apply movement: %v", err)
	}
	if level.Previous != 3 || level.New != 0 {
		t.Fatalf("expected 3 -> 0, got %d -> %d", level.Previous, level.New)
	}

	movements := store.Movements()
	if len(movements) != 1 {
		t.Fatalf("expected one movement, got %d", len(movements))
	}
	// Аудит фиксирует фактическую дельту, а не запрошенную.
	if movements[0].QtyDelta != -3 {
		t.Fatalf("expected recorded delta -3, got %d", movements[0].QtyDelta)
	}
}

func TestLedger_ClampOnZeroStockIsNoOp(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 0)
	ledger := NewLedgerWithoutMetrics(testLogger())

	level, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID:   "darjeeling",
		Type:        domain.MovementTypeAdjustment,
		QtyDelta:    -4,
		ClampAtZero: true,
	})
	if err != nil {
		t.Fatalf("apply movement: %v", err)
	}
	if level.Previous != 0 || level.New != 0 {
		t.Fatalf("expected 0 -> 0, got %d -> %d", level.Previous, level.New)
	}
	if len(store.Movements()) != 0 {
		t.Fatal("no-op clamp must not be audited")
	}
}

func TestLedger_RestockAdds(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 0)
	ledger := NewLedgerWithoutMetrics(testLogger())

	level, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID: "darjeeling",
		Type:      domain.MovementTypeRestock,
		QtyDelta:  25,
		Reason:    "spring shipment",
	})
	if err != nil {
		t.Fatalf("apply movement: %v", err)
	}
	if level.New != 25 {
		t.Fatalf("expected stock 25, got %d", level.New)
	}

	product, _ := store.GetProduct("darjeeling")
	if !product.InStock {
		t.Fatal("product must be back in stock")
	}
}

func TestLedger_UnknownProduct(t *testing.T) {
	store := memory.NewStore()
	ledger := NewLedgerWithoutMetrics(testLogger())

	_, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID: "missing",
		Type:      domain.MovementTypeRestock,
		QtyDelta:  1,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestLedger_ZeroDeltaRejected(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 5)
	ledger := NewLedgerWithoutMetrics(testLogger())

	_, err := applyMovement(t, store, ledger, MovementRequest{
		ProductID: "darjeeling",
		Type:      domain.MovementTypeAdjustment,
		QtyDelta:  0,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLedger_ApplyMovementsStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "darjeeling", 10)
	seedProduct(t, store, "kahwa", 1)
	ledger := NewLedgerWithoutMetrics(testLogger())

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		_, applyErr := ledger.ApplyMovements(tx, []MovementRequest{
			{ProductID: "darjeeling", Type: domain.MovementTypeSale, QtyDelta: -2, Reason: "order", Automated: true},
			{ProductID: "kahwa", Type: domain.MovementTypeSale, QtyDelta: -3, Reason: "order", Automated: true},
		})
		return applyErr
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Откат транзакции: первая успешная мутация тоже не видна.
	product, err := store.GetProduct("darjeeling")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.StockQuantity != 10 {
		t.Fatalf("expected stock 10 after rollback, got %d", product.StockQuantity)
	}
	if len(store.Movements()) != 0 {
		t.Fatalf("expected no movements, got %d", len(store.Movements()))
	}
}
