package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// AdjustmentOp — административная операция над остатком.
type AdjustmentOp string

const (
	// AdjustmentOpAdd — приход: new = previous + quantity.
	AdjustmentOpAdd AdjustmentOp = "add"
	// AdjustmentOpRemove — списание с clamp: new = max(0, previous - quantity).
	// В отличие от продажи, превышение остатка не является ошибкой.
	AdjustmentOpRemove AdjustmentOp = "remove"
	// AdjustmentOpSet — абсолютное значение: new = quantity.
	AdjustmentOpSet AdjustmentOp = "set"
)

// Adjustment — один запрос ручной корректировки стока.
type Adjustment struct {
	ProductID string
	Op        AdjustmentOp
	Quantity  int32
	Reason    string
	Actor     domain.Actor
}

// BulkItemResult — исход одной позиции bulk-корректировки.
type BulkItemResult struct {
	ProductID string
	Op        AdjustmentOp
	OK        bool
	Level     domain.StockLevel
	Error     string
}

// BulkResult — агрегированный отчёт bulk-корректировки.
type BulkResult struct {
	Items        []BulkItemResult
	SuccessCount int
	FailureCount int
}

// Adjuster — административный путь коррекции стока. Каждая корректировка —
// независимая единица работы в собственной транзакции: bulk-вариант
// продолжает обработку после отказов отдельных позиций и отчитывается
// по каждой, в противоположность all-or-nothing размещению заказа.
type Adjuster struct {
	uow    domain.UnitOfWork
	ledger *Ledger
	logger *log.Entry
}

// NewAdjuster создаёт административный сервис корректировок.
func NewAdjuster(uow domain.UnitOfWork, ledger *Ledger, logger *log.Entry) *Adjuster {
	if logger == nil {
		logger = log.New().WithField("component", "stock-adjuster")
	}
	return &Adjuster{uow: uow, ledger: ledger, logger: logger}
}

// Adjust применяет одну корректировку в собственной транзакции.
func (a *Adjuster) Adjust(ctx context.Context, adj Adjustment) (domain.StockLevel, error) {
	if err := validateAdjustment(adj); err != nil {
		return domain.StockLevel{}, err
	}

	var level domain.StockLevel
	err := a.uow.WithinTx(ctx, func(tx domain.Tx) error {
		var err error
		level, err = a.apply(tx, adj)
		return err
	})
	if err != nil {
		return domain.StockLevel{}, err
	}

	a.logger.WithFields(log.Fields{
		"product_id": adj.ProductID,
		"op":         string(adj.Op),
		"quantity":   adj.Quantity,
		"previous":   level.Previous,
		"new":        level.New,
	}).Info("stock adjusted")

	return level, nil
}

// AdjustBulk применяет список корректировок, не прерываясь на отказах.
func (a *Adjuster) AdjustBulk(ctx context.Context, adjs []Adjustment) BulkResult {
	result := BulkResult{Items: make([]BulkItemResult, 0, len(adjs))}

	for _, adj := range adjs {
		item := BulkItemResult{ProductID: adj.ProductID, Op: adj.Op}

		level, err := a.Adjust(ctx, adj)
		if err != nil {
			item.Error = err.Error()
			result.FailureCount++
			a.logger.WithError(err).WithFields(log.Fields{
				"product_id": adj.ProductID,
				"op":         string(adj.Op),
			}).Warn("bulk adjustment item failed")
		} else {
			item.OK = true
			item.Level = level
			result.SuccessCount++
		}

		result.Items = append(result.Items, item)
	}

	return result
}

func (a *Adjuster) apply(tx domain.Tx, adj Adjustment) (domain.StockLevel, error) {
	switch adj.Op {
	case AdjustmentOpAdd:
		return a.ledger.ApplyMovement(tx, MovementRequest{
			ProductID: adj.ProductID,
			Type:      domain.MovementTypeRestock,
			QtyDelta:  adj.Quantity,
			Reason:    adj.Reason,
			Actor:     adj.Actor,
		})
	case AdjustmentOpRemove:
		return a.ledger.ApplyMovement(tx, MovementRequest{
			ProductID:   adj.ProductID,
			Type:        domain.MovementTypeAdjustment,
			QtyDelta:    -adj.Quantity,
			ClampAtZero: true,
			Reason:      adj.Reason,
			Actor:       adj.Actor,
		})
	case AdjustmentOpSet:
		return a.setLevel(tx, adj)
	default:
		return domain.StockLevel{}, domain.NewValidationError([]error{errUnknownOp(adj.Op)})
	}
}

// setLevel выставляет абсолютный остаток и пишет adjustment-движение
// на фактическую дельту.
func (a *Adjuster) setLevel(tx domain.Tx, adj Adjustment) (domain.StockLevel, error) {
	product, err := tx.Products().Get(adj.ProductID)
	if err != nil {
		return domain.StockLevel{}, err
	}

	level, err := tx.Products().SetStock(adj.ProductID, adj.Quantity)
	if err != nil {
		return domain.StockLevel{}, err
	}
	if level.New == level.Previous {
		return level, nil
	}

	movement := domain.StockMovement{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          domain.MovementTypeAdjustment,
		QtyDelta:      level.New - level.Previous,
		PreviousStock: level.Previous,
		NewStock:      level.New,
		Reason:        adj.Reason,
		Actor:         adj.Actor,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.Movements().Append(movement); err != nil {
		return domain.StockLevel{}, err
	}

	if a.ledger.metrics != nil {
		a.ledger.metrics.RecordMovement(string(domain.MovementTypeAdjustment))
	}

	return level, nil
}
