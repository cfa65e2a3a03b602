package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/metrics"
)

// Ledger — единственное место, где меняется остаток товара. Каждая мутация
// пишет ровно одну запись StockMovement в той же транзакции; коммитит
// вызывающая сторона, сам Ledger транзакциями не управляет.
type Ledger struct {
	logger  *log.Entry
	metrics *metrics.StockMetrics
	now     func() time.Time
}

// NewLedger создаёт леджер стока с метриками.
func NewLedger(logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "stock-ledger")
	}
	return &Ledger{
		logger:  logger,
		metrics: metrics.NewStockMetrics(),
		now:     time.Now,
	}
}

// NewLedgerWithoutMetrics создаёт леджер без метрик (для тестов).
func NewLedgerWithoutMetrics(logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "stock-ledger")
	}
	return &Ledger{logger: logger, now: time.Now}
}

// MovementRequest описывает одну мутацию стока.
type MovementRequest struct {
	ProductID string
	Type      domain.MovementType
	// QtyDelta подписан: положительный — приход, отрицательный — расход.
	QtyDelta int32
	// ClampAtZero: расход не падает ниже нуля вместо отказа. Используется
	// административным remove; продажи всегда строгие.
	ClampAtZero bool
	Reason      string
	ReferenceID string
	Actor       domain.Actor
	Automated   bool
}

// ApplyMovement применяет одну мутацию стока внутри транзакции tx: меняет
// остаток товара и дописывает запись аудита. Возвращает остаток до и после.
func (l *Ledger) ApplyMovement(tx domain.Tx, req MovementRequest) (domain.StockLevel, error) {
	if req.ProductID == "" {
		return domain.StockLevel{}, domain.NewValidationError([]error{domain.ErrMovementProductRequired})
	}
	if req.QtyDelta == 0 {
		return domain.StockLevel{}, domain.NewValidationError([]error{domain.ErrMovementDeltaZero})
	}

	product, err := tx.Products().Get(req.ProductID)
	if err != nil {
		return domain.StockLevel{}, err
	}

	var level domain.StockLevel
	switch {
	case req.QtyDelta > 0:
		level, err = tx.Products().AddStock(req.ProductID, req.QtyDelta)
	case req.ClampAtZero:
		level, err = tx.Products().RemoveStockClamped(req.ProductID, -req.QtyDelta)
	default:
		level, err = tx.Products().DecrementStock(req.ProductID, -req.QtyDelta)
	}
	if err != nil {
		return domain.StockLevel{}, err
	}

	movement := domain.StockMovement{
		ID:          uuid.NewString(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Type:        req.Type,
		// При clamp фактическая дельта может быть меньше запрошенной.
		QtyDelta:      level.New - level.Previous,
		PreviousStock: level.Previous,
		NewStock:      level.New,
		Reason:        req.Reason,
		ReferenceID:   req.ReferenceID,
		Actor:         req.Actor,
		Automated:     req.Automated,
		CreatedAt:     l.now().UTC(),
	}
	// Clamp на нулевом остатке ничего не меняет — аудировать нечего.
	if movement.QtyDelta == 0 {
		return level, nil
	}
	if issues := movement.Validate(); len(issues) > 0 {
		return domain.StockLevel{}, fmt.Errorf("movement invariants violated: %w", domain.NewValidationError(issues))
	}
	if err := tx.Movements().Append(movement); err != nil {
		return domain.StockLevel{}, err
	}

	if l.metrics != nil {
		l.metrics.RecordMovement(string(req.Type))
	}
	l.logger.WithFields(log.Fields{
		"product_id": req.ProductID,
		"type":       string(req.Type),
		"delta":      movement.QtyDelta,
		"previous":   level.Previous,
		"new":        level.New,
	}).Debug("stock movement applied")

	return level, nil
}

// ApplyMovements применяет серию мутаций в одной транзакции; первая ошибка
// прерывает серию, откат остаётся за владельцем tx.
func (l *Ledger) ApplyMovements(tx domain.Tx, reqs []MovementRequest) ([]domain.StockLevel, error) {
	levels := make([]domain.StockLevel, 0, len(reqs))
	for _, req := range reqs {
		level, err := l.ApplyMovement(tx, req)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}
