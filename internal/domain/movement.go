package domain

import "time"

// MovementType классифицирует изменение стока.
type MovementType string

const (
	MovementTypeRestock    MovementType = "restock"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReturn     MovementType = "return"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeDamage     MovementType = "damage"
	MovementTypeExpired    MovementType = "expired"
)

// Actor — кто инициировал изменение стока.
type Actor struct {
	UserID string
	Name   string
}

// StockMovement — append-only запись аудита одного изменения стока.
// После вставки запись никогда не обновляется и не удаляется.
type StockMovement struct {
	ID        string
	ProductID string
	// ProductName — снимок названия на момент движения.
	ProductName string
	Type        MovementType
	// QtyDelta подписан: положительный — приход, отрицательный — расход.
	QtyDelta      int32
	PreviousStock int32
	NewStock      int32
	Reason        string
	// ReferenceID связывает движение с источником (например, ID заказа).
	ReferenceID string
	Actor       Actor
	Automated   bool
	CreatedAt   time.Time
}

// Validate проверяет арифметику леджера: new = previous + delta.
func (m *StockMovement) Validate() []error {
	var errs []error

	if m.ProductID == "" {
		errs = append(errs, ErrMovementProductRequired)
	}
	if m.QtyDelta == 0 {
		errs = append(errs, ErrMovementDeltaZero)
	}
	if m.NewStock != m.PreviousStock+m.QtyDelta {
		errs = append(errs, ErrMovementArithmetic)
	}
	if m.NewStock < 0 {
		errs = append(errs, ErrMovementNegativeStock)
	}

	return errs
}
