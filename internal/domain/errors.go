package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего номера заказа.
	ErrOrderNumberRequired = errors.New("order number is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line item")
	// Ошибка отрицательной денежной суммы.
	ErrAmountNegative = errors.New("monetary amounts must be non-negative")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrLinePriceInvalid = errors.New("line unit price must be non-negative")
	// Ошибка каталожной позиции без ссылки на товар.
	ErrLineProductRequired = errors.New("catalog line requires product_id")
	// Ошибка несоответствия суммы позиции qty * unit price.
	ErrLineTotalMismatch = errors.New("line total does not match qty * unit price")
	// Ошибка несоответствия subtotal и суммы позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match lines sum")
	// Ошибка несоответствия total = subtotal + shipping + tax.
	ErrTotalMismatch = errors.New("order total does not match subtotal + shipping + tax")
	// Ошибки арифметики леджера движений стока.
	ErrMovementProductRequired = errors.New("movement product_id is required")
	ErrMovementDeltaZero       = errors.New("movement qty delta must be non-zero")
	ErrMovementArithmetic      = errors.New("movement new stock must equal previous + delta")
	ErrMovementNegativeStock   = errors.New("movement must not drive stock negative")

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNumberConflict — коллизия уникального номера заказа при вставке.
	// Размещение повторяет попытку с новой нумерацией (bounded retry).
	ErrOrderNumberConflict = errors.New("order number conflict")
	// ErrStoreUnavailable — инфраструктурная ошибка хранилища; вызов можно
	// безопасно повторить, частичное состояние не фиксируется.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError агрегирует замечания валидации входного запроса.
// Никогда не ретраится; мутации при этой ошибке не выполняются.
type ValidationError struct {
	Issues []error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %v", errors.Join(e.Issues...))
}

// NewValidationError оборачивает список замечаний; nil при пустом списке.
func NewValidationError(issues []error) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// IsValidation проверяет, является ли ошибка ошибкой валидации.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError — главная бизнес-ошибка размещения: запрошено больше,
// чем доступно. Несёт дефицит, чтобы вызывающий слой показал "только N в наличии".
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой стока.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}
