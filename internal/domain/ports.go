package domain

import "context"

// UnitOfWork исполняет функцию внутри одной транзакции хранилища.
// Ошибка из fn откатывает транзакцию целиком: ни одна из записей,
// сделанных через Tx, не становится видимой.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx — транзакционный доступ к репозиториям. Репозитории, полученные из Tx,
// пишут в рамках одной транзакции и не коммитят сами.
type Tx interface {
	Orders() OrderTxRepository
	Products() ProductTxRepository
	Movements() MovementTxRepository
	Customers() CustomerTxRepository
}

// OrderTxRepository — транзакционные операции над заказами.
type OrderTxRepository interface {
	// Create вставляет заказ вместе с позициями. Возвращает
	// ErrOrderNumberConflict при нарушении уникальности номера.
	Create(order Order) error
	// MaxOrderNumber возвращает лексикографически наибольший существующий
	// номер с данным префиксом либо пустую строку, если таких нет.
	MaxOrderNumber(prefix string) (string, error)
}

// ProductTxRepository — транзакционные операции над стоком товара.
// Все мутации выполняются одним условным UPDATE на стороне базы, чтобы
// конкурентные транзакции сериализовались на строке товара, а не гонялись
// в памяти приложения.
type ProductTxRepository interface {
	// Get возвращает товар или ErrProductNotFound.
	Get(id string) (Product, error)
	// DecrementStock списывает qty единиц при условии достаточного остатка.
	// Возвращает InsufficientStockError, если остатка не хватает.
	DecrementStock(id string, qty int32) (StockLevel, error)
	// AddStock увеличивает остаток на qty единиц.
	AddStock(id string, qty int32) (StockLevel, error)
	// RemoveStockClamped уменьшает остаток на qty, но не ниже нуля.
	RemoveStockClamped(id string, qty int32) (StockLevel, error)
	// SetStock выставляет остаток в абсолютное значение qty.
	SetStock(id string, qty int32) (StockLevel, error)
}

// MovementTxRepository пишет записи леджера движений стока.
type MovementTxRepository interface {
	// Append вставляет одну запись аудита. Записи никогда не обновляются.
	Append(movement StockMovement) error
}

// CustomerTxRepository — транзакционное чтение клиентов.
type CustomerTxRepository interface {
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(id string) (Customer, error)
}

// OrderReader — нетранзакционное чтение заказов для API.
type OrderReader interface {
	Get(ctx context.Context, id string) (Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
}

// MovementReader — чтение леджера движений по товару.
type MovementReader interface {
	ListByProduct(ctx context.Context, productID string, limit int) ([]StockMovement, error)
}

// ConfirmationSender отправляет подтверждение заказа покупателю.
// Best-effort: ошибка логируется и никогда не влияет на судьбу заказа.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, order Order, customer Customer) error
}

// WhatsAppStatus — исход отправки WhatsApp-уведомления.
type WhatsAppStatus string

const (
	WhatsAppStatusSent WhatsAppStatus = "sent"
	// WhatsAppStatusSkipped — отправитель не сконфигурирован; это валидный
	// исход, а не ошибка.
	WhatsAppStatusSkipped WhatsAppStatus = "skipped"
	WhatsAppStatusFailed  WhatsAppStatus = "failed"
)

// WhatsAppSender отправляет уведомление о заказе в WhatsApp. Best-effort.
type WhatsAppSender interface {
	SendOrderMessage(ctx context.Context, phone string, order Order) (WhatsAppStatus, error)
}
