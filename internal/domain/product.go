package domain

import "time"

// Product — товар каталога в части, релевантной учёту стока.
// Остальные атрибуты каталога принадлежат внешнему контуру витрины.
type Product struct {
	ID          string
	Name        string
	Category    string
	PriceMinor  int64
	WeightGrams int32
	ImageURL    string
	// StockQuantity никогда не уходит в минус; единственные легальные
	// мутаторы — размещение заказа и административные корректировки.
	StockQuantity int32
	// InStock — производный флаг: StockQuantity > 0.
	InStock   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockLevel — результат одной мутации стока: значение до и после.
type StockLevel struct {
	Previous int32
	New      int32
}

// Customer — покупатель; размещению заказа нужен только факт существования
// и контактные данные для уведомлений.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
