package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusConfirmed — заказ размещён и подтверждён; сток уже списан.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped — заказ передан в доставку (меняется внешним контуром).
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен клиенту.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled — заказ отменён после размещения.
	OrderStatusCanceled OrderStatus = "canceled"
)

// PaymentMethod — способ оплаты, выбранный при оформлении.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// PaymentStatus — статус оплаты заказа.
// Захват онлайн-платежей (card/upi/wallet) вынесен в отдельный webhook-контур,
// поэтому при размещении любой заказ стартует со статусом pending.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ShippingAddress — снимок адреса доставки на момент размещения заказа.
type ShippingAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Contact — контактные данные покупателя для уведомлений.
type Contact struct {
	Email string
	Phone string
}

// LineKind различает позиции из каталога и ad-hoc позиции без товара.
type LineKind string

const (
	// LineKindCatalog — позиция ссылается на товар; сток проверяется и списывается.
	LineKindCatalog LineKind = "catalog"
	// LineKindAdHoc — позиция без ссылки на товар (промо/разовые);
	// проверка стока для таких позиций намеренно не выполняется.
	LineKindAdHoc LineKind = "adhoc"
)

// OrderLine — одна позиция заказа, исторический снимок товара.
// После размещения заказа позиция неизменяема: последующие правки товара
// не затрагивают уже размещённые заказы.
type OrderLine struct {
	ID             string
	Kind           LineKind
	ProductID      string // пустой для ad-hoc позиций
	Name           string
	Category       string
	WeightGrams    int32
	ImageURL       string
	Qty            int32
	UnitPriceMinor int64
	// TotalMinor всегда пересчитывается как Qty * UnitPriceMinor перед записью
	// и никогда не берётся из входных данных.
	TotalMinor int64
	CreatedAt  time.Time
}

// Order агрегирует размещённый заказ и его позиции.
type Order struct {
	ID string
	// Number — человекочитаемый номер вида FOG2025010007.
	// Присваивается ровно один раз при создании и не меняется.
	Number        string
	CustomerID    string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	SubtotalMinor int64
	ShippingMinor int64
	TaxMinor      int64
	TotalMinor    int64
	Address       ShippingAddress
	Contact       Contact
	Notes         string
	Lines         []OrderLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Number == "" {
		errs = append(errs, ErrOrderNumberRequired)
	}
	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.SubtotalMinor < 0 || o.ShippingMinor < 0 || o.TaxMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	var subtotal int64
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		if line.Kind == LineKindCatalog && line.ProductID == "" {
			errs = append(errs, ErrLineProductRequired)
		}
		// Сверяем снимок суммы позиции: qty * unit price.
		if line.TotalMinor != int64(line.Qty)*line.UnitPriceMinor {
			errs = append(errs, ErrLineTotalMismatch)
		}
		subtotal += line.TotalMinor
	}
	if subtotal != o.SubtotalMinor {
		errs = append(errs, ErrSubtotalMismatch)
	}
	if o.TotalMinor != o.SubtotalMinor+o.ShippingMinor+o.TaxMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
