package memory

import (
	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// stage — staged-состояние одной транзакции: копия товаров плюс буферы
// новых заказов и движений. Пишет в копии, коммит переносит их в Store.
type stage struct {
	store        *Store
	products     map[string]domain.Product
	newOrders    []domain.Order
	newMovements []domain.StockMovement
}

func newStage(s *Store) *stage {
	products := make(map[string]domain.Product, len(s.products))
	for id, p := range s.products {
		products[id] = p
	}
	return &stage{store: s, products: products}
}

// commit переносит staged-изменения в хранилище. Вызывается под мьютексом Store.
func (st *stage) commit(s *Store) {
	s.products = st.products
	for _, order := range st.newOrders {
		s.orders[order.ID] = order
		s.ordersByNumber[order.Number] = order.ID
	}
	s.movements = append(s.movements, st.newMovements...)
}

func (st *stage) Orders() domain.OrderTxRepository       { return (*stageOrders)(st) }
func (st *stage) Products() domain.ProductTxRepository   { return (*stageProducts)(st) }
func (st *stage) Movements() domain.MovementTxRepository { return (*stageMovements)(st) }
func (st *stage) Customers() domain.CustomerTxRepository { return (*stageCustomers)(st) }

type stageOrders stage

func (o *stageOrders) Create(order domain.Order) error {
	if _, exists := o.store.ordersByNumber[order.Number]; exists {
		return domain.ErrOrderNumberConflict
	}
	for _, staged := range o.newOrders {
		if staged.Number == order.Number {
			return domain.ErrOrderNumberConflict
		}
	}
	o.newOrders = append(o.newOrders, order)
	return nil
}

// MaxOrderNumber сравнивает номера сначала по длине, затем лексикографически,
// как и PostgreSQL-реализация.
func (o *stageOrders) MaxOrderNumber(prefix string) (string, error) {
	max := ""
	consider := func(number string) {
		if len(number) < len(prefix) || number[:len(prefix)] != prefix {
			return
		}
		if numberLess(max, number) {
			max = number
		}
	}
	for number := range o.store.ordersByNumber {
		consider(number)
	}
	for _, staged := range o.newOrders {
		consider(staged.Number)
	}
	return max, nil
}

func numberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

type stageProducts stage

func (p *stageProducts) Get(id string) (domain.Product, error) {
	product, ok := p.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (p *stageProducts) DecrementStock(id string, qty int32) (domain.StockLevel, error) {
	product, ok := p.products[id]
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	if product.StockQuantity < qty {
		return domain.StockLevel{}, &domain.InsufficientStockError{
			ProductID: id,
			Requested: qty,
			Available: product.StockQuantity,
		}
	}
	return p.apply(product, product.StockQuantity-qty)
}

func (p *stageProducts) AddStock(id string, qty int32) (domain.StockLevel, error) {
	product, ok := p.products[id]
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	return p.apply(product, product.StockQuantity+qty)
}

func (p *stageProducts) RemoveStockClamped(id string, qty int32) (domain.StockLevel, error) {
	product, ok := p.products[id]
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	next := product.StockQuantity - qty
	if next < 0 {
		next = 0
	}
	return p.apply(product, next)
}

func (p *stageProducts) SetStock(id string, qty int32) (domain.StockLevel, error) {
	product, ok := p.products[id]
	if !ok {
		return domain.StockLevel{}, domain.ErrProductNotFound
	}
	return p.apply(product, qty)
}

func (p *stageProducts) apply(product domain.Product, next int32) (domain.StockLevel, error) {
	level := domain.StockLevel{Previous: product.StockQuantity, New: next}
	product.StockQuantity = next
	product.InStock = next > 0
	p.products[product.ID] = product
	return level, nil
}

type stageMovements stage

func (m *stageMovements) Append(movement domain.StockMovement) error {
	m.newMovements = append(m.newMovements, movement)
	return nil
}

type stageCustomers stage

func (c *stageCustomers) Get(id string) (domain.Customer, error) {
	customer, ok := c.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

var _ domain.Tx = (*stage)(nil)
