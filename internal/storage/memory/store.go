package memory

import (
	"context"
	"sync"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// Store — in-memory хранилище для локальной разработки и тестов.
// Транзакции сериализуются общим мьютексом: это та же дисциплина, что даёт
// строчная блокировка в PostgreSQL, поэтому конкурентные размещения ведут
// себя одинаково в обоих режимах.
type Store struct {
	mu             sync.Mutex
	products       map[string]domain.Product
	customers      map[string]domain.Customer
	orders         map[string]domain.Order
	ordersByNumber map[string]string
	movements      []domain.StockMovement
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products:       make(map[string]domain.Product),
		customers:      make(map[string]domain.Customer),
		orders:         make(map[string]domain.Order),
		ordersByNumber: make(map[string]string),
	}
}

// PutProduct добавляет или заменяет товар (seed для dev/тестов).
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.InStock = p.StockQuantity > 0
	s.products[p.ID] = p
}

// PutCustomer добавляет или заменяет клиента (seed для dev/тестов).
func (s *Store) PutCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

// GetProduct возвращает текущее состояние товара.
func (s *Store) GetProduct(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// WithinTx исполняет fn над staged-копией состояния. Изменения становятся
// видимыми только после успешного возврата fn; ошибка отбрасывает staged-
// состояние целиком, без частичных эффектов.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stage := newStage(s)
	if err := fn(stage); err != nil {
		return err
	}
	stage.commit(s)
	return nil
}

var _ domain.UnitOfWork = (*Store)(nil)
