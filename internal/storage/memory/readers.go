package memory

import (
	"context"
	"sort"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// Get возвращает заказ или ErrOrderNotFound.
func (s *Store) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (s *Store) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Order, 0)
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			result = append(result, order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListByProduct возвращает движения стока по товару, новые первыми.
func (s *Store) ListByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.StockMovement, 0)
	// Движения хранятся в порядке коммитов; идём с конца.
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].ProductID != productID {
			continue
		}
		result = append(result, s.movements[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}

	return result, nil
}

// Movements возвращает копию всего леджера (для тестов консервации стока).
func (s *Store) Movements() []domain.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

var (
	_ domain.OrderReader    = (*Store)(nil)
	_ domain.MovementReader = (*Store)(nil)
)
