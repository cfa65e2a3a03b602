package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type movementTxRepository struct {
	t *txn
}

// Append вставляет запись леджера. UPDATE/DELETE по stock_movements в коде
// не существует: таблица append-only.
func (r *movementTxRepository) Append(m domain.StockMovement) error {
	_, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO stock_movements (
			id, product_id, product_name, movement_type, qty_delta,
			previous_stock, new_stock, reason, reference_id,
			actor_user_id, actor_name, automated, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		m.ID, m.ProductID, m.ProductName, string(m.Type), m.QtyDelta,
		m.PreviousStock, m.NewStock, m.Reason, m.ReferenceID,
		m.Actor.UserID, m.Actor.Name, m.Automated, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

type customerTxRepository struct {
	t *txn
}

func (r *customerTxRepository) Get(id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

var (
	_ domain.MovementTxRepository = (*movementTxRepository)(nil)
	_ domain.CustomerTxRepository = (*customerTxRepository)(nil)
)
