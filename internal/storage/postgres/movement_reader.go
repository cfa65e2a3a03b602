package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type movementReader struct {
	db *sql.DB
}

// NewMovementReader создаёт PostgreSQL-реализацию MovementReader.
func NewMovementReader(store *Store) domain.MovementReader {
	return &movementReader{db: store.DB()}
}

func (r *movementReader) ListByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT id, product_id, product_name, movement_type, qty_delta,
		       previous_stock, new_stock, reason, reference_id,
		       actor_user_id, actor_name, automated, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", productID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var (
			m            domain.StockMovement
			movementType string
		)
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.ProductName, &movementType, &m.QtyDelta,
			&m.PreviousStock, &m.NewStock, &m.Reason, &m.ReferenceID,
			&m.Actor.UserID, &m.Actor.Name, &m.Automated, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = domain.MovementType(movementType)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}

	return movements, nil
}

var _ domain.MovementReader = (*movementReader)(nil)
