package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

const opTimeout = 5 * time.Second

type orderReader struct {
	db *sql.DB
}

// NewOrderReader создаёт PostgreSQL-реализацию OrderReader.
func NewOrderReader(store *Store) domain.OrderReader {
	return &orderReader{db: store.DB()}
}

const orderColumns = `
	id, order_number, customer_id, status, payment_method, payment_status,
	subtotal_minor, shipping_minor, tax_minor, total_minor,
	ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
	contact_email, contact_phone, notes, created_at, updated_at
`

func (r *orderReader) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (r *orderReader) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", customerID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		lines, err := r.loadLines(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Lines = lines
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order                                domain.Order
		status, paymentMethod, paymentStatus string
	)
	err := row.Scan(
		&order.ID, &order.Number, &order.CustomerID, &status, &paymentMethod, &paymentStatus,
		&order.SubtotalMinor, &order.ShippingMinor, &order.TaxMinor, &order.TotalMinor,
		&order.Address.Name, &order.Address.Line1, &order.Address.Line2, &order.Address.City,
		&order.Address.State, &order.Address.PostalCode, &order.Address.Country,
		&order.Contact.Email, &order.Contact.Phone, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	order.PaymentMethod = domain.PaymentMethod(paymentMethod)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return order, nil
}

func (r *orderReader) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, product_id, name, category, weight_grams, image_url,
		       qty, unit_price_minor, total_minor, created_at
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line      domain.OrderLine
			kind      string
			productID sql.NullString
		)
		if err := rows.Scan(
			&line.ID, &kind, &productID, &line.Name, &line.Category, &line.WeightGrams,
			&line.ImageURL, &line.Qty, &line.UnitPriceMinor, &line.TotalMinor, &line.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.Kind = domain.LineKind(kind)
		if productID.Valid {
			line.ProductID = productID.String
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

var _ domain.OrderReader = (*orderReader)(nil)
