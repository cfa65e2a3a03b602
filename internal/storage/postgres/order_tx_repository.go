package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type orderTxRepository struct {
	t *txn
}

// Create вставляет заказ и его позиции в рамках транзакции.
// Уникальный индекс orders.order_number — последний рубеж против
// конкурентной нумерации: на нарушение возвращаем ErrOrderNumberConflict,
// и размещение перегенерирует номер.
func (r *orderTxRepository) Create(order domain.Order) error {
	_, err := r.t.tx.ExecContext(r.t.ctx, `
		INSERT INTO orders (
			id, order_number, customer_id, status, payment_method, payment_status,
			subtotal_minor, shipping_minor, tax_minor, total_minor,
			ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
			contact_email, contact_phone, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`,
		order.ID, order.Number, order.CustomerID, string(order.Status),
		string(order.PaymentMethod), string(order.PaymentStatus),
		order.SubtotalMinor, order.ShippingMinor, order.TaxMinor, order.TotalMinor,
		order.Address.Name, order.Address.Line1, order.Address.Line2, order.Address.City,
		order.Address.State, order.Address.PostalCode, order.Address.Country,
		order.Contact.Email, order.Contact.Phone, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		var productID sql.NullString
		if line.ProductID != "" {
			productID = sql.NullString{String: line.ProductID, Valid: true}
		}
		if _, err := r.t.tx.ExecContext(r.t.ctx, `
			INSERT INTO order_line_items (
				id, order_id, kind, product_id, name, category, weight_grams, image_url,
				qty, unit_price_minor, total_minor, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			line.ID, order.ID, string(line.Kind), productID, line.Name, line.Category,
			line.WeightGrams, line.ImageURL, line.Qty, line.UnitPriceMinor,
			line.TotalMinor, line.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return nil
}

// MaxOrderNumber возвращает наибольший номер с данным префиксом.
// Сравнение сначала по длине, затем лексикографическое: расширенный
// (5+ цифр) суффикс остаётся наибольшим после переполнения 9999.
func (r *orderTxRepository) MaxOrderNumber(prefix string) (string, error) {
	var number string
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		SELECT order_number
		FROM orders
		WHERE order_number LIKE $1 || '%'
		ORDER BY length(order_number) DESC, order_number DESC
		LIMIT 1
	`, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select max order number: %w", err)
	}
	return number, nil
}

var _ domain.OrderTxRepository = (*orderTxRepository)(nil)
