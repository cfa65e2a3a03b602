package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type productTxRepository struct {
	t *txn
}

func (r *productTxRepository) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		SELECT id, name, category, price_minor, weight_grams, image_url,
		       stock_quantity, in_stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.PriceMinor, &p.WeightGrams, &p.ImageURL,
		&p.StockQuantity, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// DecrementStock списывает qty одним условным UPDATE: предикат
// stock_quantity >= qty заменяет чтение-потом-запись, так что конкурентные
// транзакции сериализуются на строке товара и остаток не уходит в минус.
func (r *productTxRepository) DecrementStock(id string, qty int32) (domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    in_stock = stock_quantity - $2 > 0,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock_quantity >= $2
		RETURNING stock_quantity + $2, stock_quantity
	`, id, qty).Scan(&level.Previous, &level.New)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.StockLevel{}, fmt.Errorf("decrement stock: %w", err)
	}

	// Ни одной строки: либо товара нет, либо остатка не хватило.
	var available int32
	checkErr := r.t.tx.QueryRowContext(r.t.ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&available)
	if checkErr != nil {
		if errors.Is(checkErr, sql.ErrNoRows) {
			return domain.StockLevel{}, domain.ErrProductNotFound
		}
		return domain.StockLevel{}, fmt.Errorf("check product stock: %w", checkErr)
	}
	return domain.StockLevel{}, &domain.InsufficientStockError{
		ProductID: id,
		Requested: qty,
		Available: available,
	}
}

func (r *productTxRepository) AddStock(id string, qty int32) (domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    in_stock = TRUE,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING stock_quantity - $2, stock_quantity
	`, id, qty).Scan(&level.Previous, &level.New)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockLevel{}, domain.ErrProductNotFound
		}
		return domain.StockLevel{}, fmt.Errorf("add stock: %w", err)
	}
	return level, nil
}

// RemoveStockClamped уменьшает остаток, но не ниже нуля. Прежнее значение
// достаётся self-join'ом с FOR UPDATE, потому что после GREATEST его уже
// не восстановить арифметикой.
func (r *productTxRepository) RemoveStockClamped(id string, qty int32) (domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		UPDATE products p
		SET stock_quantity = GREATEST(prev.stock_quantity - $2, 0),
		    in_stock = prev.stock_quantity - $2 > 0,
		    updated_at = NOW()
		FROM (
			SELECT id, stock_quantity FROM products WHERE id = $1 FOR UPDATE
		) prev
		WHERE p.id = prev.id
		RETURNING prev.stock_quantity, p.stock_quantity
	`, id, qty).Scan(&level.Previous, &level.New)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockLevel{}, domain.ErrProductNotFound
		}
		return domain.StockLevel{}, fmt.Errorf("remove stock: %w", err)
	}
	return level, nil
}

func (r *productTxRepository) SetStock(id string, qty int32) (domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.t.tx.QueryRowContext(r.t.ctx, `
		UPDATE products p
		SET stock_quantity = $2,
		    in_stock = $2 > 0,
		    updated_at = NOW()
		FROM (
			SELECT id, stock_quantity FROM products WHERE id = $1 FOR UPDATE
		) prev
		WHERE p.id = prev.id
		RETURNING prev.stock_quantity, p.stock_quantity
	`, id, qty).Scan(&level.Previous, &level.New)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StockLevel{}, domain.ErrProductNotFound
		}
		return domain.StockLevel{}, fmt.Errorf("set stock: %w", err)
	}
	return level, nil
}

var _ domain.ProductTxRepository = (*productTxRepository)(nil)
