package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

// unitOfWork исполняет доменные операции в одной SQL-транзакции.
type unitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork создаёт PostgreSQL-реализацию domain.UnitOfWork.
func NewUnitOfWork(store *Store) domain.UnitOfWork {
	return &unitOfWork{db: store.DB()}
}

// WithinTx открывает транзакцию, исполняет fn и коммитит; любая ошибка fn
// откатывает транзакцию целиком. Дедлайн задаёт вызывающая сторона через ctx.
func (u *unitOfWork) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", domain.ErrStoreUnavailable, err)
	}

	t := &txn{ctx: ctx, tx: sqlTx}
	if err := fn(t); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		return fmt.Errorf("commit tx: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// txn связывает транзакционные репозитории с одной *sql.Tx.
type txn struct {
	ctx context.Context
	tx  *sql.Tx
}

func (t *txn) Orders() domain.OrderTxRepository       { return &orderTxRepository{t} }
func (t *txn) Products() domain.ProductTxRepository   { return &productTxRepository{t} }
func (t *txn) Movements() domain.MovementTxRepository { return &movementTxRepository{t} }
func (t *txn) Customers() domain.CustomerTxRepository { return &customerTxRepository{t} }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)
