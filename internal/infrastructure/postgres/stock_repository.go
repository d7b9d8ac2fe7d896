package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contador de stock sobre la fila de products (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) hasta fin de la tx.
func (r *StockRepo) LockForUpdate(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("lock product "+productID, err)
	}
	return p, nil
}

// SetStock escribe el contador. El CHECK (stock >= 0) de la tabla respalda la regla.
func (r *StockRepo) SetStock(ctx context.Context, productID string, stock int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		return classify("set stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return nil
}

// GetStock lee el stock confirmado sin bloquear.
func (r *StockRepo) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return stock, classify("get stock", err)
}
