package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// StockRepository puerto del contador de stock por producto.
// Usado dentro de transacciones; el bloqueo se mantiene hasta Commit/Rollback.
type StockRepository interface {
	// LockForUpdate bloquea la fila del producto (SELECT FOR UPDATE) y la devuelve.
	// Devuelve nil, nil si el producto no existe. Una espera mayor al lock timeout
	// termina en *domain.ContentionError.
	LockForUpdate(ctx context.Context, productID string) (*entity.Product, error)
	// SetStock escribe el contador; requiere haber tomado el bloqueo en la misma tx.
	SetStock(ctx context.Context, productID string, stock int) error
	// GetStock lee el último valor confirmado sin bloquear.
	GetStock(ctx context.Context, productID string) (int, error)
}
