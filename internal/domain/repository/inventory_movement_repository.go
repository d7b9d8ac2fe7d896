package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// InventoryMovementRepository puerto del ledger append-only de movimientos.
// No hay Update: una corrección es un movimiento nuevo.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.InventoryMovement, error)
	// DeleteByProducts solo se usa en la cascada de eliminación del dueño.
	DeleteByProducts(ctx context.Context, productIDs []string) error
}
