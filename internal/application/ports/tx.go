package ports

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma unidad de trabajo
// (transacción o pool, según quién los construya).
type Repos struct {
	Products  repository.ProductRepository
	Stock     repository.StockRepository
	Sales     repository.SaleRepository
	Movements repository.InventoryMovementRepository
	Logs      repository.ActivityLogRepository
	Reports   repository.ReportRepository
	Users     repository.UserRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso. Garantiza atomicidad
// para el motor de ventas e inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
