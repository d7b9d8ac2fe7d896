package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El stock no se modifica por aquí: ver StockRepository.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	ListIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) error
	// LastCodeWithPrefix devuelve el código más reciente que empieza con prefix ("" si no hay).
	LastCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	// HasHistory indica si el producto es referenciado por líneas de venta o movimientos.
	HasHistory(ctx context.Context, productID string) (bool, error)
}
