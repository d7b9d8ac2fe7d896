package repository

import (
	"context"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// SaleRepository puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve la venta con sus líneas, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera hasta fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	MarkCancelled(ctx context.Context, id string, at time.Time, by string) error
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
	DeleteByUser(ctx context.Context, userID string) error
	// ClearCancelledBy anula la referencia al usuario que canceló (SET NULL).
	ClearCancelledBy(ctx context.Context, userID string) error
	// ProductsSoldToOthers indica si ventas de otros usuarios referencian productos de ownerID.
	ProductsSoldToOthers(ctx context.Context, ownerID string) (bool, error)
}
