package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Delete(ctx context.Context, id string) error
	// ClearManager anula manager_id en los empleados de managerID (SET NULL).
	ClearManager(ctx context.Context, managerID string) error
}
