package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// ReportRepository puerto de persistencia de snapshots de reportes.
type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	List(ctx context.Context, f ReportFilter) ([]*entity.Report, error)
	DeleteByUser(ctx context.Context, userID string) error
}
