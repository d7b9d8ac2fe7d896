package repository

import (
	"context"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// ActivityLogRepository puerto del log de auditoría (append-only).
type ActivityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	List(ctx context.Context, f ActivityLogFilter) ([]*entity.ActivityLog, error)
	DeleteByUser(ctx context.Context, userID string) error
}
