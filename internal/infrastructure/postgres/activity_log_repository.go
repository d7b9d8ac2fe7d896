package postgres

import (
	"context"
	"fmt"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo log de auditoría append-only (usable con pool o tx).
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador.
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

func (r *ActivityLogRepo) Create(ctx context.Context, l *entity.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.UserID, l.Action, l.EntityType, nullString(l.EntityID), []byte(l.Details), l.CreatedAt)
	return classify("insert activity log", err)
}

func (r *ActivityLogRepo) List(ctx context.Context, f repository.ActivityLogFilter) ([]*entity.ActivityLog, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM activity_logs WHERE 1=1`
	args := []any{}
	pos := 1
	for _, c := range []struct {
		col, val string
	}{
		{"user_id", f.UserID},
		{"action", f.Action},
		{"entity_type", f.EntityType},
		{"entity_id", f.EntityID},
	} {
		if c.val == "" {
			continue
		}
		query += fmt.Sprintf(" AND %s = $%d", c.col, pos)
		args = append(args, c.val)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY created_at DESC, id"
	query, args = withPage(query, args, pos, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list activity logs", err)
	}
	defer rows.Close()
	var list []*entity.ActivityLog
	for rows.Next() {
		var (
			l        entity.ActivityLog
			entityID *string
			details  []byte
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &entityID, &details, &l.CreatedAt); err != nil {
			return nil, classify("scan activity log", err)
		}
		l.EntityID = derefString(entityID)
		l.Details = details
		list = append(list, &l)
	}
	return list, classify("list activity logs", rows.Err())
}

func (r *ActivityLogRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM activity_logs WHERE user_id = $1`, userID)
	return classify("delete activity logs by user", err)
}
