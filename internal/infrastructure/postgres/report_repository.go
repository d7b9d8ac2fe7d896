package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo snapshots de reportes en PostgreSQL (data como JSONB).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func scanReport(row pgx.Row) (*entity.Report, error) {
	var (
		rep  entity.Report
		data []byte
	)
	if err := row.Scan(&rep.ID, &rep.UserID, &rep.Type, &rep.GeneratedAt, &data); err != nil {
		return nil, err
	}
	rep.Data = data
	return &rep, nil
}

func (r *ReportRepo) Create(ctx context.Context, rep *entity.Report) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO reports (id, user_id, type, generated_at, data)
		VALUES ($1, $2, $3, $4, $5)`,
		rep.ID, rep.UserID, rep.Type, rep.GeneratedAt, []byte(rep.Data))
	return classify("insert report", err)
}

func (r *ReportRepo) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	rep, err := scanReport(r.q.QueryRow(ctx,
		`SELECT id, user_id, type, generated_at, data FROM reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get report", err)
	}
	return rep, nil
}

func (r *ReportRepo) List(ctx context.Context, f repository.ReportFilter) ([]*entity.Report, error) {
	query := `SELECT id, user_id, type, generated_at, data FROM reports WHERE 1=1`
	args := []any{}
	pos := 1
	if f.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	query += " ORDER BY generated_at DESC, id"
	query, args = withPage(query, args, pos, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list reports", err)
	}
	defer rows.Close()
	var list []*entity.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, classify("scan report", err)
		}
		list = append(list, rep)
	}
	return list, classify("list reports", rows.Err())
}

func (r *ReportRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM reports WHERE user_id = $1`, userID)
	return classify("delete reports by user", err)
}
