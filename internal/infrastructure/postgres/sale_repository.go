package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, user_id, date, total_price, is_cancelled, cancelled_at, cancelled_by_id`

// SaleRepo ventas y líneas sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s           entity.Sale
		isCancelled bool
		cancelledAt *time.Time
		cancelledBy *string
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.TotalPrice, &isCancelled, &cancelledAt, &cancelledBy); err != nil {
		return nil, err
	}
	s.State = entity.SaleStateFromColumns(isCancelled, cancelledAt, cancelledBy)
	return &s, nil
}

// Create persiste la cabecera como venta vigente.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, user_id, date, total_price, is_cancelled)
		VALUES ($1, $2, $3, $4, false)`
	_, err := r.q.Exec(ctx, query, s.ID, s.UserID, s.Date, s.TotalPrice)
	return classify("insert sale", err)
}

// CreateItem persiste una línea con su precio congelado.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, price_unit, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	return classify("insert sale item", err)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get sale", err)
	}
	if err := r.loadItems(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID obtiene la venta con sus líneas; nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID bloqueando la cabecera; serializa cancelaciones concurrentes.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) loadItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, price_unit, subtotal
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, id`, ids)
	if err != nil {
		return classify("list sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return classify("scan sale item", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, &it)
		}
	}
	return classify("list sale items", rows.Err())
}

// MarkCancelled aplica la transición; solo afecta ventas vigentes.
func (r *SaleRepo) MarkCancelled(ctx context.Context, id string, at time.Time, by string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET is_cancelled = true, cancelled_at = $2, cancelled_by_id = $3
		WHERE id = $1 AND NOT is_cancelled`, id, at, nullString(by))
	if err != nil {
		return classify("cancel sale", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("venta %s no está vigente: %w", id, domain.ErrConflict)
	}
	return nil
}

// List ventas por rango de fechas, más recientes primero, con sus líneas.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	pos := 1
	if f.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if !f.IncludeCancelled {
		query += " AND NOT is_cancelled"
	}
	query += " ORDER BY date DESC, id"
	query, args = withPage(query, args, pos, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list sales", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, classify("scan sale", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("list sales", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteByUser elimina las ventas del usuario y sus líneas. Los movimientos que las
// referencian conservan el registro con sale_id en NULL.
func (r *SaleRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `
		UPDATE inventory_movements SET sale_id = NULL
		WHERE sale_id IN (SELECT id FROM sales WHERE user_id = $1)`, userID); err != nil {
		return classify("detach movements", err)
	}
	if _, err := r.q.Exec(ctx, `
		DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE user_id = $1)`, userID); err != nil {
		return classify("delete sale items by user", err)
	}
	_, err := r.q.Exec(ctx, `DELETE FROM sales WHERE user_id = $1`, userID)
	return classify("delete sales by user", err)
}

func (r *SaleRepo) ClearCancelledBy(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `UPDATE sales SET cancelled_by_id = NULL WHERE cancelled_by_id = $1`, userID)
	return classify("clear cancelled_by", err)
}

func (r *SaleRepo) ProductsSoldToOthers(ctx context.Context, ownerID string) (bool, error) {
	var found bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sale_items si
			JOIN products p ON p.id = si.product_id
			JOIN sales s ON s.id = si.sale_id
			WHERE p.user_id = $1 AND s.user_id <> $1
		)`, ownerID).Scan(&found)
	return found, classify("products sold to others", err)
}
