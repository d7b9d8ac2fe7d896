package postgres

import (
	"context"
	"fmt"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, product_id, movement_type, quantity, date, note, sale_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.Date,
		nullString(m.Note), nullString(m.SaleID), nullString(m.CreatedBy),
	)
	return classify("insert inventory movement", err)
}

// List historial de movimientos, más recientes primero.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, product_id, movement_type, quantity, date, note, sale_id, created_by
		FROM inventory_movements WHERE 1=1`
	args := []any{}
	pos := 1
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND movement_type = $%d", pos)
		args = append(args, f.Type)
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
	query += " ORDER BY date DESC, id"
	query, args = withPage(query, args, pos, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list movements", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var (
			m                     entity.InventoryMovement
			note, saleID, creator *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Date, &note, &saleID, &creator); err != nil {
			return nil, classify("scan movement", err)
		}
		m.Note = derefString(note)
		m.SaleID = derefString(saleID)
		m.CreatedBy = derefString(creator)
		list = append(list, &m)
	}
	return list, classify("list movements", rows.Err())
}

func (r *InventoryMovementRepo) DeleteByProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `DELETE FROM inventory_movements WHERE product_id = ANY($1)`, productIDs)
	return classify("delete movements by products", err)
}
