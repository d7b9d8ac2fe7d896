package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, user_id, name, category, price, stock, code, created_at, updated_at`

// ProductRepo implementación sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Code, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto con su stock inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Category, p.Price, p.Stock, p.Code, p.CreatedAt, p.UpdatedAt,
	)
	return classify("insert product", err)
}

// GetByID obtiene un producto por ID; nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get product", err)
	}
	return p, nil
}

// GetByCode obtiene un producto por código; nil, nil si no existe.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get product by code", err)
	}
	return p, nil
}

// List lista productos con filtros opcionales, ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	pos := 1
	if f.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.Category != "" {
		query += fmt.Sprintf(" AND lower(category) = lower($%d)", pos)
		args = append(args, f.Category)
		pos++
	}
	if f.MaxStock != nil {
		query += fmt.Sprintf(" AND stock <= $%d", pos)
		args = append(args, *f.MaxStock)
		pos++
	}
	if f.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", pos)
		args = append(args, *f.MinPrice)
		pos++
	}
	if f.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", pos)
		args = append(args, *f.MaxPrice)
		pos++
	}
	query += " ORDER BY name, id"
	query, args = withPage(query, args, pos, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classify("scan product", err)
		}
		list = append(list, p)
	}
	return list, classify("list products", rows.Err())
}

// Update modifica datos descriptivos; el stock no se toca por aquí.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, category = $3, price = $4, code = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Category, p.Price, p.Code, p.UpdatedAt)
	if err != nil {
		return classify("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el producto. Con historial la FK lo impide (ErrConflict).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return classify("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, classify("list product ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, classify("list product ids", err)
}

func (r *ProductRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE user_id = $1`, userID)
	return classify("delete products by user", err)
}

func (r *ProductRepo) LastCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.q.QueryRow(ctx,
		`SELECT code FROM products WHERE code LIKE $1 || '%' ORDER BY code DESC LIMIT 1`, prefix,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, classify("last product code", err)
}

func (r *ProductRepo) HasHistory(ctx context.Context, productID string) (bool, error) {
	var has bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM inventory_movements WHERE product_id = $1)`, productID,
	).Scan(&has)
	return has, classify("product history", err)
}

// withPage agrega LIMIT/OFFSET cuando se pidieron.
func withPage(query string, args []any, pos, limit, offset int) (string, []any) {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, limit)
		pos++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, offset)
	}
	return query, args
}
