package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para reportes y dashboard.
// Solo ventas vigentes cuentan como vendidas.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

func (r *AnalyticsRepo) SalesSummary(ctx context.Context, from, to time.Time) (repository.SalesSummaryResult, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE NOT is_cancelled)                        AS count_sales,
	    COALESCE(SUM(total_price) FILTER (WHERE NOT is_cancelled), 0)   AS total_sales,
	    COUNT(*) FILTER (WHERE is_cancelled)                            AS cancelled
	FROM sales
	WHERE date >= $1 AND date < $2`

	var res repository.SalesSummaryResult
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&res.Count, &res.Total, &res.CancelledCount); err != nil {
		return res, classify("analytics.SalesSummary", err)
	}
	return res, nil
}

func (r *AnalyticsRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    p.code,
	    SUM(si.quantity)  AS total_quantity,
	    SUM(si.subtotal)  AS total_amount
	FROM sale_items si
	JOIN sales    s ON s.id = si.sale_id
	JOIN products p ON p.id = si.product_id
	WHERE s.date >= $1 AND s.date < $2
	  AND NOT s.is_cancelled
	GROUP BY p.id, p.name, p.code
	ORDER BY total_quantity DESC, p.id
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, classify("analytics.TopProducts", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Code, &row.Quantity, &row.Amount); err != nil {
			return nil, classify("analytics.TopProducts scan", err)
		}
		results = append(results, row)
	}
	return results, classify("analytics.TopProducts", rows.Err())
}

func (r *AnalyticsRepo) SalesByUser(ctx context.Context, from, to time.Time) ([]repository.UserSalesResult, error) {
	const query = `
	SELECT u.id, u.username, COUNT(s.id), SUM(s.total_price) AS total
	FROM sales s
	JOIN users u ON u.id = s.user_id
	WHERE s.date >= $1 AND s.date < $2
	  AND NOT s.is_cancelled
	GROUP BY u.id, u.username
	ORDER BY total DESC, u.id`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, classify("analytics.SalesByUser", err)
	}
	defer rows.Close()

	var results []repository.UserSalesResult
	for rows.Next() {
		var row repository.UserSalesResult
		if err := rows.Scan(&row.UserID, &row.Username, &row.Count, &row.Total); err != nil {
			return nil, classify("analytics.SalesByUser scan", err)
		}
		results = append(results, row)
	}
	return results, classify("analytics.SalesByUser", rows.Err())
}

// SalesByPeriod agrupa con date_trunc en UTC; las semanas empiezan el lunes.
func (r *AnalyticsRepo) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]repository.PeriodSalesResult, error) {
	switch period {
	case repository.PeriodDay, repository.PeriodWeek, repository.PeriodMonth:
	default:
		return nil, domain.Invalid("period", fmt.Sprintf("período %q no soportado", period))
	}
	const query = `
	SELECT date_trunc($1, date AT TIME ZONE 'UTC') AS start, COUNT(*), SUM(total_price)
	FROM sales
	WHERE date >= $2 AND date < $3
	  AND NOT is_cancelled
	GROUP BY start
	ORDER BY start`

	rows, err := r.pool.Query(ctx, query, period, from, to)
	if err != nil {
		return nil, classify("analytics.SalesByPeriod", err)
	}
	defer rows.Close()

	var results []repository.PeriodSalesResult
	for rows.Next() {
		var row repository.PeriodSalesResult
		if err := rows.Scan(&row.Start, &row.Count, &row.Total); err != nil {
			return nil, classify("analytics.SalesByPeriod scan", err)
		}
		row.Start = row.Start.UTC()
		results = append(results, row)
	}
	return results, classify("analytics.SalesByPeriod", rows.Err())
}

func (r *AnalyticsRepo) ProductsByCategory(ctx context.Context) ([]repository.CategoryResult, error) {
	const query = `
	SELECT category, COUNT(*), COALESCE(SUM(stock), 0), COALESCE(SUM(price * stock), 0)
	FROM products
	GROUP BY category
	ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classify("analytics.ProductsByCategory", err)
	}
	defer rows.Close()

	var results []repository.CategoryResult
	for rows.Next() {
		var row repository.CategoryResult
		if err := rows.Scan(&row.Category, &row.Products, &row.Stock, &row.Value); err != nil {
			return nil, classify("analytics.ProductsByCategory scan", err)
		}
		results = append(results, row)
	}
	return results, classify("analytics.ProductsByCategory", rows.Err())
}
