package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResult agregados de ventas vigentes de un período.
type SalesSummaryResult struct {
	Count          int
	Total          decimal.Decimal
	CancelledCount int
}

// TopProductResult unidades e importe vendidos por producto.
type TopProductResult struct {
	ProductID string
	Name      string
	Code      string
	Quantity  int
	Amount    decimal.Decimal
}

// UserSalesResult ventas agrupadas por usuario (vendedor).
type UserSalesResult struct {
	UserID   string
	Username string
	Count    int
	Total    decimal.Decimal
}

// Granularidad de SalesByPeriod.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// PeriodSalesResult ventas vigentes agrupadas por inicio de período (UTC).
type PeriodSalesResult struct {
	Start time.Time
	Count int
	Total decimal.Decimal
}

// CategoryResult productos agrupados por categoría.
type CategoryResult struct {
	Category string
	Products int
	Stock    int
	Value    decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura para reportes.
// Las ventas canceladas nunca cuentan como vendidas. Rangos [from, to).
type AnalyticsRepository interface {
	SalesSummary(ctx context.Context, from, to time.Time) (SalesSummaryResult, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	SalesByUser(ctx context.Context, from, to time.Time) ([]UserSalesResult, error)
	SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodSalesResult, error)
	ProductsByCategory(ctx context.Context) ([]CategoryResult, error)
}
