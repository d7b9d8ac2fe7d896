package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardDTO respuesta de GET /api/dashboard: KPIs del día en curso (UTC).
type DashboardDTO struct {
	Date           string          `json:"date"` // YYYY-MM-DD
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayCount     int             `json:"today_count"`
	TodayCancelled int             `json:"today_cancelled"`
	TopProduct     *TopProductDTO  `json:"top_product,omitempty"`
	LowStockCount  int             `json:"low_stock_count"`
	LowStock       []LowStockDTO   `json:"low_stock"`
	SalesByUser    []UserSalesDTO  `json:"sales_by_user"`
}

// TopProductDTO producto más vendido de un rango.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Quantity  int             `json:"total_quantity"`
	Amount    decimal.Decimal `json:"total_amount"`
}

// LowStockDTO producto con stock en o bajo el umbral.
type LowStockDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Stock     int    `json:"stock"`
}

// UserSalesDTO ventas de un vendedor.
type UserSalesDTO struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// PeriodSalesDTO ventas agrupadas por período.
type PeriodSalesDTO struct {
	Period string          `json:"period"` // 2026-10-15, 2026-W42 o 2026-10
	Start  time.Time       `json:"start"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}
