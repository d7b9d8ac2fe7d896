package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contenido JSON de cada tipo de reporte. Se serializa una vez al generar y no se recalcula.

// Period rango del reporte; End es exclusivo.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SalesSummary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	CountSales     int             `json:"count_sales"`
	AverageSale    decimal.Decimal `json:"average_sale"`
	CancelledSales int             `json:"cancelled_sales"`
}

type TopProduct struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"product__name"`
	Code          string          `json:"code"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// SalesData reporte de ventas: las canceladas solo aparecen en CancelledSales.
type SalesData struct {
	Period      Period       `json:"period"`
	Summary     SalesSummary `json:"summary"`
	TopProducts []TopProduct `json:"top_products"`
}

type InventorySummary struct {
	TotalProducts     int             `json:"total_products"`
	TotalStockValue   decimal.Decimal `json:"total_stock_value"`
	LowStockProducts  int             `json:"low_stock_products"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

type InventoryRow struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	LowStock  bool            `json:"low_stock"`
}

// InventoryData reporte de inventario.
type InventoryData struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Summary     InventorySummary `json:"summary"`
	Products    []InventoryRow   `json:"products"`
}

type CategoryRow struct {
	Category   string          `json:"category"`
	Products   int             `json:"products"`
	Stock      int             `json:"stock"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// ProductsData productos agrupados por categoría.
type ProductsData struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	TotalProducts int           `json:"total_products"`
	Categories    []CategoryRow `json:"categories"`
}

// GeneralData los tres reportes anteriores calculados juntos.
type GeneralData struct {
	Sales     SalesData     `json:"sales"`
	Inventory InventoryData `json:"inventory"`
	Products  ProductsData  `json:"products"`
}
