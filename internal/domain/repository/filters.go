package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	UserID   string
	Category string
	// MaxStock filtra productos con stock <= *MaxStock (stock bajo).
	MaxStock *int
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	ProductID string
	Type      string
	From, To  *time.Time
	Limit     int
	Offset    int
}

// SaleFilter filtros de ventas por rango de fechas.
type SaleFilter struct {
	UserID           string
	From, To         *time.Time
	IncludeCancelled bool
	Limit            int
	Offset           int
}

// ActivityLogFilter filtros del log de actividad.
type ActivityLogFilter struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// ReportFilter filtros de reportes generados.
type ReportFilter struct {
	UserID string
	Type   string
	Limit  int
	Offset int
}
