package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario. Stock solo cambia vía ventas,
// cancelaciones y movimientos manuales (siempre mediado por el StockGuard).
type Product struct {
	ID        string
	UserID    string // dueño; su eliminación arrastra al producto
	Name      string
	Category  string
	Price     decimal.Decimal // precio de venta, >= 0, dos decimales
	Stock     int             // >= 0
	Code      string          // único, formato CAT-NAME-NNN
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockValue valor del stock a precio de venta.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}
