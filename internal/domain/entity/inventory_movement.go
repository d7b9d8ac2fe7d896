package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSalida  = "salida"
)

// InventoryMovement registro append-only del ledger de inventario.
// Nunca se actualiza; una reversión es un nuevo movimiento.
type InventoryMovement struct {
	ID        string
	ProductID string
	Type      string // entrada, salida
	Quantity  int    // siempre positivo; el signo lo da Type
	Date      time.Time
	Note      string
	SaleID    string // venta que originó el movimiento, vacío si es manual
	CreatedBy string
}

// ValidMovementType indica si t es entrada o salida.
func ValidMovementType(t string) bool {
	return t == MovementTypeEntrada || t == MovementTypeSalida
}

// Delta efecto del movimiento sobre el stock.
func (m *InventoryMovement) Delta() int {
	if m.Type == MovementTypeSalida {
		return -m.Quantity
	}
	return m.Quantity
}
