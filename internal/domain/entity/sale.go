package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

// SaleState estado de una venta: ActiveSale o CancelledSale (terminal).
// Cerrado al paquete; usar type switch exhaustivo.
type SaleState interface {
	saleState()
}

// ActiveSale venta vigente.
type ActiveSale struct{}

// CancelledSale venta cancelada por By en At. No existe reactivación.
type CancelledSale struct {
	At time.Time
	By string // vacío si el usuario que canceló fue eliminado
}

func (ActiveSale) saleState()    {}
func (CancelledSale) saleState() {}

// Sale cabecera de venta. Inmutable salvo la transición Active -> Cancelled.
type Sale struct {
	ID         string
	UserID     string
	Date       time.Time
	TotalPrice decimal.Decimal
	State      SaleState
	Items      []*SaleItem
}

// SaleItem línea de venta con el precio congelado al momento de la venta.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewSaleItem construye la línea calculando subtotal = precio * cantidad.
func NewSaleItem(id, saleID, productID string, quantity int, unitPrice decimal.Decimal) *SaleItem {
	return &SaleItem{
		ID:        id,
		SaleID:    saleID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// IsCancelled indica si la venta está en estado terminal.
func (s *Sale) IsCancelled() bool {
	_, ok := s.State.(CancelledSale)
	return ok
}

// Cancellation devuelve el estado cancelado, si aplica.
func (s *Sale) Cancellation() (CancelledSale, bool) {
	c, ok := s.State.(CancelledSale)
	return c, ok
}

// Cancel aplica la única transición permitida. Una segunda cancelación se rechaza.
func (s *Sale) Cancel(at time.Time, by string) error {
	switch st := s.State.(type) {
	case CancelledSale:
		return &domain.AlreadyCancelledError{SaleID: s.ID, CancelledAt: st.At}
	case ActiveSale, nil:
		s.State = CancelledSale{At: at, By: by}
		return nil
	default:
		return fmt.Errorf("estado de venta desconocido %T", st)
	}
}

// ComputeTotal suma de subtotales de las líneas.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// CheckInvariants verifica subtotal = precio * cantidad por línea y total = suma de subtotales.
func (s *Sale) CheckInvariants() error {
	if len(s.Items) == 0 {
		return domain.Invalid("items", "la venta debe tener al menos un item")
	}
	for _, it := range s.Items {
		if it.Quantity <= 0 {
			return domain.Invalid("quantity", "la cantidad debe ser mayor a 0")
		}
		if it.UnitPrice.IsNegative() {
			return domain.Invalid("price_unit", "precio negativo")
		}
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			return fmt.Errorf("subtotal inconsistente en línea %s: %w", it.ID, domain.ErrConflict)
		}
	}
	if !s.TotalPrice.Equal(s.ComputeTotal()) {
		return fmt.Errorf("total inconsistente en venta %s: %w", s.ID, domain.ErrConflict)
	}
	return nil
}

// SaleStateFromColumns reconstruye el estado desde el layout persistido
// (is_cancelled, cancelled_at, cancelled_by_id).
func SaleStateFromColumns(isCancelled bool, cancelledAt *time.Time, cancelledBy *string) SaleState {
	if !isCancelled {
		return ActiveSale{}
	}
	st := CancelledSale{}
	if cancelledAt != nil {
		st.At = *cancelledAt
	}
	if cancelledBy != nil {
		st.By = *cancelledBy
	}
	return st
}
