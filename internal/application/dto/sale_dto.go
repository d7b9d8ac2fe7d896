package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// SaleLineRequest línea del body de creación.
type SaleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Items []SaleLineRequest `json:"items"`
}

// SaleItemResponse línea con precio congelado.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price_unit"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con su estado.
type SaleResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Date        time.Time          `json:"date"`
	TotalPrice  decimal.Decimal    `json:"total_price"`
	IsCancelled bool               `json:"is_cancelled"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy string             `json:"cancelled_by,omitempty"`
	Items       []SaleItemResponse `json:"items"`
}

// SaleListResponse listado paginado.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ToSaleResponse mapea la entidad.
func ToSaleResponse(s *entity.Sale) *SaleResponse {
	out := &SaleResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Date:       s.Date,
		TotalPrice: s.TotalPrice,
		Items:      make([]SaleItemResponse, 0, len(s.Items)),
	}
	if c, ok := s.Cancellation(); ok {
		at := c.At
		out.IsCancelled = true
		out.CancelledAt = &at
		out.CancelledBy = c.By
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}
