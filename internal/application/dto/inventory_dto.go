package dto

import (
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"` // entrada, salida
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

// AdjustStockRequest body para POST /api/products/:id/adjust-stock.
// Adjustment positivo suma, negativo resta.
type AdjustStockRequest struct {
	Adjustment int    `json:"adjustment"`
	Reason     string `json:"reason"`
}

// MovementResponse movimiento del ledger de inventario.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note,omitempty"`
	SaleID    string    `json:"sale_id,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockResponse stock confirmado de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

// ToMovementResponse mapea la entidad.
func ToMovementResponse(m *entity.InventoryMovement) *MovementResponse {
	return &MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Date:      m.Date,
		Note:      m.Note,
		SaleID:    m.SaleID,
		CreatedBy: m.CreatedBy,
	}
}
