package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products. Stock es el stock inicial.
type CreateProductRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// UpdateProductRequest body para PUT /api/products/:id. El stock no se edita aquí.
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// ProductResponse producto en respuestas HTTP.
type ProductResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Code       string          `json:"code"`
	StockValue decimal.Decimal `json:"stock_value"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ToProductResponse mapea la entidad.
func ToProductResponse(p *entity.Product) *ProductResponse {
	return &ProductResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Category:   p.Category,
		Price:      p.Price,
		Stock:      p.Stock,
		Code:       p.Code,
		StockValue: p.StockValue(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
