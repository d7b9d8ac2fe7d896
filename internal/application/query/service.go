// Package query lecturas del ledger sobre lo último confirmado. Nunca bloquea filas.
package query

import (
	"context"
	"fmt"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

const maxLimit = 500

// Service consultas de solo lectura.
type Service struct {
	repos ports.Repos
}

// NewService construye el servicio con repositorios fuera de transacción.
func NewService(repos ports.Repos) *Service {
	return &Service{repos: repos}
}

func clampPage(limit, offset *int) error {
	if *limit < 0 || *offset < 0 {
		return domain.Invalid("limit", "limit y offset no pueden ser negativos")
	}
	if *limit == 0 || *limit > maxLimit {
		*limit = maxLimit
	}
	return nil
}

// CurrentStock stock confirmado del producto.
func (s *Service) CurrentStock(ctx context.Context, productID string) (int, error) {
	if productID == "" {
		return 0, domain.Invalid("product_id", "el producto es obligatorio")
	}
	return s.repos.Stock.GetStock(ctx, productID)
}

// Product devuelve el producto o domain.ErrNotFound.
func (s *Service) Product(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return p, nil
}

// StockLevels productos con su stock según filtros (MaxStock para stock bajo).
func (s *Service) StockLevels(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	return s.repos.Products.List(ctx, f)
}

// MovementHistory movimientos del producto, más recientes primero.
func (s *Service) MovementHistory(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "el producto es obligatorio")
	}
	if f.Type != "" && !entity.ValidMovementType(f.Type) {
		return nil, domain.Invalid("type", "tipo de movimiento debe ser entrada o salida")
	}
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	if _, err := s.Product(ctx, productID); err != nil {
		return nil, err
	}
	f.ProductID = productID
	return s.repos.Movements.List(ctx, f)
}

// Movements movimientos de todos los productos.
func (s *Service) Movements(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if f.Type != "" && !entity.ValidMovementType(f.Type) {
		return nil, domain.Invalid("type", "tipo de movimiento debe ser entrada o salida")
	}
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	return s.repos.Movements.List(ctx, f)
}

// Sales ventas por rango con sus líneas.
func (s *Service) Sales(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Invalid("end_date", "la fecha final es anterior a la inicial")
	}
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	return s.repos.Sales.List(ctx, f)
}

// Sale venta con sus líneas o domain.ErrNotFound.
func (s *Service) Sale(ctx context.Context, saleID string) (*entity.Sale, error) {
	sale, err := s.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	return sale, nil
}

// ActivityLogs entradas de auditoría, más recientes primero.
func (s *Service) ActivityLogs(ctx context.Context, f repository.ActivityLogFilter) ([]*entity.ActivityLog, error) {
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	return s.repos.Logs.List(ctx, f)
}

// Reports snapshots generados.
func (s *Service) Reports(ctx context.Context, f repository.ReportFilter) ([]*entity.Report, error) {
	if f.Type != "" && !entity.ValidReportType(f.Type) {
		return nil, domain.Invalid("type", "tipo de reporte inválido")
	}
	if err := clampPage(&f.Limit, &f.Offset); err != nil {
		return nil, err
	}
	return s.repos.Reports.List(ctx, f)
}

// Report snapshot o domain.ErrNotFound.
func (s *Service) Report(ctx context.Context, id string) (*entity.Report, error) {
	rep, err := s.repos.Reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("reporte %s: %w", id, domain.ErrNotFound)
	}
	return rep, nil
}
