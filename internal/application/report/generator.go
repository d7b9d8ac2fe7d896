package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

const topProductsLimit = 10

// Generator calcula reportes a partir del ledger y los persiste como snapshots auditados.
type Generator struct {
	txRunner  ports.TxRunner
	repos     ports.Repos
	analytics repository.AnalyticsRepository
	audit     *audit.Recorder
	clock     ports.Clock
	lowStock  int
	log       zerolog.Logger
}

// NewGenerator construye el generador. repos son los de lectura (fuera de tx).
func NewGenerator(
	txRunner ports.TxRunner,
	repos ports.Repos,
	analytics repository.AnalyticsRepository,
	recorder *audit.Recorder,
	clock ports.Clock,
	lowStockThreshold int,
	log zerolog.Logger,
) *Generator {
	return &Generator{
		txRunner:  txRunner,
		repos:     repos,
		analytics: analytics,
		audit:     recorder,
		clock:     clock,
		lowStock:  lowStockThreshold,
		log:       log,
	}
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return domain.Invalid("start_date", "se requieren start_date y end_date")
	}
	if !to.After(from) {
		return domain.Invalid("end_date", "la fecha final debe ser posterior a la inicial")
	}
	return nil
}

// GenerateSalesReport reporte de ventas en [from, to).
func (g *Generator) GenerateSalesReport(ctx context.Context, userID string, from, to time.Time) (*entity.Report, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	data, err := g.salesData(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return g.persist(ctx, userID, entity.ReportTypeSales, data)
}

// GenerateInventoryReport reporte de inventario al momento.
func (g *Generator) GenerateInventoryReport(ctx context.Context, userID string) (*entity.Report, error) {
	data, err := g.inventoryData(ctx)
	if err != nil {
		return nil, err
	}
	return g.persist(ctx, userID, entity.ReportTypeInventory, data)
}

// GenerateProductsReport productos por categoría.
func (g *Generator) GenerateProductsReport(ctx context.Context, userID string) (*entity.Report, error) {
	data, err := g.productsData(ctx)
	if err != nil {
		return nil, err
	}
	return g.persist(ctx, userID, entity.ReportTypeProducts, data)
}

// GenerateGeneralReport calcula los tres reportes en paralelo y los guarda como uno solo.
func (g *Generator) GenerateGeneralReport(ctx context.Context, userID string, from, to time.Time) (*entity.Report, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	var data GeneralData
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		d, err := g.salesData(egCtx, from, to)
		if err != nil {
			return err
		}
		data.Sales = *d
		return nil
	})
	eg.Go(func() error {
		d, err := g.inventoryData(egCtx)
		if err != nil {
			return err
		}
		data.Inventory = *d
		return nil
	})
	eg.Go(func() error {
		d, err := g.productsData(egCtx)
		if err != nil {
			return err
		}
		data.Products = *d
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g.persist(ctx, userID, entity.ReportTypeGeneral, data)
}

func (g *Generator) salesData(ctx context.Context, from, to time.Time) (*SalesData, error) {
	sum, err := g.analytics.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("resumen de ventas: %w", err)
	}
	top, err := g.analytics.TopProducts(ctx, from, to, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("productos más vendidos: %w", err)
	}
	avg := decimal.Zero
	if sum.Count > 0 {
		avg = sum.Total.Div(decimal.NewFromInt(int64(sum.Count))).Round(2)
	}
	data := &SalesData{
		Period: Period{Start: from.UTC(), End: to.UTC()},
		Summary: SalesSummary{
			TotalSales:     sum.Total,
			CountSales:     sum.Count,
			AverageSale:    avg,
			CancelledSales: sum.CancelledCount,
		},
		TopProducts: make([]TopProduct, 0, len(top)),
	}
	for _, t := range top {
		data.TopProducts = append(data.TopProducts, TopProduct{
			ProductID:     t.ProductID,
			Name:          t.Name,
			Code:          t.Code,
			TotalQuantity: t.Quantity,
			TotalAmount:   t.Amount,
		})
	}
	return data, nil
}

func (g *Generator) inventoryData(ctx context.Context) (*InventoryData, error) {
	products, err := g.repos.Products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	data := &InventoryData{
		GeneratedAt: g.clock.Now(),
		Summary: InventorySummary{
			TotalProducts:     len(products),
			TotalStockValue:   decimal.Zero,
			LowStockThreshold: g.lowStock,
		},
		Products: make([]InventoryRow, 0, len(products)),
	}
	for _, p := range products {
		low := p.Stock <= g.lowStock
		if low {
			data.Summary.LowStockProducts++
		}
		value := p.StockValue()
		data.Summary.TotalStockValue = data.Summary.TotalStockValue.Add(value)
		data.Products = append(data.Products, InventoryRow{
			ProductID: p.ID,
			Name:      p.Name,
			Code:      p.Code,
			Category:  p.Category,
			Stock:     p.Stock,
			Price:     p.Price,
			Value:     value,
			LowStock:  low,
		})
	}
	return data, nil
}

func (g *Generator) productsData(ctx context.Context) (*ProductsData, error) {
	cats, err := g.analytics.ProductsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("productos por categoría: %w", err)
	}
	data := &ProductsData{
		GeneratedAt: g.clock.Now(),
		Categories:  make([]CategoryRow, 0, len(cats)),
	}
	for _, c := range cats {
		data.TotalProducts += c.Products
		data.Categories = append(data.Categories, CategoryRow{
			Category:   c.Category,
			Products:   c.Products,
			Stock:      c.Stock,
			StockValue: c.Value,
		})
	}
	return data, nil
}

// persist guarda el snapshot y su auditoría en una transacción.
func (g *Generator) persist(ctx context.Context, userID, reportType string, data any) (*entity.Report, error) {
	if userID == "" {
		return nil, domain.Invalid("user_id", "el usuario es obligatorio")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("serializar reporte %s: %w", reportType, err)
	}
	rep := &entity.Report{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        reportType,
		GeneratedAt: g.clock.Now(),
		Data:        raw,
	}
	err = g.txRunner.Run(ctx, func(ctx context.Context, repos ports.Repos) error {
		u, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.Invalid("user_id", fmt.Sprintf("el usuario %s no existe", userID))
		}
		if err := repos.Reports.Create(ctx, rep); err != nil {
			return err
		}
		_, err = g.audit.Record(ctx, repos.Logs, audit.Entry{
			ActorID:    userID,
			Action:     entity.ActionCreate,
			EntityType: entity.EntityReport,
			EntityID:   rep.ID,
			Details:    map[string]any{"type": reportType},
		})
		return err
	})
	if err != nil {
		g.log.Warn().Err(err).Str("type", reportType).Str("user_id", userID).Msg("no se pudo guardar el reporte")
		return nil, err
	}
	g.log.Info().Str("report_id", rep.ID).Str("type", reportType).Msg("reporte generado")
	return rep, nil
}
