package report_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/report"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/testutil"
)

const lowStock = 5

type scenario struct {
	f      *testutil.Fixture
	gen    *report.Generator
	admin  *entity.User
	seller *entity.User
	cafe   *entity.Product
	pan    *entity.Product
}

// newScenario dos ventas del día de testutil.Start; la de pan queda cancelada.
func newScenario(t *testing.T) *scenario {
	t.Helper()
	f := testutil.New(t)
	s := &scenario{
		f:      f,
		gen:    report.NewGenerator(f.Tx, f.Repos, f.Analytics, f.Recorder, f.Clock, lowStock, f.Log),
		admin:  f.User(t, "admin", entity.RoleAdmin),
		seller: f.User(t, "caja1", entity.RoleEmpleado),
	}
	s.cafe = f.Product(t, s.admin.ID, "Café", "2.50", 10)
	s.pan = f.Product(t, s.admin.ID, "Pan", "0.75", 6)

	create := sales.NewCreateSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	cancel := sales.NewCancelSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	ctx := context.Background()

	_, err := create.CreateSale(ctx, s.seller.ID, []sales.LineRequest{{ProductID: s.cafe.ID, Quantity: 2}})
	require.NoError(t, err)
	panSale, err := create.CreateSale(ctx, s.seller.ID, []sales.LineRequest{{ProductID: s.pan.ID, Quantity: 3}})
	require.NoError(t, err)
	_, err = cancel.CancelSale(ctx, panSale.ID, s.admin.ID, true)
	require.NoError(t, err)
	return s
}

func day(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func TestGenerateSalesReport_ExcluyeCanceladas(t *testing.T) {
	s := newScenario(t)
	from, to := day(testutil.Start)

	rep, err := s.gen.GenerateSalesReport(context.Background(), s.admin.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportTypeSales, rep.Type)

	var data report.SalesData
	require.NoError(t, json.Unmarshal(rep.Data, &data))
	assert.Equal(t, 1, data.Summary.CountSales)
	assert.Equal(t, "5.00", data.Summary.TotalSales.StringFixed(2))
	assert.Equal(t, "5.00", data.Summary.AverageSale.StringFixed(2))
	assert.Equal(t, 1, data.Summary.CancelledSales)
	require.Len(t, data.TopProducts, 1)
	assert.Equal(t, s.cafe.ID, data.TopProducts[0].ProductID)
	assert.Equal(t, 2, data.TopProducts[0].TotalQuantity)
	assert.Equal(t, from, data.Period.Start)
	assert.Equal(t, to, data.Period.End)
}

func TestGenerateSalesReport_PersisteSnapshotAuditado(t *testing.T) {
	s := newScenario(t)
	from, to := day(testutil.Start)
	ctx := context.Background()

	rep, err := s.gen.GenerateSalesReport(ctx, s.admin.ID, from, to)
	require.NoError(t, err)

	stored, err := s.f.Repos.Reports.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.JSONEq(t, string(rep.Data), string(stored.Data))
	assert.Equal(t, s.admin.ID, stored.UserID)

	logs := s.f.Logs(t, repository.ActivityLogFilter{EntityType: entity.EntityReport})
	require.Len(t, logs, 1)
	assert.Equal(t, rep.ID, logs[0].EntityID)
	assert.Equal(t, entity.ActionCreate, logs[0].Action)

	// Un snapshot no cambia con ventas posteriores.
	create := sales.NewCreateSaleUseCase(s.f.Tx, s.f.Guard, s.f.Recorder, s.f.Clock, s.f.Retry, s.f.Log)
	_, err = create.CreateSale(ctx, s.seller.ID, []sales.LineRequest{{ProductID: s.cafe.ID, Quantity: 1}})
	require.NoError(t, err)
	again, err := s.f.Repos.Reports.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(rep.Data), string(again.Data))
}

func TestGenerateSalesReport_RangoInvalido(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	_, err := s.gen.GenerateSalesReport(ctx, s.admin.ID, testutil.Start, testutil.Start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = s.gen.GenerateSalesReport(ctx, s.admin.ID, time.Time{}, testutil.Start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	reports, err := s.f.Repos.Reports.List(ctx, repository.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestGenerateReport_UsuarioInexistente(t *testing.T) {
	s := newScenario(t)

	_, err := s.gen.GenerateInventoryReport(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.f.Logs(t, repository.ActivityLogFilter{EntityType: entity.EntityReport}))
}

func TestGenerateInventoryReport_StockBajo(t *testing.T) {
	s := newScenario(t)

	rep, err := s.gen.GenerateInventoryReport(context.Background(), s.admin.ID)
	require.NoError(t, err)

	var data report.InventoryData
	require.NoError(t, json.Unmarshal(rep.Data, &data))
	// Café quedó en 8; Pan volvió a 6 al cancelar.
	assert.Equal(t, 2, data.Summary.TotalProducts)
	assert.Equal(t, 0, data.Summary.LowStockProducts)
	assert.Equal(t, lowStock, data.Summary.LowStockThreshold)
	assert.Equal(t, "24.50", data.Summary.TotalStockValue.StringFixed(2))

	create := sales.NewCreateSaleUseCase(s.f.Tx, s.f.Guard, s.f.Recorder, s.f.Clock, s.f.Retry, s.f.Log)
	_, err = create.CreateSale(context.Background(), s.seller.ID, []sales.LineRequest{{ProductID: s.pan.ID, Quantity: 1}})
	require.NoError(t, err)

	rep, err = s.gen.GenerateInventoryReport(context.Background(), s.admin.ID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(rep.Data, &data))
	assert.Equal(t, 1, data.Summary.LowStockProducts)
	for _, row := range data.Products {
		assert.Equal(t, row.ProductID == s.pan.ID, row.LowStock, row.Name)
	}
}

func TestGenerateProductsReport_PorCategoria(t *testing.T) {
	s := newScenario(t)

	rep, err := s.gen.GenerateProductsReport(context.Background(), s.admin.ID)
	require.NoError(t, err)

	var data report.ProductsData
	require.NoError(t, json.Unmarshal(rep.Data, &data))
	assert.Equal(t, 2, data.TotalProducts)
	require.Len(t, data.Categories, 1)
	assert.Equal(t, "General", data.Categories[0].Category)
	assert.Equal(t, 14, data.Categories[0].Stock)
}

func TestGenerateGeneralReport_IncluyeTodo(t *testing.T) {
	s := newScenario(t)
	from, to := day(testutil.Start)

	rep, err := s.gen.GenerateGeneralReport(context.Background(), s.admin.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportTypeGeneral, rep.Type)

	var data report.GeneralData
	require.NoError(t, json.Unmarshal(rep.Data, &data))
	assert.Equal(t, 1, data.Sales.Summary.CountSales)
	assert.Equal(t, 2, data.Inventory.Summary.TotalProducts)
	assert.Equal(t, 2, data.Products.TotalProducts)
}

func TestDashboard_KPIsDelDia(t *testing.T) {
	s := newScenario(t)

	d, err := s.gen.Dashboard(context.Background(), testutil.Start)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", d.Date)
	assert.Equal(t, 1, d.TodayCount)
	assert.Equal(t, 1, d.TodayCancelled)
	assert.Equal(t, "5.00", d.TodaySales.StringFixed(2))
	require.NotNil(t, d.TopProduct)
	assert.Equal(t, s.cafe.ID, d.TopProduct.ProductID)
	require.Len(t, d.SalesByUser, 1)
	assert.Equal(t, "caja1", d.SalesByUser[0].Username)
	assert.Equal(t, 0, d.LowStockCount)

	tomorrow, err := s.gen.Dashboard(context.Background(), testutil.Start.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, tomorrow.TodayCount)
	assert.Nil(t, tomorrow.TopProduct)
}

func TestSalesByPeriod(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	days, err := s.gen.SalesByPeriod(ctx, repository.PeriodDay, testutil.Start)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-10-14", days[0].Period)
	assert.Equal(t, 1, days[0].Count)

	weeks, err := s.gen.SalesByPeriod(ctx, repository.PeriodWeek, testutil.Start)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2026-W42", weeks[0].Period)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), weeks[0].Start)

	months, err := s.gen.SalesByPeriod(ctx, repository.PeriodMonth, testutil.Start)
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, "2026-10", months[0].Period)

	_, err = s.gen.SalesByPeriod(ctx, "year", testutil.Start)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
