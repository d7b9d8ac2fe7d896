package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/usecase"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/testutil"
)

func newProductUC(f *testutil.Fixture) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(f.Tx, f.Repos, f.Recorder, f.Clock, f.Log)
}

func TestProductCreate_CodigoSecuencialYStockInicial(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	uc := newProductUC(f)
	ctx := context.Background()

	first, err := uc.Create(ctx, admin.ID, dto.CreateProductRequest{
		Name: "Café Molido", Category: "Bebidas", Price: decimal.RequireFromString("4.25"), Stock: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "BEBI-CAFE-MOLI-001", first.Code)
	assert.Equal(t, "51.00", first.StockValue.StringFixed(2))

	second, err := uc.Create(ctx, admin.ID, dto.CreateProductRequest{
		Name: "Café molido fino", Category: "Bebidas", Price: decimal.RequireFromString("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "BEBI-CAFE-MOLI-002", second.Code)

	movs := f.Movements(t, first.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.Equal(t, 12, movs[0].Quantity)
	assert.Empty(t, f.Movements(t, second.ID))

	logs := f.Logs(t, repository.ActivityLogFilter{EntityType: entity.EntityProduct, Action: entity.ActionCreate})
	assert.Len(t, logs, 2)
}

func TestProductCreate_Validaciones(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	uc := newProductUC(f)

	cases := map[string]dto.CreateProductRequest{
		"sin nombre":      {Name: "  ", Price: decimal.NewFromInt(1)},
		"precio negativo": {Name: "Pan", Price: decimal.NewFromInt(-1)},
		"tres decimales":  {Name: "Pan", Price: decimal.RequireFromString("1.005")},
		"stock negativo":  {Name: "Pan", Price: decimal.NewFromInt(1), Stock: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), admin.ID, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := uc.Create(context.Background(), "fantasma", dto.CreateProductRequest{Name: "Pan", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(context.Background(), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestProductUpdate_NoTocaStockNiCodigo(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	p := f.Product(t, admin.ID, "Té", "1.00", 7)
	uc := newProductUC(f)

	name := "Té verde"
	price := decimal.RequireFromString("1.40")
	out, err := uc.Update(context.Background(), admin.ID, p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Té verde", out.Name)
	assert.Equal(t, "1.40", out.Price.StringFixed(2))
	assert.Equal(t, 7, out.Stock)
	assert.Equal(t, p.Code, out.Code)

	logs := f.Logs(t, repository.ActivityLogFilter{Action: entity.ActionUpdate, EntityID: p.ID})
	require.Len(t, logs, 1)
	assert.Contains(t, string(logs[0].Details), `"price_before":"1.00"`)

	_, err = uc.Update(context.Background(), admin.ID, "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUpdate_PrecioNoAfectaVentasPrevias(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	p := f.Product(t, admin.ID, "Té", "1.00", 7)
	create := sales.NewCreateSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	ctx := context.Background()

	sale, err := create.CreateSale(ctx, admin.ID, []sales.LineRequest{{ProductID: p.ID, Quantity: 2}})
	require.NoError(t, err)

	price := decimal.RequireFromString("9.99")
	_, err = newProductUC(f).Update(ctx, admin.ID, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)

	stored, err := f.Repos.Sales.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.00", stored.TotalPrice.StringFixed(2))
	assert.Equal(t, "1.00", stored.Items[0].UnitPrice.StringFixed(2))
}

func TestProductDelete(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	uc := newProductUC(f)
	ctx := context.Background()

	clean := f.Product(t, admin.ID, "Sin uso", "1.00", 0)
	require.NoError(t, uc.Delete(ctx, admin.ID, clean.ID))
	got, err := uc.GetByID(ctx, clean.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	withHistory, err := uc.Create(ctx, admin.ID, dto.CreateProductRequest{Name: "Pan", Price: decimal.NewFromInt(1), Stock: 3})
	require.NoError(t, err)
	err = uc.Delete(ctx, admin.ID, withHistory.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	got, err = uc.GetByID(ctx, withHistory.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, "no-existe"), domain.ErrNotFound)
}
