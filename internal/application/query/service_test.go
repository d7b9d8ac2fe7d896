package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/testutil"
)

func TestCurrentStockYProducto(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	p := f.Product(t, admin.ID, "Café", "2.50", 9)
	svc := query.NewService(f.Repos)
	ctx := context.Background()

	n, err := svc.CurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = svc.CurrentStock(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.CurrentStock(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Product(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementHistory_MasRecientesPrimero(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	p := f.Product(t, admin.ID, "Café", "2.50", 0)
	uc := inventory.NewRegisterMovementUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	svc := query.NewService(f.Repos)
	ctx := context.Background()

	for _, in := range []inventory.MovementInput{
		{Type: entity.MovementTypeEntrada, Quantity: 10},
		{Type: entity.MovementTypeSalida, Quantity: 3},
		{Type: entity.MovementTypeEntrada, Quantity: 1},
	} {
		in.UserID, in.ProductID = admin.ID, p.ID
		_, err := uc.RecordManualMovement(ctx, in)
		require.NoError(t, err)
		f.Clock.Advance(time.Minute)
	}

	movs, err := svc.MovementHistory(ctx, p.ID, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, []int{1, 3, 10}, []int{movs[0].Quantity, movs[1].Quantity, movs[2].Quantity})

	salidas, err := svc.MovementHistory(ctx, p.ID, repository.MovementFilter{Type: entity.MovementTypeSalida})
	require.NoError(t, err)
	require.Len(t, salidas, 1)

	paged, err := svc.MovementHistory(ctx, p.ID, repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, 3, paged[0].Quantity)

	_, err = svc.MovementHistory(ctx, p.ID, repository.MovementFilter{Type: "ajuste"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.MovementHistory(ctx, p.ID, repository.MovementFilter{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.MovementHistory(ctx, "no-existe", repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSales_FiltrosYRango(t *testing.T) {
	f := testutil.New(t)
	admin := f.User(t, "admin", entity.RoleAdmin)
	emp := f.User(t, "caja1", entity.RoleEmpleado)
	p := f.Product(t, admin.ID, "Café", "2.50", 10)
	create := sales.NewCreateSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	cancel := sales.NewCancelSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
	svc := query.NewService(f.Repos)
	ctx := context.Background()

	first, err := create.CreateSale(ctx, emp.ID, []sales.LineRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	f.Clock.Advance(24 * time.Hour)
	second, err := create.CreateSale(ctx, admin.ID, []sales.LineRequest{{ProductID: p.ID, Quantity: 2}})
	require.NoError(t, err)
	_, err = cancel.CancelSale(ctx, first.ID, admin.ID, true)
	require.NoError(t, err)

	all, err := svc.Sales(ctx, repository.SaleFilter{IncludeCancelled: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	vigentes, err := svc.Sales(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, vigentes, 1)
	assert.Equal(t, second.ID, vigentes[0].ID)

	from := testutil.Start.Add(-time.Hour)
	to := testutil.Start.Add(time.Hour)
	firstDay, err := svc.Sales(ctx, repository.SaleFilter{From: &from, To: &to, IncludeCancelled: true})
	require.NoError(t, err)
	require.Len(t, firstDay, 1)
	assert.True(t, firstDay[0].IsCancelled())
	require.Len(t, firstDay[0].Items, 1)

	byUser, err := svc.Sales(ctx, repository.SaleFilter{UserID: emp.ID, IncludeCancelled: true})
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	_, err = svc.Sales(ctx, repository.SaleFilter{From: &to, To: &from})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Sale(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReports_TipoInvalido(t *testing.T) {
	f := testutil.New(t)
	svc := query.NewService(f.Repos)

	_, err := svc.Reports(context.Background(), repository.ReportFilter{Type: "ventas"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Report(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.Reports(context.Background(), repository.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
