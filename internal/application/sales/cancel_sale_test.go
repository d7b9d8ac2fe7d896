package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/testutil"
)

func newCancelUC(f *testutil.Fixture) *sales.CancelSaleUseCase {
	return sales.NewCancelSaleUseCase(f.Tx, f.Guard, f.Recorder, f.Clock, f.Retry, f.Log)
}

type cancelScenario struct {
	f      *testutil.Fixture
	admin  *entity.User
	seller *entity.User
	a, b   *entity.Product
	sale   *entity.Sale
}

func newCancelScenario(t *testing.T) *cancelScenario {
	t.Helper()
	f := testutil.New(t)
	s := &cancelScenario{f: f}
	s.admin = f.User(t, "admin", entity.RoleAdmin)
	s.seller = f.User(t, "caja1", entity.RoleEmpleado)
	s.a = f.Product(t, s.admin.ID, "Harina", "1.10", 10)
	s.b = f.Product(t, s.admin.ID, "Aceite", "4.00", 5)
	sale, err := newCreateUC(f).CreateSale(context.Background(), s.seller.ID, []sales.LineRequest{
		{ProductID: s.b.ID, Quantity: 2},
		{ProductID: s.a.ID, Quantity: 3},
	})
	require.NoError(t, err)
	s.sale = sale
	return s
}

func TestCancelSale_DevuelveStockYRegistraEntradas(t *testing.T) {
	s := newCancelScenario(t)
	f := s.f
	f.Clock.Advance(time.Hour)

	got, err := newCancelUC(f).CancelSale(context.Background(), s.sale.ID, s.admin.ID, true)
	require.NoError(t, err)

	c, ok := got.Cancellation()
	require.True(t, ok)
	assert.Equal(t, s.admin.ID, c.By)
	assert.Equal(t, testutil.Start.Add(time.Hour), c.At)

	assert.Equal(t, 10, f.Stock(t, s.a.ID))
	assert.Equal(t, 5, f.Stock(t, s.b.ID))

	movs := f.Movements(t, s.a.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.Equal(t, 3, movs[0].Quantity)
	assert.Equal(t, s.sale.ID, movs[0].SaleID)
	assert.Equal(t, "Cancelación venta #"+s.sale.ID, movs[0].Note)

	stored, err := f.Repos.Sales.GetByID(context.Background(), s.sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCancelled())
	// total y líneas se conservan
	assert.True(t, stored.TotalPrice.Equal(s.sale.TotalPrice))
	assert.Len(t, stored.Items, 2)

	logs := f.Logs(t, repository.ActivityLogFilter{Action: entity.ActionCancel, EntityID: s.sale.ID})
	require.Len(t, logs, 1)
	assert.Equal(t, s.admin.ID, logs[0].UserID)
}

func TestCancelSale_SegundaCancelacionRechazada(t *testing.T) {
	s := newCancelScenario(t)
	uc := newCancelUC(s.f)
	ctx := context.Background()

	_, err := uc.CancelSale(ctx, s.sale.ID, s.admin.ID, true)
	require.NoError(t, err)

	_, err = uc.CancelSale(ctx, s.sale.ID, s.admin.ID, true)
	var already *domain.AlreadyCancelledError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, s.sale.ID, already.SaleID)

	// el stock se devolvió una sola vez
	assert.Equal(t, 10, s.f.Stock(t, s.a.ID))
	assert.Len(t, s.f.Movements(t, s.a.ID), 2)
	assert.Len(t, s.f.Logs(t, repository.ActivityLogFilter{Action: entity.ActionCancel}), 1)
}

func TestCancelSale_ConcurrenteSoloUnaGana(t *testing.T) {
	s := newCancelScenario(t)
	uc := newCancelUC(s.f)

	const n = 5
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.CancelSale(context.Background(), s.sale.ID, s.admin.ID, true)
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 10, s.f.Stock(t, s.a.ID))
	assert.Equal(t, 5, s.f.Stock(t, s.b.ID))
}

func TestCancelSale_SinPermisoSinEfectos(t *testing.T) {
	s := newCancelScenario(t)

	_, err := newCancelUC(s.f).CancelSale(context.Background(), s.sale.ID, s.seller.ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := s.f.Repos.Sales.GetByID(context.Background(), s.sale.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCancelled())
	assert.Equal(t, 7, s.f.Stock(t, s.a.ID))
	assert.Empty(t, s.f.Logs(t, repository.ActivityLogFilter{Action: entity.ActionCancel}))
}

func TestCancelSale_VentaInexistente(t *testing.T) {
	s := newCancelScenario(t)
	_, err := newCancelUC(s.f).CancelSale(context.Background(), "no-existe", s.admin.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = newCancelUC(s.f).CancelSale(context.Background(), "", s.admin.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelSale_ConcurrenteConVentaDelMismoProducto(t *testing.T) {
	s := newCancelScenario(t)
	f := s.f
	create := newCreateUC(f)
	cancel := newCancelUC(f)

	// stock de a: 7. La venta nueva pide 9; solo puede completarse si la cancelación
	// devuelve las 3 unidades antes, así que termina en éxito o en faltante, nunca en negativo.
	var wg sync.WaitGroup
	var saleErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, saleErr = create.CreateSale(context.Background(), s.seller.ID, []sales.LineRequest{{ProductID: s.a.ID, Quantity: 9}})
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = cancel.CancelSale(context.Background(), s.sale.ID, s.admin.ID, true)
	}()
	wg.Wait()

	require.NoError(t, cancelErr)
	if saleErr != nil {
		assert.ErrorIs(t, saleErr, domain.ErrInsufficientStock)
		assert.Equal(t, 10, f.Stock(t, s.a.ID))
	} else {
		assert.Equal(t, 1, f.Stock(t, s.a.ID))
	}
	assert.GreaterOrEqual(t, f.Stock(t, s.a.ID), 0)
}
