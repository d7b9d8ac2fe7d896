package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/testutil"
)

func TestStockGuard_ReserveYCommit(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	p := f.Product(t, owner.ID, "Café", "3.00", 5)

	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		res, err := f.Guard.Reserve(ctx, repos.Stock, p.ID, 3)
		if err != nil {
			return err
		}
		assert.Equal(t, 5, res.Before)
		assert.Equal(t, "3.00", res.UnitPrice.StringFixed(2))
		return f.Guard.Commit(res)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Stock(t, p.ID))
}

func TestStockGuard_ReserveInsuficienteNoModifica(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	p := f.Product(t, owner.ID, "Café", "3.00", 2)

	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		_, err := f.Guard.Reserve(ctx, repos.Stock, p.ID, 3)
		return err
	})
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 2, short.Available)
	assert.Equal(t, 3, short.Requested)
	assert.Equal(t, 1, short.Shortfall)
	assert.Equal(t, 2, f.Stock(t, p.ID))
}

func TestStockGuard_ReleaseDevuelveExacto(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	p := f.Product(t, owner.ID, "Café", "3.00", 4)

	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		res, err := f.Guard.Reserve(ctx, repos.Stock, p.ID, 4)
		require.NoError(t, err)
		require.NoError(t, f.Guard.Release(ctx, repos.Stock, res))

		// una reserva liberada no se confirma ni se libera dos veces
		assert.ErrorIs(t, f.Guard.Commit(res), domain.ErrConflict)
		assert.ErrorIs(t, f.Guard.Release(ctx, repos.Stock, res), domain.ErrConflict)

		n, err := repos.Stock.LockForUpdate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, n.Stock)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.Stock(t, p.ID))
}

func TestStockGuard_ReserveAll_AgregaPorProductoYLiberaAlFallar(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	a := f.Product(t, owner.ID, "Pan", "1.00", 10)
	b := f.Product(t, owner.ID, "Leche", "2.00", 1)

	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		set, err := f.Guard.ReserveAll(ctx, repos.Stock, []inventory.StockRequest{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: a.ID, Quantity: 3},
		})
		require.NoError(t, err)
		require.Len(t, set.All(), 1)
		assert.Equal(t, 5, set.For(a.ID).Quantity)
		require.NoError(t, f.Guard.ReleaseAll(ctx, repos.Stock, set))

		_, err = f.Guard.ReserveAll(ctx, repos.Stock, []inventory.StockRequest{
			{ProductID: a.ID, Quantity: 4},
			{ProductID: b.ID, Quantity: 2},
		})
		var short *domain.InsufficientStockError
		require.True(t, errors.As(err, &short))
		assert.Equal(t, b.ID, short.ProductID)

		// lo reservado de a se devolvió dentro de la misma tx
		pa, err := repos.Stock.LockForUpdate(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, pa.Stock)
		return nil
	})
	require.NoError(t, err)
}

func TestStockGuard_ValidaEntrada(t *testing.T) {
	f := testutil.New(t)
	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		_, err := f.Guard.Reserve(ctx, repos.Stock, "", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = f.Guard.Reserve(ctx, repos.Stock, "p", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = f.Guard.Reserve(ctx, repos.Stock, "no-existe", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = f.Guard.ReserveAll(ctx, repos.Stock, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		return nil
	})
	require.NoError(t, err)
}

func TestStockGuard_RestockIncrementa(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	p := f.Product(t, owner.ID, "Café", "3.00", 0)

	err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
		got, err := f.Guard.Restock(ctx, repos.Stock, p.ID, 7)
		if err != nil {
			return err
		}
		assert.Equal(t, 7, got.Stock)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, f.Stock(t, p.ID))
}

// stockSpy cuenta escrituras de stock y simula un fallo del almacén al bloquear failOn.
type stockSpy struct {
	repository.StockRepository
	failOn string
	err    error
	failed bool
	writes int // escrituras posteriores al fallo
}

func (s *stockSpy) LockForUpdate(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == s.failOn {
		s.failed = true
		return nil, s.err
	}
	return s.StockRepository.LockForUpdate(ctx, productID)
}

func (s *stockSpy) SetStock(ctx context.Context, productID string, stock int) error {
	if s.failed {
		s.writes++
	}
	return s.StockRepository.SetStock(ctx, productID, stock)
}

func TestStockGuard_ReserveAll_ErrorDelAlmacenNoLibera(t *testing.T) {
	f := testutil.New(t)
	owner := f.User(t, "ana", entity.RoleAdmin)
	a := f.Product(t, owner.ID, "Pan", "1.00", 10)
	b := f.Product(t, owner.ID, "Leche", "2.00", 10)
	first, last := a.ID, b.ID
	if last < first {
		first, last = last, first
	}

	for name, storeErr := range map[string]error{
		"contención":   &domain.ContentionError{Resource: "product:" + last},
		"persistencia": &domain.PersistenceError{Op: "lock product", Err: errors.New("conn reset")},
	} {
		t.Run(name, func(t *testing.T) {
			spy := &stockSpy{failOn: last, err: storeErr}
			err := f.Tx.Run(context.Background(), func(ctx context.Context, repos ports.Repos) error {
				spy.StockRepository = repos.Stock
				_, err := f.Guard.ReserveAll(ctx, spy, []inventory.StockRequest{
					{ProductID: a.ID, Quantity: 1},
					{ProductID: b.ID, Quantity: 1},
				})
				return err
			})
			assert.ErrorIs(t, err, storeErr)
			assert.Zero(t, spy.writes)
			// el rollback devuelve lo reservado de first
			assert.Equal(t, 10, f.Stock(t, first))
		})
	}
}

func TestReleasable(t *testing.T) {
	assert.True(t, inventory.Releasable(&domain.InsufficientStockError{ProductID: "p", Available: 0, Requested: 1, Shortfall: 1}))
	assert.True(t, inventory.Releasable(domain.Invalid("product_id", "el producto p no existe")))
	assert.False(t, inventory.Releasable(domain.Invalid("id", "identificador con formato inválido")))
	assert.False(t, inventory.Releasable(&domain.ContentionError{Resource: "product:p"}))
	assert.False(t, inventory.Releasable(&domain.PersistenceError{Op: "update stock", Err: errors.New("x")}))
	assert.False(t, inventory.Releasable(errors.New("desconocido")))
}
