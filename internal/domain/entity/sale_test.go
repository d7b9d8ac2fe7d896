package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

func newSale() *entity.Sale {
	s := &entity.Sale{ID: "s1", UserID: "u1", State: entity.ActiveSale{}}
	s.Items = []*entity.SaleItem{
		entity.NewSaleItem("i1", "s1", "p1", 3, decimal.RequireFromString("2.50")),
		entity.NewSaleItem("i2", "s1", "p2", 1, decimal.RequireFromString("10.00")),
	}
	s.TotalPrice = s.ComputeTotal()
	return s
}

func TestNewSaleItem_CalculaSubtotal(t *testing.T) {
	it := entity.NewSaleItem("i", "s", "p", 4, decimal.RequireFromString("1.25"))
	assert.True(t, it.Subtotal.Equal(decimal.RequireFromString("5.00")))
}

func TestSale_TotalEsSumaDeSubtotales(t *testing.T) {
	s := newSale()
	assert.Equal(t, "17.50", s.TotalPrice.StringFixed(2))
	require.NoError(t, s.CheckInvariants())
}

func TestSale_CheckInvariants_DetectaInconsistencias(t *testing.T) {
	s := newSale()
	s.TotalPrice = decimal.RequireFromString("1")
	assert.ErrorIs(t, s.CheckInvariants(), domain.ErrConflict)

	s = newSale()
	s.Items[0].Subtotal = decimal.RequireFromString("99")
	s.TotalPrice = s.ComputeTotal()
	assert.ErrorIs(t, s.CheckInvariants(), domain.ErrConflict)

	s = newSale()
	s.Items = nil
	assert.ErrorIs(t, s.CheckInvariants(), domain.ErrInvalidInput)
}

func TestSale_Cancel_UnaSolaVez(t *testing.T) {
	s := newSale()
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Cancel(at, "admin"))

	c, ok := s.Cancellation()
	require.True(t, ok)
	assert.True(t, s.IsCancelled())
	assert.Equal(t, at, c.At)
	assert.Equal(t, "admin", c.By)

	err := s.Cancel(at.Add(time.Hour), "otro")
	var already *domain.AlreadyCancelledError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, at, already.CancelledAt)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// el estado original no cambia
	c, _ = s.Cancellation()
	assert.Equal(t, "admin", c.By)
}

func TestSaleStateFromColumns(t *testing.T) {
	assert.Equal(t, entity.ActiveSale{}, entity.SaleStateFromColumns(false, nil, nil))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	by := "u9"
	st := entity.SaleStateFromColumns(true, &at, &by)
	assert.Equal(t, entity.CancelledSale{At: at, By: by}, st)

	// usuario que canceló ya eliminado
	st = entity.SaleStateFromColumns(true, &at, nil)
	assert.Equal(t, entity.CancelledSale{At: at}, st)
}

func TestInventoryMovement_Delta(t *testing.T) {
	in := &entity.InventoryMovement{Type: entity.MovementTypeEntrada, Quantity: 5}
	out := &entity.InventoryMovement{Type: entity.MovementTypeSalida, Quantity: 5}
	assert.Equal(t, 5, in.Delta())
	assert.Equal(t, -5, out.Delta())
}
