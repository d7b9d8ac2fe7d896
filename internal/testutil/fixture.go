// Package testutil datos de prueba sobre el almacén en memoria.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/infrastructure/memory"
)

// Clock reloj manual, seguro para goroutines.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock reloj detenido en now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance mueve el reloj.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set fija el reloj.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

// Start instante inicial de los relojes de prueba: miércoles 2026-10-14 10:00 UTC.
var Start = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

// FastRetry reintentos sin esperas largas.
func FastRetry() inventory.RetryPolicy {
	return inventory.RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

// Fixture almacén en memoria con las piezas compartidas del motor.
type Fixture struct {
	Store     *memory.Store
	Tx        *memory.TxRunner
	Repos     ports.Repos
	Analytics repository.AnalyticsRepository
	Clock     *Clock
	Recorder  *audit.Recorder
	Guard     *inventory.StockGuard
	Retry     inventory.RetryPolicy
	Log       zerolog.Logger
}

// New construye un Fixture vacío.
func New(t testing.TB, opts ...memory.Option) *Fixture {
	t.Helper()
	store := memory.NewStore(opts...)
	clock := NewClock(Start)
	log := zerolog.Nop()
	return &Fixture{
		Store:     store,
		Tx:        memory.NewTxRunner(store),
		Repos:     store.Repos(),
		Analytics: store.Analytics(),
		Clock:     clock,
		Recorder:  audit.NewRecorder(clock, log),
		Guard:     inventory.NewStockGuard(log),
		Retry:     FastRetry(),
		Log:       log,
	}
}

// User crea un usuario activo.
func (f *Fixture) User(t testing.TB, username, role string) *entity.User {
	t.Helper()
	u := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@pos.test",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
		CreatedAt:    f.Clock.Now(),
	}
	require.NoError(t, f.Repos.Users.Create(context.Background(), u))
	return u
}

// Product crea un producto de ownerID con el precio y stock dados. No registra movimientos.
func (f *Fixture) Product(t testing.TB, ownerID, name, price string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Name:      name,
		Category:  "General",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Code:      "GEN-" + uuid.New().String()[:8],
		CreatedAt: f.Clock.Now(),
		UpdatedAt: f.Clock.Now(),
	}
	require.NoError(t, f.Repos.Products.Create(context.Background(), p))
	return p
}

// Stock stock confirmado del producto.
func (f *Fixture) Stock(t testing.TB, productID string) int {
	t.Helper()
	n, err := f.Repos.Stock.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return n
}

// Logs entradas de auditoría que cumplen el filtro.
func (f *Fixture) Logs(t testing.TB, filter repository.ActivityLogFilter) []*entity.ActivityLog {
	t.Helper()
	logs, err := f.Repos.Logs.List(context.Background(), filter)
	require.NoError(t, err)
	return logs
}

// Movements movimientos del producto, más recientes primero.
func (f *Fixture) Movements(t testing.TB, productID string) []*entity.InventoryMovement {
	t.Helper()
	movs, err := f.Repos.Movements.List(context.Background(), repository.MovementFilter{ProductID: productID})
	require.NoError(t, err)
	return movs
}
