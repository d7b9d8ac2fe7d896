package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

func fastPolicy(max int) inventory.RetryPolicy {
	return inventory.RetryPolicy{MaxAttempts: max, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry_ContencionReintentaHastaExito(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy(4).Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return &domain.ContentionError{Resource: "product:1"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetry_ErrorPermanenteNoReintenta(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy(4).Do(context.Background(), func(int) error {
		calls++
		return &domain.InsufficientStockError{ProductID: "p", Available: 0, Requested: 1, Shortfall: 1}
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRetry_AgotaIntentosYDevuelveContencion(t *testing.T) {
	attempts, err := fastPolicy(3).Do(context.Background(), func(int) error {
		return &domain.ContentionError{Resource: "sale:1"}
	})
	assert.ErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 3, attempts)
}

func TestRetry_MinimoDosIntentos(t *testing.T) {
	attempts, err := fastPolicy(1).Do(context.Background(), func(int) error {
		return &domain.PersistenceError{Op: "commit", Retryable: true, Err: errors.New("conexión perdida")}
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts, "un error transitorio nunca se devuelve en el primer intento")
}

func TestRetry_ContextoCanceladoCorta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := inventory.RetryPolicy{MaxAttempts: 10, BaseBackoff: time.Second, MaxBackoff: time.Second}
	attempts, err := policy.Do(ctx, func(int) error {
		cancel()
		return &domain.ContentionError{Resource: "product:1"}
	})
	assert.ErrorIs(t, err, domain.ErrContention)
	assert.Equal(t, 1, attempts)
}
