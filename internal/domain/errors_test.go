package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"contención", &domain.ContentionError{Resource: "product:1"}, true},
		{"contención envuelta", fmt.Errorf("venta: %w", &domain.ContentionError{Resource: "sale:1", Err: context.DeadlineExceeded}), true},
		{"persistencia transitoria", &domain.PersistenceError{Op: "insert", Retryable: true, Err: errors.New("conn reset")}, true},
		{"persistencia permanente", &domain.PersistenceError{Op: "insert", Err: errors.New("syntax")}, false},
		{"stock insuficiente", &domain.InsufficientStockError{ProductID: "p", Available: 1, Requested: 2, Shortfall: 1}, false},
		{"validación", domain.Invalid("quantity", "mayor a 0"), false},
		{"ya cancelada", &domain.AlreadyCancelledError{SaleID: "s"}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.IsRetryable(tc.err))
		})
	}
}

func TestErroresEnvuelvenSentinelas(t *testing.T) {
	assert.ErrorIs(t, domain.Invalid("x", "y"), domain.ErrInvalidInput)
	assert.ErrorIs(t, &domain.InsufficientStockError{}, domain.ErrInsufficientStock)
	assert.ErrorIs(t, &domain.AlreadyCancelledError{}, domain.ErrAlreadyCancelled)
	assert.ErrorIs(t, &domain.PersistenceError{Op: "x", Err: errors.New("y")}, domain.ErrPersistence)

	cont := &domain.ContentionError{Resource: "product:1", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, cont, domain.ErrContention)
	assert.ErrorIs(t, cont, context.DeadlineExceeded)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, domain.IsClientError(domain.Invalid("f", "m")))
	assert.True(t, domain.IsClientError(&domain.InsufficientStockError{}))
	assert.True(t, domain.IsClientError(fmt.Errorf("x: %w", domain.ErrForbidden)))
	assert.False(t, domain.IsClientError(&domain.ContentionError{Resource: "r"}))
	assert.False(t, domain.IsClientError(&domain.PersistenceError{Op: "x", Err: errors.New("y")}))
}

func TestValidationError_Mensaje(t *testing.T) {
	err := domain.Invalid("quantity", "la cantidad debe ser mayor a 0")
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "quantity", verr.Field)
	assert.Contains(t, err.Error(), "quantity")
}
