package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o timeout" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return true }

type notSent struct{}

func (notSent) Error() string     { return "write failed before sending" }
func (notSent) SafeToRetry() bool { return true }

func TestClassifyCommit(t *testing.T) {
	t.Run("timeout tras enviar el commit no se reintenta", func(t *testing.T) {
		cause := fmt.Errorf("read result: %w", &net.OpError{Op: "read", Net: "tcp", Err: netTimeout{}})

		err := classifyCommit(cause)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.False(t, domain.IsRetryable(err))
		var pe *domain.PersistenceError
		assert.True(t, errors.As(err, &pe))
		assert.Equal(t, "commit transaction", pe.Op)
	})

	t.Run("fallo antes de enviar se reintenta", func(t *testing.T) {
		err := classifyCommit(fmt.Errorf("commit: %w", notSent{}))
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("rechazo del servidor conserva su clase", func(t *testing.T) {
		err := classifyCommit(&pgconn.PgError{Code: "40001"})
		var ce *domain.ContentionError
		assert.True(t, errors.As(err, &ce))
		assert.True(t, domain.IsRetryable(err))

		err = classifyCommit(&pgconn.PgError{Code: "23503", ConstraintName: "fk"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("contexto vencido no se reintenta", func(t *testing.T) {
		err := classifyCommit(context.DeadlineExceeded)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, domain.IsRetryable(err))
		assert.Nil(t, classifyCommit(nil))
	})
}

func TestClassify(t *testing.T) {
	pg := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: "c"})
	}

	t.Run("bloqueo no disponible es contención", func(t *testing.T) {
		for _, code := range []string{"55P03", "40001", "40P01"} {
			err := classify("lock product", pg(code))
			var ce *domain.ContentionError
			assert.True(t, errors.As(err, &ce), code)
			assert.True(t, domain.IsRetryable(err), code)
		}
	})

	t.Run("restricciones", func(t *testing.T) {
		assert.ErrorIs(t, classify("insert", pg("23505")), domain.ErrDuplicate)
		assert.ErrorIs(t, classify("delete", pg("23503")), domain.ErrConflict)
		assert.ErrorIs(t, classify("update", pg("23514")), domain.ErrConflict)
		assert.ErrorIs(t, classify("select", pg("22P02")), domain.ErrInvalidInput)
	})

	t.Run("conexión caída es transitoria", func(t *testing.T) {
		for _, code := range []string{"08006", "57P01", "53300"} {
			err := classify("query", pg(code))
			assert.ErrorIs(t, err, domain.ErrPersistence, code)
			assert.True(t, domain.IsRetryable(err), code)
		}
	})

	t.Run("otros errores no se reintentan", func(t *testing.T) {
		err := classify("query", pg("42P01"))
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.False(t, domain.IsRetryable(err))

		err = classify("query", context.Canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("errores del dominio pasan intactos", func(t *testing.T) {
		ce := &domain.ContentionError{Resource: "x"}
		assert.Same(t, ce, classify("q", ce))
		assert.Nil(t, classify("q", nil))
	})
}
