package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

// Códigos SQLSTATE relevantes para el motor.
const (
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidTextRepr      = "22P02"
	codeTooManyConnections   = "53300"
)

// classify traduce un error de pgx a la taxonomía del dominio. op identifica la sentencia.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *domain.ContentionError
	var ve *domain.ValidationError
	if errors.As(err, &ce) || errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return &domain.ContentionError{Resource: op, Err: err}
		case codeUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrDuplicate)
		case codeForeignKeyViolation, codeCheckViolation:
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrConflict)
		case codeInvalidTextRepr:
			return &domain.ValidationError{Field: "id", Message: "identificador con formato inválido"}
		case codeTooManyConnections:
			return &domain.PersistenceError{Op: op, Retryable: true, Err: err}
		}
		// 08xxx conexión, 57P0x apagado del servidor
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0") {
			return &domain.PersistenceError{Op: op, Retryable: true, Err: err}
		}
		return &domain.PersistenceError{Op: op, Err: err}
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return &domain.PersistenceError{Op: op, Retryable: true, Err: err}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// classifyCommit clasifica un fallo de COMMIT. Un rechazo del servidor se trata
// como cualquier sentencia; un fallo de red o un timeout pudo llegar a aplicarse,
// así que solo se reintenta si pgx garantiza que nada se envió.
func classifyCommit(err error) error {
	if err == nil {
		return nil
	}
	const op = "commit transaction"
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classify(op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &domain.PersistenceError{Op: op, Retryable: pgconn.SafeToRetry(err), Err: err}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
