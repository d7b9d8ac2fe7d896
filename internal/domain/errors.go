package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrContention        = errors.New("recurso bloqueado por otra operación, reintente")
	ErrAlreadyCancelled  = errors.New("la venta ya fue cancelada")
	ErrPersistence       = errors.New("error de persistencia")
)

// ValidationError solicitud malformada, rechazada antes de cualquier efecto.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Message
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid atajo para construir un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError detalla el faltante de un producto.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
	Shortfall int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: disponible %d, solicitado %d, faltante %d",
		e.ProductID, e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ContentionError conflicto transitorio de bloqueo o de serialización. Siempre reintentable.
type ContentionError struct {
	Resource string
	Err      error
}

func (e *ContentionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("contención en %s: %v", e.Resource, e.Err)
	}
	return "contención en " + e.Resource
}

func (e *ContentionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrContention}
	}
	return []error{ErrContention, e.Err}
}

// AlreadyCancelledError segunda cancelación de una venta. Permanente.
type AlreadyCancelledError struct {
	SaleID      string
	CancelledAt time.Time
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("la venta %s ya fue cancelada el %s", e.SaleID, e.CancelledAt.Format(time.RFC3339))
}

func (e *AlreadyCancelledError) Unwrap() error { return ErrAlreadyCancelled }

// PersistenceError falla del almacén no clasificada como regla de negocio.
// Retryable refleja si el propio almacén la reporta como transitoria.
type PersistenceError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// IsRetryable indica si reintentar la operación completa puede tener éxito.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrContention) {
		return true
	}
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Retryable
}

// IsClientError indica si el error se debe a la entrada del cliente.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrForbidden)
}
