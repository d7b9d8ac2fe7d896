package http

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
)

// retryAfterSeconds sugerido al cliente tras una contención que agotó los reintentos.
const retryAfterSeconds = 1

// writeError traduce un error de dominio a respuesta HTTP. Los 5xx no exponen el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	var (
		verr  *domain.ValidationError
		stock *domain.InsufficientStockError
		done  *domain.AlreadyCancelledError
		cont  *domain.ContentionError
	)
	switch {
	case errors.As(err, &verr):
		details := map[string]any{}
		if verr.Field != "" {
			details["field"] = verr.Field
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Message, Details: details})
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"product_id": stock.ProductID,
				"available":  stock.Available,
				"requested":  stock.Requested,
				"shortfall":  stock.Shortfall,
			},
		})
	case errors.As(err, &done):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "ALREADY_CANCELLED",
			Message: "la venta ya fue cancelada",
			Details: map[string]any{"sale_id": done.SaleID, "cancelled_at": done.CancelledAt},
		})
	case errors.As(err, &cont):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: "recurso ocupado, reintente"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: "la operación no terminó a tiempo"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

const dateLayout = "2006-01-02"

// parseDate acepta YYYY-MM-DD o RFC 3339. Con endOfRange una fecha sin hora cubre el día completo.
func parseDate(field, raw string, endOfRange bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfRange {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid(field, "formato de fecha inválido, use YYYY-MM-DD o RFC 3339")
	}
	t = t.UTC()
	return &t, nil
}

// dateRange lee start_date y end_date del query string.
func dateRange(startRaw, endRaw string) (from, to *time.Time, err error) {
	if from, err = parseDate("start_date", startRaw, false); err != nil {
		return nil, nil, err
	}
	if to, err = parseDate("end_date", endRaw, true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// page lee limit y offset con los valores por defecto de dto.PageRequest.
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
