package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/report"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	gen   *report.Generator
	clock ports.Clock
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(gen *report.Generator, clock ports.Clock) *DashboardHandler {
	return &DashboardHandler{gen: gen, clock: clock}
}

// GetSummary KPIs del día en curso.
// GET /api/dashboard
//
// Respuesta: DashboardDTO (today_sales, today_count, today_cancelled, top_product,
// low_stock_count, low_stock, sales_by_user). Las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	out, err := h.gen.Dashboard(c.UserContext(), h.clock.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesByPeriod ventas agrupadas.
// GET /api/dashboard/sales-by-period?period=day|week|month
func (h *DashboardHandler) SalesByPeriod(c *fiber.Ctx) error {
	out, err := h.gen.SalesByPeriod(c.UserContext(), c.Query("period", "day"), h.clock.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"period": c.Query("period", "day"), "items": out})
}
