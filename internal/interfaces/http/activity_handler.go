package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// ActivityHandler lectura del log de auditoría (solo admin).
type ActivityHandler struct {
	query *query.Service
}

// NewActivityHandler construye el handler.
func NewActivityHandler(q *query.Service) *ActivityHandler {
	return &ActivityHandler{query: q}
}

// List godoc
// @Summary      Log de actividad
// @Tags         activity
// @Security     Bearer
// @Produce      json
// @Param        user_id      query  string  false  "Usuario"
// @Param        action       query  string  false  "create, update, delete, sale, cancel, adjust_stock"
// @Param        entity_type  query  string  false  "sale, product, inventory_movement, user, report"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Success      200  {object}  dto.ActivityLogListResponse
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return writeError(c, err)
	}
	p := page(c)
	list, err := h.query.ActivityLogs(c.UserContext(), repository.ActivityLogFilter{
		UserID:     c.Query("user_id"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		From:       from,
		To:         to,
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ActivityLogListResponse{
		Items: make([]dto.ActivityLogResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset},
	}
	for _, l := range list {
		out.Items = append(out.Items, *dto.ToActivityLogResponse(l))
	}
	return c.JSON(out)
}
