package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc    *inventory.RegisterMovementUseCase
	query *query.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, q *query.Service) *InventoryHandler {
	return &InventoryHandler{uc: uc, query: q}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type (entrada|salida), quantity, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordMovementFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AdjustStock godoc
// @Summary      Ajustar stock con signo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "adjustment (+/-) y reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStockFromRequest(c.UserContext(), userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Stock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	stock, err := h.query.CurrentStock(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Stock: stock})
}

// Movements godoc
// @Summary      Historial de movimientos
// @Description  Con :id filtra por producto; sin él lista todos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  false  "ID del producto"
// @Param        type        query  string  false  "entrada | salida"
// @Param        start_date  query  string  false  "YYYY-MM-DD o RFC 3339"
// @Param        end_date    query  string  false  "YYYY-MM-DD (inclusive) o RFC 3339"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	from, to, err := dateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return writeError(c, err)
	}
	p := page(c)
	f := repository.MovementFilter{Type: c.Query("type"), From: from, To: to, Limit: p.Limit, Offset: p.Offset}

	var list []*entity.InventoryMovement
	if id := c.Params("id"); id != "" {
		list, err = h.query.MovementHistory(c.UserContext(), id, f)
	} else {
		list, err = h.query.Movements(c.UserContext(), f)
	}
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}
