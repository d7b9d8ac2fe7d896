package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// SaleHandler ventas: alta, cancelación y consulta (protegido).
type SaleHandler struct {
	create *sales.CreateSaleUseCase
	cancel *sales.CancelSaleUseCase
	query  *query.Service
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *sales.CreateSaleUseCase, cancel *sales.CancelSaleUseCase, q *query.Service) *SaleHandler {
	return &SaleHandler{create: create, cancel: cancel, query: q}
}

// Create godoc
// @Summary      Registrar venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas de la venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]sales.LineRequest, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sale, err := h.create.CreateSale(c.UserContext(), userID, lines)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale))
}

// Cancel godoc
// @Summary      Cancelar venta
// @Description  Solo admin. Devuelve el stock de cada línea.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	sale, err := h.cancel.CancelSale(c.UserContext(), c.Params("id"), userID, IsAdmin(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.query.Sale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start_date         query  string  false  "YYYY-MM-DD o RFC 3339"
// @Param        end_date           query  string  false  "YYYY-MM-DD (inclusive) o RFC 3339"
// @Param        user_id            query  string  false  "Vendedor"
// @Param        include_cancelled  query  bool    false  "Incluir canceladas"
// @Param        limit              query  int     false  "Límite"  default(20)
// @Param        offset             query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return writeError(c, err)
	}
	p := page(c)
	list, err := h.query.Sales(c.UserContext(), repository.SaleFilter{
		UserID:           c.Query("user_id"),
		From:             from,
		To:               to,
		IncludeCancelled: c.QueryBool("include_cancelled", true),
		Limit:            p.Limit,
		Offset:           p.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SaleListResponse{
		Items: make([]dto.SaleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, *dto.ToSaleResponse(s))
	}
	return c.JSON(out)
}
