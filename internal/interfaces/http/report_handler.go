package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/report"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// ReportHandler generación y consulta de reportes persistidos.
type ReportHandler struct {
	gen   *report.Generator
	query *query.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(gen *report.Generator, q *query.Service) *ReportHandler {
	return &ReportHandler{gen: gen, query: q}
}

// reportRange convierte el body en [from, to). Un end_date sin hora incluye ese día completo.
func reportRange(in dto.GenerateReportRequest) (time.Time, time.Time, error) {
	from, err := parseDate("start_date", in.StartDate, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	raw := strings.TrimSpace(in.EndDate)
	to, err := parseDate("end_date", raw, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, domain.Invalid("start_date", "se requieren start_date y end_date")
	}
	end := *to
	if len(raw) == len(dateLayout) {
		end = end.AddDate(0, 0, 1)
	}
	return *from, end, nil
}

// Generate godoc
// @Summary      Generar reporte
// @Description  type: sales, inventory, products o general. sales y general requieren rango.
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string                     true   "Tipo de reporte"
// @Param        body  body  dto.GenerateReportRequest  false  "start_date, end_date"
// @Success      201   {object}  dto.ReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/{type} [post]
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	reportType := c.Params("type")
	ctx := c.UserContext()

	var (
		rep *entity.Report
		err error
	)
	switch reportType {
	case entity.ReportTypeInventory:
		rep, err = h.gen.GenerateInventoryReport(ctx, userID)
	case entity.ReportTypeProducts:
		rep, err = h.gen.GenerateProductsReport(ctx, userID)
	case entity.ReportTypeSales, entity.ReportTypeGeneral:
		var in dto.GenerateReportRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		from, to, rerr := reportRange(in)
		if rerr != nil {
			return writeError(c, rerr)
		}
		if reportType == entity.ReportTypeSales {
			rep, err = h.gen.GenerateSalesReport(ctx, userID, from, to)
		} else {
			rep, err = h.gen.GenerateGeneralReport(ctx, userID, from, to)
		}
	default:
		return writeError(c, domain.Invalid("type", "tipo de reporte inválido"))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReportResponse(rep))
}

// List godoc
// @Summary      Listar reportes generados
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "Tipo"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReportListResponse
// @Router       /api/reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	p := page(c)
	list, err := h.query.Reports(c.UserContext(), repository.ReportFilter{
		UserID: c.Query("user_id"),
		Type:   c.Query("type"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReportListResponse{
		Items: make([]dto.ReportResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: p.Limit, Offset: p.Offset},
	}
	for _, r := range list {
		out.Items = append(out.Items, *dto.ToReportResponse(r))
	}
	return c.JSON(out)
}

// GetByID snapshot guardado, tal como se generó.
func (h *ReportHandler) GetByID(c *fiber.Ctx) error {
	rep, err := h.query.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToReportResponse(rep))
}
