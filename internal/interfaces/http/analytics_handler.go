package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/climatiza-api/internal/application/analytics"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsHandler informes de carga de trabajo, márgenes y exportación.
type AnalyticsHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.ReportUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func periodFromQuery(c *fiber.Ctx) (dto.ReportPeriodRequest, bool) {
	var req dto.ReportPeriodRequest
	return req, c.QueryParser(&req) == nil
}

func invalidParams(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
	})
}

// Workload godoc
// @Summary      Carga de trabajo por técnico
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD, inclusive). Default: hoy."
// @Success      200  {object}  dto.WorkloadReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/workload [get]
func (h *AnalyticsHandler) Workload(c *fiber.Ctx) error {
	req, ok := periodFromQuery(c)
	if !ok {
		return invalidParams(c)
	}
	out, err := h.uc.Workload(c.UserContext(), GetCompanyID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetMargins godoc
// @Summary      Márgenes por repuesto y ranking Pareto 80/20
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD)."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD)."
// @Param        top_n       query  int     false  "Máx. productos en el ranking (default 20, max 200)."
// @Success      200  {object}  dto.MarginsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/margins [get]
func (h *AnalyticsHandler) GetMargins(c *fiber.Ctx) error {
	req, ok := periodFromQuery(c)
	if !ok {
		return invalidParams(c)
	}
	out, err := h.uc.Margins(c.UserContext(), GetCompanyID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportServiceOrders GET /api/reports/service-orders.xlsx
func (h *AnalyticsHandler) ExportServiceOrders(c *fiber.Ctx) error {
	req, ok := periodFromQuery(c)
	if !ok {
		return invalidParams(c)
	}
	var buf bytes.Buffer
	name, err := h.uc.ExportServiceOrders(c.UserContext(), GetCompanyID(c), req, &buf)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(buf.Bytes())
}
