package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/climatiza-api/internal/application/analytics"
)

// DashboardHandler panel de indicadores del día.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los indicadores operativos y de facturación.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (órdenes abiertas y de hoy, tickets abiertos, ofertas pendientes,
// facturación del mes, alertas de flota). Las fechas se calculan en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
