package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
)

// CalendarHandler agenda unificada de órdenes, reuniones y eventos externos.
type CalendarHandler struct {
	uc *usecase.CalendarUseCase
}

// NewCalendarHandler construye el handler.
func NewCalendarHandler(uc *usecase.CalendarUseCase) *CalendarHandler {
	return &CalendarHandler{uc: uc}
}

func (h *CalendarHandler) period(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, err := queryTime(c, "from", now.Truncate(24*time.Hour))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryTime(c, "to", from.AddDate(0, 0, 7))
	return from, to, err
}

// Range godoc
// @Summary      Eventos de agenda en un rango
// @Tags         calendar
// @Security     Bearer
// @Produce      json
// @Param        from           query  string  false  "Inicio (RFC3339 o YYYY-MM-DD). Default: hoy."
// @Param        to             query  string  false  "Fin. Default: from + 7 días."
// @Param        technician_id  query  string  false  "Filtrar por técnico"
// @Success      200  {array}   dto.CalendarEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/calendar/events [get]
func (h *CalendarHandler) Range(c *fiber.Ctx) error {
	from, to, err := h.period(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Range(c.UserContext(), GetCompanyID(c), from, to, c.Query("technician_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create POST /api/calendar/events
func (h *CalendarHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCalendarEventRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete DELETE /api/calendar/events/:id
func (h *CalendarHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Sync godoc
// @Summary      Sincronizar calendario externo
// @Description  Importa los eventos del calendario corporativo del rango indicado. Idempotente.
// @Tags         calendar
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Inicio"
// @Param        to    query  string  false  "Fin"
// @Success      200   {object}  dto.CalendarSyncResult
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/calendar/sync [post]
func (h *CalendarHandler) Sync(c *fiber.Ctx) error {
	from, to, err := h.period(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Sync(c.UserContext(), GetCompanyID(c), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
