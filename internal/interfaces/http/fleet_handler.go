package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
)

// FleetHandler furgonetas, posiciones GPS y vencimientos.
type FleetHandler struct {
	uc *usecase.FleetUseCase
}

// NewFleetHandler construye el handler.
func NewFleetHandler(uc *usecase.FleetUseCase) *FleetHandler {
	return &FleetHandler{uc: uc}
}

// Create godoc
// @Summary      Alta de vehículo
// @Tags         fleet
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VehicleRequest  true  "Datos del vehículo"
// @Success      201   {object}  dto.VehicleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fleet/vehicles [post]
func (h *FleetHandler) Create(c *fiber.Ctx) error {
	var in dto.VehicleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/fleet/vehicles/:id
func (h *FleetHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/fleet/vehicles
func (h *FleetHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/fleet/vehicles/:id
func (h *FleetHandler) Update(c *fiber.Ctx) error {
	var in dto.VehicleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReportPosition godoc
// @Summary      Reportar posición GPS
// @Description  La posición se difunde en tiempo real como vehicle.moved.
// @Tags         fleet
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID del vehículo"
// @Param        body  body  dto.PositionRequest  true  "lat, lng y marca de tiempo opcional"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fleet/vehicles/{id}/position [post]
func (h *FleetHandler) ReportPosition(c *fiber.Ctx) error {
	var in dto.PositionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.ReportPosition(c.UserContext(), GetCompanyID(c), c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Alerts godoc
// @Summary      Vencimientos de ITV y seguro
// @Tags         fleet
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(30)
// @Success      200   {array}  dto.FleetAlertResponse
// @Router       /api/fleet/alerts [get]
func (h *FleetHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.uc.Alerts(c.UserContext(), GetCompanyID(c), c.QueryInt("days", usecase.DefaultAlertDays))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportKML GET /api/fleet/export.kml
func (h *FleetHandler) ExportKML(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.uc.ExportKML(c.UserContext(), GetCompanyID(c), "Flota", &buf); err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "flota.kml"))
	return c.Send(buf.Bytes())
}
