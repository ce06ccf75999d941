package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
)

// HeaderLinkPassword cabecera con la contraseña de un enlace protegido.
const HeaderLinkPassword = "X-Link-Password"

// LinkHandler enlaces públicos a ofertas, facturas y órdenes.
type LinkHandler struct {
	uc *billing.LinkUseCase
}

// NewLinkHandler construye el handler.
func NewLinkHandler(uc *billing.LinkUseCase) *LinkHandler {
	return &LinkHandler{uc: uc}
}

// Create godoc
// @Summary      Crear enlace público
// @Tags         links
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLinkRequest  true  "Recurso, contraseña opcional, caducidad y máximo de visitas"
// @Success      201   {object}  dto.LinkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/links [post]
func (h *LinkHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLinkRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/links?resource_type=&resource_id=
func (h *LinkHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("resource_type"), c.Query("resource_id"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Revoke DELETE /api/links/:id
func (h *LinkHandler) Revoke(c *fiber.Ctx) error {
	if err := h.uc.Revoke(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Resolve godoc
// @Summary      Abrir enlace público
// @Description  Sin autenticación. Cada apertura válida cuenta como visita.
// @Tags         links
// @Produce      json
// @Param        token            path    string  true   "Token del enlace"
// @Param        X-Link-Password  header  string  false  "Contraseña si el enlace está protegido"
// @Success      200  {object}  dto.ResolvedLinkResponse
// @Failure      401  {object}  dto.ErrorResponse  "Contraseña ausente o incorrecta"
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      410  {object}  dto.ErrorResponse  "Revocado, caducado o agotado"
// @Router       /api/public/links/{token} [get]
func (h *LinkHandler) Resolve(c *fiber.Ctx) error {
	password := c.Get(HeaderLinkPassword)
	if password == "" {
		password = c.Query("password")
	}
	out, err := h.uc.Resolve(c.UserContext(), c.Params("token"), password)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(out)
}
