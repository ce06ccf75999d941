package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// OfferHandler presupuestos con opciones alternativas.
type OfferHandler struct {
	uc *billing.OfferUseCase
}

// NewOfferHandler construye el handler.
func NewOfferHandler(uc *billing.OfferUseCase) *OfferHandler {
	return &OfferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear oferta
// @Description  Crea la oferta en borrador con una o varias opciones. Los precios vacíos toman el del catálogo.
// @Tags         offers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOfferRequest  true  "Cliente, título y opciones"
// @Success      201   {object}  dto.OfferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/offers [post]
func (h *OfferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOfferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/offers/:id
func (h *OfferHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/offers?status=&customer_id=
func (h *OfferHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), entity.OfferFilter{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Send POST /api/offers/:id/send
func (h *OfferHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Accept godoc
// @Summary      Aceptar oferta
// @Tags         offers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la oferta"
// @Param        body  body  dto.AcceptOfferRequest  true  "Opción elegida"
// @Success      200   {object}  dto.OfferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/offers/{id}/accept [post]
func (h *OfferHandler) Accept(c *fiber.Ctx) error {
	var in dto.AcceptOfferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Accept(c.UserContext(), GetCompanyID(c), c.Params("id"), in.OptionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject POST /api/offers/:id/reject
func (h *OfferHandler) Reject(c *fiber.Ctx) error {
	out, err := h.uc.Reject(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir oferta aceptada en orden de servicio
// @Tags         offers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la oferta"
// @Success      201  {object}  dto.ServiceOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/offers/{id}/convert [post]
func (h *OfferHandler) Convert(c *fiber.Ctx) error {
	out, err := h.uc.Convert(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PDF GET /api/offers/:id/pdf
func (h *OfferHandler) PDF(c *fiber.Ctx) error {
	data, name, err := h.uc.PDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, data, name)
}

func sendPDF(c *fiber.Ctx, data []byte, name string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Send(data)
}
