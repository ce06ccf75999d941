package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// TicketHandler tickets y tablero kanban.
type TicketHandler struct {
	uc *service.TicketUseCase
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *service.TicketUseCase) *TicketHandler {
	return &TicketHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ticket
// @Description  Si faltan categoría o prioridad se sugieren con el analizador de palabras clave.
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTicketRequest  true  "Datos del ticket"
// @Success      201   {object}  dto.TicketResponse
// @Router       /api/tickets [post]
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/tickets/:id
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/tickets?status=&assignee_id=&customer_id=
func (h *TicketHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), entity.TicketFilter{
		Status:     c.Query("status"),
		AssigneeID: c.Query("assignee_id"),
		CustomerID: c.Query("customer_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Board godoc
// @Summary      Tablero kanban
// @Tags         tickets
// @Security     Bearer
// @Produce      json
// @Param        assignee_id  query  string  false  "Solo los tickets de un usuario"
// @Success      200  {object}  dto.BoardResponse
// @Router       /api/tickets/board [get]
func (h *TicketHandler) Board(c *fiber.Ctx) error {
	out, err := h.uc.Board(c.UserContext(), GetCompanyID(c), c.Query("assignee_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/tickets/:id
func (h *TicketHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Move godoc
// @Summary      Mover ticket en el tablero
// @Tags         tickets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ticket"
// @Param        body  body  dto.MoveTicketRequest  true  "Columna y posición"
// @Success      200   {object}  dto.TicketResponse
// @Router       /api/tickets/{id}/move [patch]
func (h *TicketHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Move(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
