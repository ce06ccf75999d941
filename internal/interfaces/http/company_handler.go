package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
	"github.com/jhoicas/climatiza-api/internal/domain"
)

// CompanyHandler empresas (tenants) y sus módulos contratados.
// Cada token solo ve su propia empresa; la empresa operadora (platformID) puede ver todas.
type CompanyHandler struct {
	uc         *usecase.CompanyUseCase
	modules    *usecase.ModuleService
	platformID string
}

// NewCompanyHandler construye el handler inyectando los casos de uso.
// platformID vacío desactiva la gestión entre empresas.
func NewCompanyHandler(uc *usecase.CompanyUseCase, modules *usecase.ModuleService, platformID string) *CompanyHandler {
	return &CompanyHandler{uc: uc, modules: modules, platformID: platformID}
}

func (h *CompanyHandler) isPlatform(c *fiber.Ctx) bool {
	return h.platformID != "" && GetCompanyID(c) == h.platformID
}

// canAccess: la empresa del path es la del token, o el token es de la operadora.
func (h *CompanyHandler) canAccess(c *fiber.Ctx) bool {
	return c.Params("id") == GetCompanyID(c) || h.isPlatform(c)
}

// Create godoc
// @Summary      Crear empresa
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener empresa por ID
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	if !h.canAccess(c) {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar empresa
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la empresa"
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CompanyResponse
// @Router       /api/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	if !h.canAccess(c) {
		return writeError(c, domain.ErrNotFound)
	}
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	// Suspender o reactivar es cosa de la operadora.
	if in.Status != nil && !h.isPlatform(c) {
		return writeError(c, domain.ErrForbidden)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar empresas (solo empresa operadora)
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.CompanyListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	if !h.isPlatform(c) {
		return writeError(c, domain.ErrForbidden)
	}
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Modules godoc
// @Summary      Módulos de la empresa del token
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ModuleResponse
// @Router       /api/modules [get]
func (h *CompanyHandler) Modules(c *fiber.Ctx) error {
	out, err := h.modules.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetModule godoc
// @Summary      Activar o desactivar un módulo
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la empresa"
// @Param        body  body  dto.ActivateModuleRequest  true  "module, active, expires_at"
// @Success      200   {object}  dto.ModuleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/modules [put]
func (h *CompanyHandler) SetModule(c *fiber.Ctx) error {
	if !h.canAccess(c) {
		return writeError(c, domain.ErrNotFound)
	}
	var in dto.ActivateModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.modules.SetModule(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
