package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/crm"
	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// maxImportBytes tamaño máximo del .xlsx de importación.
const maxImportBytes = 10 << 20

// CustomerHandler clientes, su equipamiento instalado, importación y panel de insight.
type CustomerHandler struct {
	uc      *crm.CustomerUseCase
	devices *crm.DeviceUseCase
	imports *crm.ImportUseCase
	insight *crm.InsightUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *crm.CustomerUseCase, devices *crm.DeviceUseCase, imports *crm.ImportUseCase, insight *crm.InsightUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc, devices: devices, imports: imports, insight: insight}
}

// Create godoc
// @Summary      Crear cliente
// @Description  La dirección se geocodifica si hay proveedor; si falla, el cliente se guarda sin coordenadas.
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCustomerRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar clientes
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Busca en nombre, email, teléfono y CIF"
// @Param        type    query  string  false  "residential | commercial"
// @Param        city    query  string  false  "Ciudad"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.CustomerListResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), entity.CustomerFilter{
		Search: c.Query("q"),
		Type:   c.Query("type"),
		City:   c.Query("city"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar clientes desde Excel
// @Description  Primera hoja, fila de cabecera con alias (nombre, cif, email...). Con dry_run=true solo valida.
// @Tags         customers
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file  true   "Fichero .xlsx"
// @Param        dry_run  query     bool  false  "Validar sin guardar"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/customers/import [post]
func (h *CustomerHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "se requiere el campo file"})
	}
	if fh.Size > maxImportBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el fichero supera 10 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()
	out, err := h.imports.Import(c.UserContext(), GetCompanyID(c), f, c.QueryBool("dry_run"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Insight godoc
// @Summary      Panel de insight del cliente
// @Description  Equipos, revisiones pendientes, órdenes abiertas y última visita con un resumen (LLM si está configurado).
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerInsightDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/insight [get]
func (h *CustomerHandler) Insight(c *fiber.Ctx) error {
	out, err := h.insight.Insight(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateDevice POST /api/customers/:id/devices
func (h *CustomerHandler) CreateDevice(c *fiber.Ctx) error {
	var in dto.DeviceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.devices.Create(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListDevices GET /api/customers/:id/devices
func (h *CustomerHandler) ListDevices(c *fiber.Ctx) error {
	out, err := h.devices.ListByCustomer(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetDevice GET /api/devices/:id
func (h *CustomerHandler) GetDevice(c *fiber.Ctx) error {
	out, err := h.devices.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateDevice PUT /api/devices/:id
func (h *CustomerHandler) UpdateDevice(c *fiber.Ctx) error {
	var in dto.DeviceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.devices.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteDevice DELETE /api/devices/:id
func (h *CustomerHandler) DeleteDevice(c *fiber.Ctx) error {
	if err := h.devices.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DevicesDue godoc
// @Summary      Equipos con revisión pendiente
// @Tags         devices
// @Security     Bearer
// @Produce      json
// @Param        before  query  string  false  "Fecha límite (YYYY-MM-DD). Default: dentro de 30 días."
// @Param        limit   query  int     false  "Máximo (default 100, max 500)"
// @Success      200     {array}  dto.DeviceResponse
// @Router       /api/devices/due [get]
func (h *CustomerHandler) DevicesDue(c *fiber.Ctx) error {
	before, err := queryTime(c, "before", time.Now().AddDate(0, 0, 30))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.devices.ListDue(c.UserContext(), GetCompanyID(c), before, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
