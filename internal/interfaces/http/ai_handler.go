package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/speech"
)

// AIHandler análisis de texto, geocodificación y transcripción de notas de voz.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// Analyze godoc
// @Summary      Clasificar texto libre
// @Description  Devuelve categoría, prioridad y palabras clave. Con mode=llm usa el modelo configurado
//
//	y cae al análisis por palabras clave si el modelo falla.
//
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        mode  query  string  false  "keywords | llm"
// @Param        body  body   dto.AnalyzeRequest  true  "Texto a analizar"
// @Success      200   {object}  dto.AnalysisResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ai/analyze [post]
func (h *AIHandler) Analyze(c *fiber.Ctx) error {
	var in dto.AnalyzeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Analyze(c.UserContext(), in.Text, c.Query("mode"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Geocode GET /api/ai/geocode?address=
func (h *AIHandler) Geocode(c *fiber.Ctx) error {
	out, err := h.uc.Geocode(c.UserContext(), c.Query("address"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transcribe godoc
// @Summary      Transcribir nota de voz
// @Tags         ai
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio  formData  file  true  "Audio (máx. 25 MB)"
// @Success      200    {object}  dto.TranscriptionResult
// @Failure      413    {object}  dto.ErrorResponse
// @Failure      503    {object}  dto.ErrorResponse
// @Router       /api/ai/transcribe [post]
func (h *AIHandler) Transcribe(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "falta el campo audio"})
	}
	if fh.Size > speech.MaxAudioBytes {
		return writeError(c, speech.ErrAudioTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	out, err := h.uc.Transcribe(c.UserContext(), fh.Filename, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
