package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// Modos de análisis.
const (
	ModeKeywords = "keywords"
	ModeLLM      = "llm"
)

// llmTimeout límite por llamada al LLM para no bloquear el servidor.
const llmTimeout = 10 * time.Second

const analyzeSystemPrompt = `Eres el clasificador de incidencias de una empresa de climatización (aire acondicionado, bombas de calor, calderas).
Responde SOLO con un objeto JSON, sin texto adicional, con este formato:
{"category": "<gas|leak|no_heat|no_cooling|error_code|noise|maintenance|billing|general>",
 "priority": "<low|normal|high|urgent>",
 "summary": "<una frase>",
 "suggestions": ["<acción recomendada>", "..."]}`

// AIUseCase análisis de texto libre y proxies hacia servicios externos.
// Todas las dependencias son opcionales salvo el analizador.
type AIUseCase struct {
	analyzer    ports.TextAnalyzer
	llm         ports.LLMService
	geocoder    ports.Geocoder
	transcriber ports.Transcriber
	log         *logger.Logger
}

// NewAIUseCase construye el caso de uso.
func NewAIUseCase(analyzer ports.TextAnalyzer, llm ports.LLMService, geocoder ports.Geocoder, transcriber ports.Transcriber, log *logger.Logger) *AIUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AIUseCase{analyzer: analyzer, llm: llm, geocoder: geocoder, transcriber: transcriber, log: log.Component("ai")}
}

// Analyze clasifica el texto. Con mode=llm usa el modelo y, si falla, cae al analizador por palabras clave.
func (uc *AIUseCase) Analyze(ctx context.Context, text, mode string) (*dto.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("el texto es obligatorio"))
	}
	base := uc.analyzer.Analyze(text)
	if mode != ModeLLM || uc.llm == nil {
		return &base, nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()
	raw, err := uc.llm.Complete(llmCtx, analyzeSystemPrompt, text)
	if err == nil {
		var res *dto.AnalysisResult
		if res, err = parseLLMAnalysis(raw); err == nil {
			res.Keywords = base.Keywords
			return res, nil
		}
	}
	uc.log.Warn().Err(err).Str("provider", uc.llm.Name()).Msg("análisis LLM fallido, se usan palabras clave")
	return &base, nil
}

// parseLLMAnalysis extrae el primer objeto JSON de la respuesta. Los modelos a veces lo envuelven en ```json.
func parseLLMAnalysis(raw string) (*dto.AnalysisResult, error) {
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("respuesta LLM sin JSON: %q", truncate(raw, 80))
	}
	var out struct {
		Category    string   `json:"category"`
		Priority    string   `json:"priority"`
		Summary     string   `json:"summary"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("respuesta LLM inválida: %w", err)
	}
	out.Priority = strings.ToLower(strings.TrimSpace(out.Priority))
	if out.Category == "" || !entity.ValidPriority(out.Priority) {
		return nil, fmt.Errorf("respuesta LLM incompleta: categoría %q, prioridad %q", out.Category, out.Priority)
	}
	return &dto.AnalysisResult{
		Category: strings.ToLower(strings.TrimSpace(out.Category)), Priority: out.Priority,
		Summary: out.Summary, Suggestions: out.Suggestions, Source: ModeLLM,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Geocode resuelve una dirección con el proveedor configurado.
func (uc *AIUseCase) Geocode(ctx context.Context, address string) (*dto.GeocodeResult, error) {
	if uc.geocoder == nil {
		return nil, domain.ErrUnavailable
	}
	if strings.TrimSpace(address) == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("la dirección es obligatoria"))
	}
	res, err := uc.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

// Transcribe convierte una nota de voz en texto.
func (uc *AIUseCase) Transcribe(ctx context.Context, filename string, audio io.Reader) (*dto.TranscriptionResult, error) {
	if uc.transcriber == nil {
		return nil, domain.ErrUnavailable
	}
	text, err := uc.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	return &dto.TranscriptionResult{Text: strings.TrimSpace(text)}, nil
}
