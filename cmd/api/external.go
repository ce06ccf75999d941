package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/climatiza-api/internal/application/ports"
	infraai "github.com/jhoicas/climatiza-api/internal/infrastructure/ai"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/calendar"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/geo"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/speech"
	"github.com/jhoicas/climatiza-api/pkg/config"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// external adaptadores opcionales. Los campos nil desactivan la funcionalidad (503 en los endpoints).
type external struct {
	analyzer    ports.TextAnalyzer
	llm         ports.LLMService
	geocoder    ports.Geocoder
	transcriber ports.Transcriber
	calendar    ports.CalendarProvider
}

func newExternal(ctx context.Context, cfg *config.Config, log *logger.Logger) (*external, error) {
	analyzer, err := infraai.NewKeywordAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("reglas del analizador: %w", err)
	}
	ext := &external{
		analyzer: analyzer,
		geocoder: geo.NewNominatim(cfg.Geo),
	}

	switch cfg.AI.Provider {
	case "anthropic":
		ext.llm = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, "")
	case "gemini":
		gemini, err := infraai.NewGeminiService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, err
		}
		ext.llm = gemini
	case "":
	default:
		return nil, fmt.Errorf("AI_PROVIDER desconocido: %q", cfg.AI.Provider)
	}

	if cfg.AI.TranscriptionKey != "" {
		ext.transcriber = speech.NewClient(cfg.AI)
	}
	if cfg.Calendar.Enabled() {
		ext.calendar = calendar.NewGraphClient(cfg.Calendar)
	}

	log.Info().
		Str("llm", cfg.AI.Provider).
		Bool("transcription", ext.transcriber != nil).
		Bool("calendar_sync", ext.calendar != nil).
		Msg("proveedores externos")
	return ext, nil
}
