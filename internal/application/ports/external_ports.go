package ports

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
)

// TextAnalyzer clasifica texto libre con reglas de palabras clave.
type TextAnalyzer interface {
	Analyze(text string) dto.AnalysisResult
}

// Geocoder resuelve direcciones postales a coordenadas.
// Devuelve (nil, nil) si la dirección no tiene resultados.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*dto.GeocodeResult, error)
}

// CalendarProvider lee eventos de un calendario externo (Graph).
type CalendarProvider interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]*entity.CalendarEvent, error)
}

// Transcriber convierte audio en texto.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// EventPublisher emite eventos de cambio hacia los suscriptores en tiempo real.
type EventPublisher interface {
	Publish(ctx context.Context, ev entity.Event) error
}

// NopPublisher descarta los eventos. Útil en CLI y tests.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, entity.Event) error { return nil }
